package telemetry

import (
	"fmt"
	"strings"
)

// Encode renders the snapshot in line protocol: one line per present
// measurement, each tagged with the node name and firmware version. Floating
// quantities use two decimals, counts carry the unsigned-integer suffix. The
// CO2-equivalent/TVOC pair shares one gas line. An all-absent snapshot
// encodes to an empty payload.
func Encode(s Snapshot, node, version string) string {
	tags := "node=" + escapeTag(node) + ",version=" + escapeTag(version)

	var b strings.Builder
	if s.Temperature != nil {
		fmt.Fprintf(&b, "temperature,%s celsius=%.2f\n", tags, *s.Temperature)
	}
	if s.Humidity != nil {
		fmt.Fprintf(&b, "humidity,%s percent=%.2f\n", tags, *s.Humidity)
	}
	if s.Illuminance != nil {
		fmt.Fprintf(&b, "illuminance,%s lux=%.2f\n", tags, *s.Illuminance)
	}
	if s.CO2eq != nil || s.TVOC != nil {
		fields := make([]string, 0, 2)
		if s.CO2eq != nil {
			fields = append(fields, fmt.Sprintf("ppm=%du", *s.CO2eq))
		}
		if s.TVOC != nil {
			fields = append(fields, fmt.Sprintf("ppb=%du", *s.TVOC))
		}
		fmt.Fprintf(&b, "gas,%s %s\n", tags, strings.Join(fields, ","))
	}
	return b.String()
}

// escapeTag escapes the characters line protocol treats specially in tag
// values.
func escapeTag(v string) string {
	r := strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)
	return r.Replace(v)
}
