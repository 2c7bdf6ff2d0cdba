// Package console prints each cycle's snapshot to stdout.
package console

import (
	"fmt"

	"github.com/ericogr/enviro-node/pkg/output"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(snap telemetry.Snapshot) error {
	if snap.Empty() {
		fmt.Println("no readings this cycle")
		return nil
	}
	line := ""
	if snap.Temperature != nil {
		line += fmt.Sprintf(" temperature_c=%.2f", *snap.Temperature)
	}
	if snap.Humidity != nil {
		line += fmt.Sprintf(" humidity_pct=%.2f", *snap.Humidity)
	}
	if snap.Illuminance != nil {
		line += fmt.Sprintf(" illuminance_lux=%.2f", *snap.Illuminance)
	}
	if snap.CO2eq != nil {
		line += fmt.Sprintf(" co2eq_ppm=%d", *snap.CO2eq)
	}
	if snap.TVOC != nil {
		line += fmt.Sprintf(" tvoc_ppb=%d", *snap.TVOC)
	}
	fmt.Println(line[1:])
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
