// Package sensor contains the drivers for the installed sensor classes and
// the registry that tracks which of them initialized successfully.
package sensor

import (
	log "github.com/sirupsen/logrus"

	"github.com/ericogr/enviro-node/pkg/telemetry"
)

// Driver is the capability set shared by the non-gas sensor classes.
type Driver interface {
	// Init brings the device up. An error means the sensor stays out of the
	// registry for the remainder of the run.
	Init() error
	// Sense performs one measurement and merges the result into snap.
	Sense(snap *telemetry.Snapshot) error
	// Name identifies the sensor class in logs.
	Name() string
}

// GasDriver is the gas sensor's capability set. Once Init succeeds, Measure
// must be called at a strict 1 Hz cadence for the lifetime of the driver: the
// baseline algorithm inside the device degrades silently when fed late, it
// never errors.
type GasDriver interface {
	Init() error
	// Measure feeds the baseline algorithm and returns the CO2-equivalent
	// (ppm) / TVOC (ppb) pair.
	Measure() (co2eq, tvoc uint16, err error)
	Name() string
}

// Registry holds the drivers that initialized successfully, one optional slot
// per sensor class. A nil slot means not installed or failed to initialize.
// The registry is populated once at start-up; a failed read never evicts a
// driver.
type Registry struct {
	Climate Driver // temperature + relative humidity
	Light   Driver // illuminance
	Gas     GasDriver
}

// Sense reads every installed non-gas sensor into snap. Partial success is
// the normal case: a failed read is logged and leaves its quantities absent
// for this cycle only.
func (r *Registry) Sense(snap *telemetry.Snapshot) {
	for _, d := range []Driver{r.Climate, r.Light} {
		if d == nil {
			continue
		}
		if err := d.Sense(snap); err != nil {
			log.Errorf("%s read: %v", d.Name(), err)
		}
	}
}
