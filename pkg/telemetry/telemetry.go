// Package telemetry defines the measurement snapshot shared by the schedules
// and its wire encoding.
package telemetry

// Snapshot holds the latest value per measured quantity. A nil field means
// "no reading available this cycle", which is distinct from zero.
type Snapshot struct {
	Temperature *float64 `json:"temperature_c,omitempty"`
	Humidity    *float64 `json:"humidity_pct,omitempty"`
	Illuminance *float64 `json:"illuminance_lux,omitempty"`
	CO2eq       *uint16  `json:"co2eq_ppm,omitempty"`
	TVOC        *uint16  `json:"tvoc_ppb,omitempty"`
}

func (s *Snapshot) SetTemperature(v float64) { s.Temperature = &v }
func (s *Snapshot) SetHumidity(v float64)    { s.Humidity = &v }
func (s *Snapshot) SetIlluminance(v float64) { s.Illuminance = &v }

// SetGas stores the CO2-equivalent/TVOC pair. The gas sensor produces both in
// one transaction, so they are always set together.
func (s *Snapshot) SetGas(co2eq, tvoc uint16) {
	s.CO2eq = &co2eq
	s.TVOC = &tvoc
}

// Reset returns every field to absent.
func (s *Snapshot) Reset() {
	*s = Snapshot{}
}

// Empty reports whether no quantity holds a value.
func (s *Snapshot) Empty() bool {
	return s.Temperature == nil && s.Humidity == nil && s.Illuminance == nil &&
		s.CO2eq == nil && s.TVOC == nil
}
