package sensor

import "github.com/ericogr/enviro-node/pkg/telemetry"

// Fakes let the node run without hardware and give the schedule tests
// deterministic drivers.

type FakeClimate struct {
	Temperature float64
	Humidity    float64
	InitErr     error
	SenseErr    error
}

func (f *FakeClimate) Name() string { return "fake-climate" }

func (f *FakeClimate) Init() error { return f.InitErr }

func (f *FakeClimate) Sense(snap *telemetry.Snapshot) error {
	if f.SenseErr != nil {
		return f.SenseErr
	}
	snap.SetTemperature(f.Temperature)
	snap.SetHumidity(f.Humidity)
	return nil
}

type FakeLight struct {
	Lux      float64
	InitErr  error
	SenseErr error
}

func (f *FakeLight) Name() string { return "fake-light" }

func (f *FakeLight) Init() error { return f.InitErr }

func (f *FakeLight) Sense(snap *telemetry.Snapshot) error {
	if f.SenseErr != nil {
		return f.SenseErr
	}
	snap.SetIlluminance(f.Lux)
	return nil
}

type FakeGas struct {
	CO2eq      uint16
	TVOC       uint16
	InitErr    error
	MeasureErr error
	Feeds      int // number of Measure calls, incremented even on error
}

func (f *FakeGas) Name() string { return "fake-gas" }

func (f *FakeGas) Init() error { return f.InitErr }

func (f *FakeGas) Measure() (uint16, uint16, error) {
	f.Feeds++
	if f.MeasureErr != nil {
		return 0, 0, f.MeasureErr
	}
	return f.CO2eq, f.TVOC, nil
}
