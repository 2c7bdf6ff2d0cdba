package sensor

import (
	"fmt"
	"time"

	"github.com/ericogr/enviro-node/pkg/bus"
	"github.com/ericogr/enviro-node/pkg/delay"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

// SHT31Addr is the default bus address of the SHT31 temperature/humidity
// sensor.
const SHT31Addr = 0x44

const (
	// Read the status register; used as the liveness probe at init.
	sht31CmdStatusMSB = 0xF3
	sht31CmdStatusLSB = 0x2D
	// Single-shot measurement, high repeatability, no clock stretching.
	sht31CmdMeasureMSB = 0x24
	sht31CmdMeasureLSB = 0x00

	sht31StatusDelay  = time.Millisecond
	sht31MeasureDelay = 16 * time.Millisecond // max conversion time, high repeatability
)

// SHT31 reads temperature and relative humidity in one transaction.
type SHT31 struct {
	dev *bus.Device
}

func NewSHT31(dev *bus.Device) *SHT31 {
	return &SHT31{dev: dev}
}

func (s *SHT31) Name() string { return "sht31" }

// Init probes the status register. A NACK here means the sensor is absent.
func (s *SHT31) Init() error {
	if err := s.dev.Tx([]byte{sht31CmdStatusMSB, sht31CmdStatusLSB}, nil); err != nil {
		return fmt.Errorf("sht31 status cmd: %w", err)
	}
	delay.Wait(sht31StatusDelay)
	var buf [3]byte
	if err := s.dev.Tx(nil, buf[:]); err != nil {
		return fmt.Errorf("sht31 status read: %w", err)
	}
	if _, err := word(buf[:]); err != nil {
		return fmt.Errorf("sht31 status: %w", err)
	}
	return nil
}

// Sense triggers a single-shot conversion and merges the pair into snap.
func (s *SHT31) Sense(snap *telemetry.Snapshot) error {
	if err := s.dev.Tx([]byte{sht31CmdMeasureMSB, sht31CmdMeasureLSB}, nil); err != nil {
		return fmt.Errorf("sht31 measure cmd: %w", err)
	}
	delay.Wait(sht31MeasureDelay)
	var buf [6]byte
	if err := s.dev.Tx(nil, buf[:]); err != nil {
		return fmt.Errorf("sht31 measure read: %w", err)
	}
	rawT, err := word(buf[0:3])
	if err != nil {
		return fmt.Errorf("sht31 temperature: %w", err)
	}
	rawH, err := word(buf[3:6])
	if err != nil {
		return fmt.Errorf("sht31 humidity: %w", err)
	}
	snap.SetTemperature(-45 + 175*float64(rawT)/65535)
	snap.SetHumidity(100 * float64(rawH) / 65535)
	return nil
}
