package sensor

import (
	"fmt"
	"time"

	"github.com/ericogr/enviro-node/pkg/bus"
	"github.com/ericogr/enviro-node/pkg/delay"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

// VEML7700Addr is the fixed bus address of the VEML7700 ambient light sensor.
const VEML7700Addr = 0x10

const (
	vemlRegConfig = 0x00
	vemlRegALS    = 0x04

	// Gain x1, integration 100 ms, persistence 1, interrupts off, power on.
	vemlConfigWord = 0x0000
	// Lux per count at gain x1 / 100 ms.
	vemlResolution = 0.0576

	// Power-up latency before the first integration window starts.
	vemlPowerUp     = 2500 * time.Microsecond
	vemlIntegration = 100 * time.Millisecond
)

// VEML7700 reads illuminance in lux.
type VEML7700 struct {
	dev *bus.Device
}

func NewVEML7700(dev *bus.Device) *VEML7700 {
	return &VEML7700{dev: dev}
}

func (v *VEML7700) Name() string { return "veml7700" }

// Init writes gain and integration time and powers the sensor on, then sits
// out the power-up latency plus one full integration window. Reading earlier
// returns an unfinished integration.
func (v *VEML7700) Init() error {
	cfg := []byte{vemlRegConfig, byte(vemlConfigWord & 0xFF), byte(vemlConfigWord >> 8)}
	if err := v.dev.Tx(cfg, nil); err != nil {
		return fmt.Errorf("veml7700 config: %w", err)
	}
	delay.Wait(vemlPowerUp)
	delay.Wait(vemlIntegration)
	return nil
}

// Sense reads the ALS register and merges the calibrated value into snap.
func (v *VEML7700) Sense(snap *telemetry.Snapshot) error {
	var buf [2]byte
	if err := v.dev.Tx([]byte{vemlRegALS}, buf[:]); err != nil {
		return fmt.Errorf("veml7700 als read: %w", err)
	}
	counts := uint16(buf[0]) | uint16(buf[1])<<8 // registers are little-endian
	snap.SetIlluminance(float64(counts) * vemlResolution)
	return nil
}
