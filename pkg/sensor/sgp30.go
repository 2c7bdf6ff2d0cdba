package sensor

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ericogr/enviro-node/pkg/bus"
	"github.com/ericogr/enviro-node/pkg/delay"
)

// SGP30Addr is the fixed bus address of the SGP30 gas sensor.
const SGP30Addr = 0x58

const (
	sgp30SerialDelay  = 600 * time.Microsecond
	sgp30InitDelay    = 10 * time.Millisecond
	sgp30MeasureDelay = 12 * time.Millisecond
)

var (
	sgp30CmdGetSerial = []byte{0x36, 0x82}
	sgp30CmdIAQInit   = []byte{0x20, 0x03}
	sgp30CmdMeasure   = []byte{0x20, 0x08}
)

// SGP30 measures CO2-equivalent and TVOC. The device runs an internal
// baseline compensation algorithm that only the 1 Hz Measure cadence keeps
// accurate; the driver exposes no other access to it.
type SGP30 struct {
	dev    *bus.Device
	serial uint64
}

func NewSGP30(dev *bus.Device) *SGP30 {
	return &SGP30{dev: dev}
}

func (g *SGP30) Name() string { return "sgp30" }

// Serial returns the 48-bit device serial obtained during Init.
func (g *SGP30) Serial() uint64 { return g.serial }

// Init reads the serial number and primes the baseline algorithm. After a
// successful Init, Measure must follow at 1 Hz.
func (g *SGP30) Init() error {
	if err := g.dev.Tx(sgp30CmdGetSerial, nil); err != nil {
		return fmt.Errorf("sgp30 serial cmd: %w", err)
	}
	delay.Wait(sgp30SerialDelay)
	var buf [9]byte
	if err := g.dev.Tx(nil, buf[:]); err != nil {
		return fmt.Errorf("sgp30 serial read: %w", err)
	}
	var serial uint64
	for i := 0; i < 3; i++ {
		w, err := word(buf[i*3 : i*3+3])
		if err != nil {
			return fmt.Errorf("sgp30 serial: %w", err)
		}
		serial = serial<<16 | uint64(w)
	}
	g.serial = serial
	log.Printf("sgp30 serial %012x", serial)

	if err := g.dev.Tx(sgp30CmdIAQInit, nil); err != nil {
		return fmt.Errorf("sgp30 iaq init: %w", err)
	}
	delay.Wait(sgp30InitDelay)
	return nil
}

// Measure feeds the baseline algorithm and returns the CO2-equivalent (ppm)
// and TVOC (ppb) pair.
func (g *SGP30) Measure() (uint16, uint16, error) {
	if err := g.dev.Tx(sgp30CmdMeasure, nil); err != nil {
		return 0, 0, fmt.Errorf("sgp30 measure cmd: %w", err)
	}
	delay.Wait(sgp30MeasureDelay)
	var buf [6]byte
	if err := g.dev.Tx(nil, buf[:]); err != nil {
		return 0, 0, fmt.Errorf("sgp30 measure read: %w", err)
	}
	co2eq, err := word(buf[0:3])
	if err != nil {
		return 0, 0, fmt.Errorf("sgp30 co2eq: %w", err)
	}
	tvoc, err := word(buf[3:6])
	if err != nil {
		return 0, 0, fmt.Errorf("sgp30 tvoc: %w", err)
	}
	return co2eq, tvoc, nil
}
