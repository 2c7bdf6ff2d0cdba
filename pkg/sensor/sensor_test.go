package sensor

import (
	"errors"
	"testing"

	"github.com/ericogr/enviro-node/pkg/telemetry"
)

func TestRegistrySensePartialFailure(t *testing.T) {
	reg := &Registry{
		Climate: &FakeClimate{SenseErr: errors.New("nack")},
		Light:   &FakeLight{Lux: 321.5},
	}

	var snap telemetry.Snapshot
	reg.Sense(&snap)

	if snap.Temperature != nil || snap.Humidity != nil {
		t.Fatal("failed climate read left values in the snapshot")
	}
	if snap.Illuminance == nil || *snap.Illuminance != 321.5 {
		t.Fatalf("light value lost alongside climate failure: %+v", snap)
	}
}

func TestRegistrySenseSkipsAbsentSlots(t *testing.T) {
	reg := &Registry{} // nothing installed
	var snap telemetry.Snapshot
	reg.Sense(&snap)
	if !snap.Empty() {
		t.Fatalf("empty registry produced readings: %+v", snap)
	}
}

func TestRegistrySenseOverwritesStaleValues(t *testing.T) {
	reg := &Registry{Climate: &FakeClimate{Temperature: 22, Humidity: 41}}
	var snap telemetry.Snapshot
	snap.SetTemperature(99)
	reg.Sense(&snap)
	if *snap.Temperature != 22 {
		t.Fatalf("stale temperature survived: %v", *snap.Temperature)
	}
}

func TestCRC8KnownVector(t *testing.T) {
	// Reference vector from the SHT3x datasheet: CRC(0xBE, 0xEF) = 0x92.
	if got := crc8([]byte{0xBE, 0xEF}); got != 0x92 {
		t.Fatalf("crc8(BEEF) = %#02x; want 0x92", got)
	}
}

func TestWordRejectsBadCRC(t *testing.T) {
	if _, err := word([]byte{0xBE, 0xEF, 0x00}); !errors.Is(err, ErrCRC) {
		t.Fatalf("bad crc: got %v; want ErrCRC", err)
	}
	v, err := word([]byte{0xBE, 0xEF, 0x92})
	if err != nil || v != 0xBEEF {
		t.Fatalf("good crc: got %#04x, %v", v, err)
	}
}
