// Package bus serializes access to the single physical I2C bus shared by all
// sensor drivers.
package bus

import (
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// Arbiter owns one i2c.Bus and issues Device proxies that serialize their
// transactions against each other. The arbiter outlives every proxy it
// issues; a failed transaction is reported to the caller and never poisons
// the bus for other proxies.
type Arbiter struct {
	mu  sync.Mutex
	bus i2c.Bus
}

// NewArbiter takes exclusive ownership of b. Callers must not use b directly
// afterwards.
func NewArbiter(b i2c.Bus) *Arbiter {
	return &Arbiter{bus: b}
}

// Device returns a proxy handle bound to the device at addr. Proxies from the
// same arbiter never interleave bus transactions.
func (a *Arbiter) Device(addr uint16) *Device {
	return &Device{arb: a, addr: addr}
}

// Device is a logical, serialized view of the bus for one device address. It
// is indistinguishable from direct bus access to the driver holding it.
type Device struct {
	arb  *Arbiter
	addr uint16
}

// Tx performs one transaction: write w, then (if r is non-empty) read len(r)
// bytes, atomically with respect to every other proxy from the same arbiter.
func (d *Device) Tx(w, r []byte) error {
	d.arb.mu.Lock()
	defer d.arb.mu.Unlock()
	return d.arb.bus.Tx(d.addr, w, r)
}
