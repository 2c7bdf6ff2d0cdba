// Package collector couples the sensor registry and the measurement snapshot
// behind one lock and drives the two periodic schedules against them.
//
// Locking discipline: every bus transaction and snapshot mutation happens
// while holding the lock; encoding, submission and inter-cycle sleeping
// happen strictly outside it. Holding the lock across a network submission
// would stall the 1 Hz gas feed and silently corrupt its baseline.
package collector

import (
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ericogr/enviro-node/pkg/sensor"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

// DefaultWarmupTicks is how many 1 Hz feed cycles the gas sensor's baseline
// algorithm gets before its output is trusted.
const DefaultWarmupTicks = 32

// Collector owns the shared (registry, snapshot) pair. Both schedules go
// through it.
type Collector struct {
	mu          sync.Mutex
	reg         *sensor.Registry
	snap        telemetry.Snapshot
	ticks       uint32 // elapsed fast-schedule periods since start-up, saturating
	warmupTicks uint32
}

// New wraps reg. warmupTicks of zero selects DefaultWarmupTicks.
func New(reg *sensor.Registry, warmupTicks uint32) *Collector {
	if warmupTicks == 0 {
		warmupTicks = DefaultWarmupTicks
	}
	return &Collector{reg: reg, warmupTicks: warmupTicks}
}

// FeedGas runs one fast-schedule cycle: feed the gas sensor's baseline
// algorithm and, once the warm-up window has elapsed, deposit the pair into
// the snapshot. Within the window the sensor is still fed but the low
// confidence result is discarded.
func (c *Collector) FeedGas() {
	defer recoverCycle("gas feed")
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ticks < math.MaxUint32 {
		c.ticks++
	}
	if c.reg.Gas == nil {
		return
	}
	co2eq, tvoc, err := c.reg.Gas.Measure()
	if err != nil {
		log.Errorf("%s read: %v", c.reg.Gas.Name(), err)
		return
	}
	if c.ticks < c.warmupTicks {
		return
	}
	c.snap.SetGas(co2eq, tvoc)
}

// Collect runs the locked half of one slow-schedule cycle: merge reads from
// the installed non-gas sensors, copy the composite snapshot and reset it to
// all-absent. The caller encodes and submits the returned copy outside the
// lock; the reset guarantees a stale gas value is never submitted twice.
func (c *Collector) Collect() telemetry.Snapshot {
	defer recoverCycle("collect")
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reg.Sense(&c.snap)
	out := c.snap
	c.snap.Reset()
	return out
}

// RunFast drives the gas feed at its mandatory cadence until stop is closed.
// A panic inside a cycle is logged and the cadence continues.
func (c *Collector) RunFast(period time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.FeedGas()
		}
	}
}

func recoverCycle(name string) {
	if r := recover(); r != nil {
		log.Errorf("%s cycle panic: %v", name, r)
	}
}
