package collector

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/enviro-node/pkg/sensor"
)

func TestWarmupWindowSuppressesGas(t *testing.T) {
	gas := &sensor.FakeGas{CO2eq: 450, TVOC: 12}
	c := New(&sensor.Registry{Gas: gas}, 32)

	for i := 0; i < 31; i++ {
		c.FeedGas()
	}
	if gas.Feeds != 31 {
		t.Fatalf("gas fed %d times during warm-up; want 31", gas.Feeds)
	}
	snap := c.Collect()
	if snap.CO2eq != nil || snap.TVOC != nil {
		t.Fatalf("warm-up readings surfaced: %+v", snap)
	}

	c.FeedGas() // tick 32: first trusted reading
	snap = c.Collect()
	if snap.CO2eq == nil || *snap.CO2eq != 450 || snap.TVOC == nil || *snap.TVOC != 12 {
		t.Fatalf("post-warm-up reading missing: %+v", snap)
	}
}

func TestCollectResetsSnapshot(t *testing.T) {
	gas := &sensor.FakeGas{CO2eq: 500, TVOC: 20}
	c := New(&sensor.Registry{
		Climate: &sensor.FakeClimate{Temperature: 21.5, Humidity: 40},
		Gas:     gas,
	}, 1)

	c.FeedGas()
	first := c.Collect()
	if first.Empty() {
		t.Fatalf("first collect empty: %+v", first)
	}

	// No reads in between: gas must not be resubmitted, and with the climate
	// driver removed from the equation the snapshot stays clean.
	second := c.Collect()
	if second.CO2eq != nil || second.TVOC != nil {
		t.Fatalf("stale gas value resubmitted: %+v", second)
	}
}

func TestCollectWithEmptyRegistry(t *testing.T) {
	c := New(&sensor.Registry{}, 0)
	for i := 0; i < 3; i++ {
		c.FeedGas()
		if snap := c.Collect(); !snap.Empty() {
			t.Fatalf("cycle %d: empty registry produced %+v", i, snap)
		}
	}
}

func TestGasReadFailureLeavesOthersIntact(t *testing.T) {
	c := New(&sensor.Registry{
		Climate: &sensor.FakeClimate{Temperature: 19, Humidity: 55},
		Gas:     &sensor.FakeGas{MeasureErr: errors.New("nack")},
	}, 1)

	c.FeedGas()
	snap := c.Collect()
	if snap.CO2eq != nil {
		t.Fatalf("failed gas read deposited a value: %+v", snap)
	}
	if snap.Temperature == nil || *snap.Temperature != 19 {
		t.Fatalf("climate reading lost: %+v", snap)
	}
}

type panickyGas struct{}

func (panickyGas) Name() string { return "panicky" }

func (panickyGas) Init() error { return nil }

func (panickyGas) Measure() (uint16, uint16, error) { panic("boom") }

func TestCyclePanicIsContained(t *testing.T) {
	c := New(&sensor.Registry{Gas: panickyGas{}}, 1)
	c.FeedGas() // must not propagate
	if snap := c.Collect(); !snap.Empty() {
		t.Fatalf("panicking driver produced values: %+v", snap)
	}
	// The lock must be released on the panic path.
	if !c.mu.TryLock() {
		t.Fatal("lock still held after contained panic")
	}
	c.mu.Unlock()
}

func TestLockFreeAfterCollect(t *testing.T) {
	c := New(&sensor.Registry{}, 0)
	_ = c.Collect()
	// Submission happens on the caller's side; the lock must already be free.
	if !c.mu.TryLock() {
		t.Fatal("lock held after Collect returned")
	}
	c.mu.Unlock()
}

func TestCollectedSnapshotIsDetached(t *testing.T) {
	gas := &sensor.FakeGas{CO2eq: 700, TVOC: 33}
	c := New(&sensor.Registry{Gas: gas}, 1)
	c.FeedGas()
	snap := c.Collect()
	*snap.CO2eq = 1 // caller-side mutation
	c.FeedGas()
	if got := c.Collect(); got.CO2eq == nil || *got.CO2eq != 700 {
		t.Fatalf("internal snapshot aliased the collected copy: %+v", got)
	}
}

func TestFastAndSlowSchedulesInterleave(t *testing.T) {
	gas := &sensor.FakeGas{CO2eq: 410, TVOC: 5}
	c := New(&sensor.Registry{
		Climate: &sensor.FakeClimate{Temperature: 20, Humidity: 45},
		Gas:     gas,
	}, 1)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.RunFast(time.Millisecond, stop)
	}()

	for i := 0; i < 10; i++ {
		_ = c.Collect()
		time.Sleep(2 * time.Millisecond)
	}
	close(stop)
	wg.Wait()

	if gas.Feeds == 0 {
		t.Fatal("fast schedule never ran")
	}
}
