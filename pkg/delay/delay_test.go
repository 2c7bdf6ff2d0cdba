package delay

import (
	"testing"
	"time"
)

func TestWaitShortUsesBusyPath(t *testing.T) {
	calls := 0
	sleep = func(time.Duration) { calls++ }
	defer func() { sleep = time.Sleep }()

	start := time.Now()
	Wait(2 * time.Millisecond)
	elapsed := time.Since(start)

	if calls != 0 {
		t.Fatalf("short wait used the scheduler path (%d sleep calls)", calls)
	}
	if elapsed < 2*time.Millisecond {
		t.Fatalf("short wait returned early: %v", elapsed)
	}
}

func TestWaitLongUsesSchedulerPath(t *testing.T) {
	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = time.Sleep }()

	Wait(50 * time.Millisecond)
	if slept != 50*time.Millisecond {
		t.Fatalf("long wait slept %v; want 50ms", slept)
	}

	// Threshold itself takes the yielding path.
	slept = 0
	Wait(Threshold)
	if slept != Threshold {
		t.Fatalf("threshold wait slept %v; want %v", slept, Threshold)
	}
}

func TestWaitNonPositive(t *testing.T) {
	calls := 0
	sleep = func(time.Duration) { calls++ }
	defer func() { sleep = time.Sleep }()

	Wait(0)
	Wait(-time.Second)
	if calls != 0 {
		t.Fatalf("non-positive wait slept %d times", calls)
	}
}

func TestWaitElapsedAtLeastRequested(t *testing.T) {
	for _, d := range []time.Duration{500 * time.Microsecond, 15 * time.Millisecond} {
		start := time.Now()
		Wait(d)
		if elapsed := time.Since(start); elapsed < d {
			t.Fatalf("Wait(%v) returned after %v", d, elapsed)
		}
	}
}
