// Package delay provides the blocking wait primitive shared by the sensor
// drivers and the periodic schedules.
//
// Durations below Threshold busy-spin: sensor protocols (VEML7700 power-up,
// SGP30 command latency) need sub-millisecond-class precision that a coarse
// scheduler tick cannot guarantee. Durations at or above Threshold yield to
// the scheduler so the other schedule keeps running.
package delay

import "time"

// Threshold separates the busy-wait path from the yielding path.
const Threshold = 10 * time.Millisecond

// sleep is swapped out by tests to observe which path Wait takes.
var sleep = time.Sleep

// Wait blocks the calling goroutine for at least d. It always runs to
// completion; there is no cancellation.
func Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	if d < Threshold {
		spin(d)
		return
	}
	sleep(d)
}

func spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
