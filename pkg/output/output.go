// Package output defines the telemetry sink interface shared by the
// submitter implementations.
package output

import "github.com/ericogr/enviro-node/pkg/telemetry"

// Output receives the snapshot collected for one slow-schedule cycle. A
// Publish error drops that cycle's data; the sink stays registered and the
// next cycle supersedes the loss.
type Output interface {
	Publish(snap telemetry.Snapshot) error
	Close() error
}
