package engine

import "time"

// Options tunes the engine loops.
type Options struct {
	// ReadBackoff is how long the order processor waits after a failed read.
	ReadBackoff time.Duration
	// SnapshotInterval re-publishes every pair's book view so snapshots with a
	// TTL never expire while the process runs. Zero disables the refresh.
	SnapshotInterval time.Duration
}

// DefaultEngineOptions returns the options NewEngine uses.
func DefaultEngineOptions() *Options {
	return &Options{
		ReadBackoff:      100 * time.Millisecond,
		SnapshotInterval: 30 * time.Second,
	}
}
