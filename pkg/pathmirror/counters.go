package pathmirror

import (
	"sync/atomic"
	"time"
)

// Counters holds the atomic counters mutated by the walker and the copy
// workers during a single run. A Counters value is owned by exactly one Run
// invocation; workers only touch it through the atomic adds below, never
// across an I/O operation.
//
// For walker-based strategies, FilesCopied + FilesSkipped + FilesOverwritten
// equals the number of files the walker yielded, as long as no per-file I/O
// error occurred.
type Counters struct {
	FilesCopied      atomic.Int64
	DirsCreated      atomic.Int64
	DirsExcluded     atomic.Int64
	FilesSkipped     atomic.Int64
	FilesOverwritten atomic.Int64
}

// Snapshot freezes the counters into a Summary.
func (c *Counters) Snapshot(strategy Strategy, source ResultSource, duration time.Duration) Summary {
	return Summary{
		FilesCopied:      c.FilesCopied.Load(),
		DirsCreated:      c.DirsCreated.Load(),
		DirsExcluded:     c.DirsExcluded.Load(),
		FilesSkipped:     c.FilesSkipped.Load(),
		FilesOverwritten: c.FilesOverwritten.Load(),
		Strategy:         strategy,
		Source:           source,
		Duration:         duration,
	}
}
