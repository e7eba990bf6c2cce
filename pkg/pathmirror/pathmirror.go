// Package pathmirror implements a parallel, policy-driven directory
// replication engine.
//
// A run walks the source tree breadth-first, decides per file whether to
// copy based on the configured update mode, and executes copies using one of
// three strategies: a sequential loop, a bounded worker pool fed by the
// walker's channel, or delegation to the platform mirroring tool (robocopy
// on Windows, rsync elsewhere) with its output parsed back into the shared
// counters. Native delegation degrades gracefully: an absent or unstartable
// tool downgrades the run to a walker-based strategy with a warning.
//
// Apart from upfront validation, a run always completes and returns a
// Summary; per-file failures are logged and show up only as counters that
// did not advance.
package pathmirror

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/paulschiretz/pgl-mirror/pkg/plog"
	"github.com/paulschiretz/pgl-mirror/pkg/preflight"
	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// Mirrorer orchestrates directory replication runs. The zero value is not
// usable; construct it with NewMirrorer. It holds no per-run state and is
// safe for concurrent use.
type Mirrorer struct {
	runner   commandRunner
	lookPath func(file string) (string, error)
}

// NewMirrorer creates a Mirrorer backed by the real command runner and PATH
// lookup.
func NewMirrorer() *Mirrorer {
	return &Mirrorer{
		runner:   execRunner{},
		lookPath: exec.LookPath,
	}
}

// Run validates the options, selects an execution strategy and performs the
// replication. It returns a Summary for every run that passes validation;
// when the context is cancelled mid-run, the partial Summary is returned
// together with the context error.
func (m *Mirrorer) Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Check for cancellation after validation but before starting the heavy work.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()
	counters := &Counters{}

	if opts.CheckCapacity {
		if err := preflight.CheckCapacity(opts.Source, opts.Destination); err != nil {
			plog.Warn("Destination capacity check failed", "error", err)
		}
	}

	// The destination root itself is created upfront and not counted; the
	// counters only track mirrored subdirectories.
	if !opts.DryRun {
		if err := os.MkdirAll(opts.Destination, util.UserWritableDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create destination directory %s: %w", opts.Destination, err)
		}
	}

	source := ResultWalker
	delegated := false
	if opts.UseNativeTools {
		source, delegated = m.runNative(ctx, opts, counters)
	}

	strategy := StrategyNativeTool
	if !delegated {
		strategy = opts.walkerStrategy()
		run := newMirrorRun(opts, counters)
		if err := run.execute(ctx, strategy); err != nil {
			// Only cancellation escapes the walker-based strategies;
			// per-file failures are logged and absorbed.
			summary := counters.Snapshot(strategy, source, time.Since(start))
			return &summary, err
		}
	}

	summary := counters.Snapshot(strategy, source, time.Since(start))
	return &summary, nil
}
