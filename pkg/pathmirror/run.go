package pathmirror

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/paulschiretz/pgl-mirror/pkg/plog"
	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// opChannelFactor sizes the walker's output channel relative to the throttle
// limit. The bound gives natural backpressure on very large trees: the
// walker blocks once the workers fall this far behind.
const opChannelFactor = 8

// mirrorRun holds the state for one walker-based execution. The sequential
// and worker-pool strategies share all of it; they differ only in how many
// consumers they start.
type mirrorRun struct {
	opts     Options
	counters *Counters

	// dirCache tracks destination directories known to exist. The walker
	// populates it ahead of file consumption; a miss in a worker means the
	// destination was touched from outside the run.
	dirCache sync.Map

	// dirGroup deduplicates concurrent parent-directory recreation when many
	// workers hit the same missing directory at once.
	dirGroup singleflight.Group
}

func newMirrorRun(opts Options, counters *Counters) *mirrorRun {
	return &mirrorRun{opts: opts, counters: counters}
}

// execute drives the producer-consumer pipeline: one walker goroutine
// feeding a bounded channel, and one (sequential) or ThrottleLimit
// (worker-pool) consumers. Shutdown is the standard close-drain-join: the
// walker closes the channel, consumers drain it and the group joins them.
func (r *mirrorRun) execute(ctx context.Context, strategy Strategy) error {
	w := &walker{
		exclusions:  makeExclusionSet(r.opts.ExcludeDirs),
		recurse:     r.opts.Recurse,
		dryRun:      r.opts.DryRun,
		needModTime: r.opts.UpdateMode == UpdateIfNewer,
		counters:    r.counters,
		dirCache:    &r.dirCache,
	}

	ops := make(chan fileOp, opChannelFactor*r.opts.ThrottleLimit)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.walk(ctx, r.opts.Source, r.opts.Destination, ops)
	})

	consumers := 1
	if strategy == StrategyWorkerPool {
		consumers = r.opts.ThrottleLimit
	}
	for i := 0; i < consumers; i++ {
		g.Go(func() error {
			return r.consume(ctx, ops)
		})
	}

	return g.Wait()
}

// consume is the per-worker loop. Individual file failures are absorbed
// inside processFileOp; only cancellation stops a consumer early.
func (r *mirrorRun) consume(ctx context.Context, ops <-chan fileOp) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op, ok := <-ops:
			if !ok {
				return nil
			}
			r.processFileOp(op)
		}
	}
}

// processFileOp runs the update policy for a single file and performs the
// resulting copy. Failures are logged as warnings and reflected only as a
// missing counter increment; they never abort the run.
func (r *mirrorRun) processFileOp(op fileOp) {
	dstInfo, err := os.Lstat(op.DstPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		plog.Warn("Cannot stat destination, skipping file", "path", op.DstPath, "error", err)
		return
	}
	destExists := err == nil

	var dstMod time.Time
	if destExists {
		dstMod = dstInfo.ModTime()
	}

	action := Decide(destExists, r.opts.UpdateMode, op.ModTime, dstMod)
	if action == ActionPrompt {
		// Prompt mode only ever runs under the sequential strategy, so the
		// callback is never invoked concurrently.
		if r.opts.Confirm(op.DstPath) {
			action = ActionOverwrite
		} else {
			action = ActionSkip
		}
	}

	switch action {
	case ActionSkip:
		r.counters.FilesSkipped.Add(1)
		plog.Info("SKIP", "path", op.DstPath)
	case ActionCopy:
		if r.copy(op, false) {
			r.counters.FilesCopied.Add(1)
		}
	case ActionOverwrite:
		if r.copy(op, true) {
			r.counters.FilesOverwritten.Add(1)
		}
	}
}

// copy performs (or, in a dry run, pretends to perform) the actual file
// copy. It reports whether the corresponding counter should be incremented.
func (r *mirrorRun) copy(op fileOp, overwrite bool) bool {
	verb := "COPY"
	if overwrite {
		verb = "OVERWRITE"
	}
	if r.opts.DryRun {
		plog.Info("[DRY RUN] "+verb, "from", op.SrcPath, "to", op.DstPath)
		return true
	}
	if err := r.ensureParentDir(filepath.Dir(op.DstPath)); err != nil {
		plog.Warn("Cannot create parent directory, skipping file", "path", op.DstPath, "error", err)
		return false
	}
	if err := r.copyFile(op.SrcPath, op.DstPath, overwrite); err != nil {
		plog.Warn("Copy failed", "from", op.SrcPath, "to", op.DstPath, "error", err)
		return false
	}
	plog.Info(verb, "from", op.SrcPath, "to", op.DstPath)
	return true
}

// ensureParentDir guarantees the parent directory for a file exists before
// the copy is attempted. The walker creates directories ahead of file
// consumption, so the cache almost always hits; the singleflight group keeps
// a herd of workers from racing the same MkdirAll when it does not.
func (r *mirrorRun) ensureParentDir(dir string) error {
	if _, ok := r.dirCache.Load(dir); ok {
		return nil
	}
	_, err, _ := r.dirGroup.Do(dir, func() (any, error) {
		if _, ok := r.dirCache.Load(dir); ok {
			return nil, nil
		}
		if err := os.MkdirAll(dir, util.UserWritableDirPerms); err != nil {
			return nil, err
		}
		r.dirCache.Store(dir, struct{}{})
		return nil, nil
	})
	return err
}
