package pathmirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/paulschiretz/pgl-mirror/pkg/plog"
	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// fileOp is a single pending file copy produced by the walker and consumed
// exactly once by a copy worker.
type fileOp struct {
	SrcPath string
	DstPath string
	// ModTime is the source file's modification time. It is captured only
	// when the update mode compares timestamps (if-newer); otherwise it is
	// the zero value and the extra stat is avoided.
	ModTime time.Time
}

// dirTask is an item in the walker's pending queue: a source directory whose
// children still need to be enumerated, and its mirrored destination.
type dirTask struct {
	src string
	dst string
}

// walker enumerates the source tree breadth-first and streams fileOp values
// to the consuming strategy. It runs in a single goroutine; destination
// directories are created eagerly while iterating, so a parent directory
// always exists before any worker attempts to write a file into it, even
// when file copying is fanned out.
type walker struct {
	exclusions  exclusionSet
	recurse     bool
	dryRun      bool
	needModTime bool
	counters    *Counters

	// dirCache records destination directories known to exist. It is shared
	// with the copy workers so their parent-directory fast path stays in RAM.
	dirCache *sync.Map
}

// walk traverses srcRoot and sends one fileOp per regular file to ops. The
// channel is closed when the walk completes, signalling the consumers to
// drain and stop. An unreadable directory is logged and its subtree skipped;
// only context cancellation aborts the walk.
func (w *walker) walk(ctx context.Context, srcRoot, dstRoot string, ops chan<- fileOp) error {
	defer close(ops)

	w.dirCache.Store(dstRoot, struct{}{})
	queue := []dirTask{{src: srcRoot, dst: dstRoot}}

	for len(queue) > 0 {
		task := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(task.src)
		if err != nil {
			plog.Warn("Cannot read directory, skipping subtree", "path", task.src, "error", err)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				if w.exclusions.contains(entry.Name()) {
					w.counters.DirsExcluded.Add(1)
					plog.Info("EXCL", "path", filepath.Join(task.src, entry.Name()))
					continue
				}
				if !w.recurse {
					// Non-recursive runs report every subdirectory as
					// excluded so the summary accounts for what was not
					// copied.
					w.counters.DirsExcluded.Add(1)
					continue
				}
				dst := filepath.Join(task.dst, entry.Name())
				if err := w.mirrorDir(dst); err != nil {
					plog.Warn("Cannot create destination directory, skipping subtree", "path", dst, "error", err)
					continue
				}
				queue = append(queue, dirTask{src: filepath.Join(task.src, entry.Name()), dst: dst})
				continue
			}

			if !entry.Type().IsRegular() {
				// Symlinks, named pipes, sockets and the like are not copied.
				plog.Info("SKIP", "type", entry.Type().String(), "path", filepath.Join(task.src, entry.Name()))
				continue
			}

			op := fileOp{
				SrcPath: filepath.Join(task.src, entry.Name()),
				DstPath: filepath.Join(task.dst, entry.Name()),
			}
			if w.needModTime {
				info, err := entry.Info()
				if err != nil {
					plog.Warn("Cannot stat source file, skipping", "path", op.SrcPath, "error", err)
					continue
				}
				op.ModTime = info.ModTime()
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case ops <- op:
			}
		}
	}
	return nil
}

// mirrorDir creates the destination directory if it is absent, counting the
// creation. Dry runs count what a real run would have created without
// touching the filesystem.
func (w *walker) mirrorDir(dst string) error {
	if info, err := os.Lstat(dst); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("destination path exists and is not a directory")
		}
		w.dirCache.Store(dst, struct{}{})
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	w.counters.DirsCreated.Add(1)
	if w.dryRun {
		plog.Info("[DRY RUN] MKDIR", "path", dst)
		return nil
	}
	if err := os.Mkdir(dst, util.UserWritableDirPerms); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	plog.Info("MKDIR", "path", dst)
	w.dirCache.Store(dst, struct{}{})
	return nil
}
