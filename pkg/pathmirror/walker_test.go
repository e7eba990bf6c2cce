package pathmirror

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectWalk runs a walk over src and returns the yielded destination paths
// relative to dst.
func collectWalk(t *testing.T, w *walker, src, dst string) []string {
	t.Helper()

	ops := make(chan fileOp, 256)
	require.NoError(t, w.walk(context.Background(), src, dst, ops))

	var rels []string
	for op := range ops {
		rel, err := filepath.Rel(dst, op.DstPath)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)
	return rels
}

func TestWalker(t *testing.T) {
	t.Run("yields all regular files and mirrors directories", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")
		writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
		writeFile(t, filepath.Join(src, "sub", "deep", "c.txt"), "c")

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"}, files)
		assert.Equal(t, int64(2), counters.DirsCreated.Load())
		assert.Equal(t, int64(0), counters.DirsExcluded.Load())
		assert.DirExists(t, filepath.Join(dst, "sub", "deep"))
	})

	t.Run("excluded directories are pruned whole", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")
		writeFile(t, filepath.Join(src, ".git", "config"), "cfg")
		writeFile(t, filepath.Join(src, ".git", "objects", "x"), "x")

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet([]string{".git"}),
			recurse:    true,
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"a.txt"}, files)
		assert.Equal(t, int64(1), counters.DirsExcluded.Load())
		assert.Equal(t, int64(0), counters.DirsCreated.Load())
		assert.NoDirExists(t, filepath.Join(dst, ".git"))
	})

	t.Run("non-recursive walk reports subdirectories as excluded", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")
		writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
		writeFile(t, filepath.Join(src, "other", "c.txt"), "c")

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet(nil),
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"a.txt"}, files)
		assert.Equal(t, int64(2), counters.DirsExcluded.Load())
		assert.Equal(t, int64(0), counters.DirsCreated.Load())
	})

	t.Run("existing destination directories are not counted", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
		require.NoError(t, os.Mkdir(filepath.Join(dst, "sub"), 0o755))

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		collectWalk(t, w, src, dst)
		assert.Equal(t, int64(0), counters.DirsCreated.Load())
	})

	t.Run("dry run counts directories without creating them", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "sub", "deep", "c.txt"), "c")

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			dryRun:     true,
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"sub/deep/c.txt"}, files)
		assert.Equal(t, int64(2), counters.DirsCreated.Load())
		assert.NoDirExists(t, filepath.Join(dst, "sub"))
	})

	t.Run("occupied destination path skips the subtree, siblings continue", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
		writeFile(t, filepath.Join(src, "zeta.txt"), "z")
		// A regular file squatting where a mirrored directory should go.
		writeFile(t, filepath.Join(dst, "sub"), "in the way")

		counters := &Counters{}
		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			counters:   counters,
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"zeta.txt"}, files)
		assert.Equal(t, int64(0), counters.DirsCreated.Load())

		data, err := os.ReadFile(filepath.Join(dst, "sub"))
		require.NoError(t, err)
		assert.Equal(t, "in the way", string(data))
	})

	t.Run("symlinks are not yielded", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")
		if err := os.Symlink(filepath.Join(src, "a.txt"), filepath.Join(src, "link")); err != nil {
			t.Skipf("cannot create symlink: %v", err)
		}

		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			counters:   &Counters{},
			dirCache:   &sync.Map{},
		}

		files := collectWalk(t, w, src, dst)
		assert.Equal(t, []string{"a.txt"}, files)
	})

	t.Run("modification times are captured only on request", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")

		w := &walker{
			exclusions:  makeExclusionSet(nil),
			recurse:     true,
			needModTime: true,
			counters:    &Counters{},
			dirCache:    &sync.Map{},
		}
		ops := make(chan fileOp, 1)
		require.NoError(t, w.walk(context.Background(), src, dst, ops))
		op := <-ops
		assert.False(t, op.ModTime.IsZero())

		w.needModTime = false
		ops = make(chan fileOp, 1)
		require.NoError(t, w.walk(context.Background(), src, dst, ops))
		op = <-ops
		assert.True(t, op.ModTime.IsZero())
	})

	t.Run("cancellation aborts the walk", func(t *testing.T) {
		src := t.TempDir()
		dst := t.TempDir()
		writeFile(t, filepath.Join(src, "a.txt"), "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w := &walker{
			exclusions: makeExclusionSet(nil),
			recurse:    true,
			counters:   &Counters{},
			dirCache:   &sync.Map{},
		}
		// Unbuffered channel with no consumer: the walker must take the
		// cancellation branch instead of blocking forever.
		err := w.walk(ctx, src, dst, make(chan fileOp))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
