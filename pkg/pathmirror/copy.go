package pathmirror

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/paulschiretz/pgl-mirror/pkg/util"
)

// copyBufferSize is the size of the pooled buffers used by io.CopyBuffer.
const copyBufferSize = 256 * 1024

// copyBufPool is shared by all workers of all runs to keep copy buffers off
// the garbage collector's back.
var copyBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, copyBufferSize)
		return &b
	},
}

// copyFile copies src to dst. With overwrite=false the destination is opened
// with O_EXCL: the policy already decided the file does not exist, and the
// flag turns a race with a concurrent writer into an error instead of a
// silent overwrite. The source modification time is preserved so if-newer
// comparisons stay stable across runs.
func (r *mirrorRun) copyFile(src, dst string, overwrite bool) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, util.WithUserWritePermission(srcInfo.Mode().Perm()))
	if err != nil {
		return fmt.Errorf("failed to open destination file %s: %w", dst, err)
	}
	defer out.Close() // Ensure closed on error.

	var reader io.Reader = in
	var hasher *blake3.Hasher
	if r.opts.Verify {
		hasher = blake3.New()
		reader = io.TeeReader(in, hasher)
	}

	bufPtr := copyBufPool.Get().(*[]byte)
	defer copyBufPool.Put(bufPtr)
	buf := *bufPtr

	if _, err := io.CopyBuffer(out, reader, buf); err != nil {
		return fmt.Errorf("failed to copy content from %s to %s: %w", src, dst, err)
	}

	// Close flushes data to disk. It must happen before Chtimes, because
	// closing may update the modification time.
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to set timestamps on %s: %w", dst, err)
	}

	if hasher != nil {
		if err := verifyCopy(dst, hasher.Sum(nil), buf); err != nil {
			return err
		}
	}
	return nil
}

// verifyCopy re-reads the written file and compares its BLAKE3 hash against
// the hash computed from the source while streaming.
func verifyCopy(dst string, want []byte, buf []byte) error {
	f, err := os.Open(dst)
	if err != nil {
		return fmt.Errorf("failed to re-open %s for verification: %w", dst, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return fmt.Errorf("failed to read %s for verification: %w", dst, err)
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return fmt.Errorf("content verification failed for %s", dst)
	}
	return nil
}
