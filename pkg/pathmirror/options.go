package pathmirror

import (
	"fmt"
	"os"
)

// MaxThrottleLimit is the upper bound on concurrent copy workers. It also
// caps the /MT value handed to robocopy.
const MaxThrottleLimit = 32

// Options holds the configuration for a single Run invocation.
type Options struct {
	// Source is the root of the tree to replicate. It must exist and be a
	// directory.
	Source string
	// Destination is the root the tree is mirrored into. It is created if
	// absent (unless DryRun is set).
	Destination string
	// ExcludeDirs lists directory names to skip, compared case-insensitively
	// against each directory's basename.
	ExcludeDirs []string
	// UpdateMode decides what happens to files that already exist in the
	// destination.
	UpdateMode UpdateMode
	// Recurse enables descending into subdirectories. When false, every
	// subdirectory is reported as excluded.
	Recurse bool
	// ThrottleLimit bounds the number of concurrent copy workers (1-32).
	// A limit of 1 forces the sequential strategy.
	ThrottleLimit int
	// UseNativeTools delegates the copy to robocopy (Windows) or rsync
	// (elsewhere) when the tool is available; otherwise the run falls back
	// to the walker-based strategies with a warning.
	UseNativeTools bool
	// DryRun computes all decisions and counters without mutating the
	// filesystem.
	DryRun bool
	// Verify re-reads every copied file and compares a BLAKE3 hash against
	// the source content. A mismatch counts as a per-file copy failure.
	Verify bool
	// CheckCapacity emits an advisory warning when the destination volume
	// looks too small to hold the source tree.
	CheckCapacity bool
	// Confirm is the interactive callback for prompt mode. Required when
	// UpdateMode is UpdatePrompt; invoked only under the sequential strategy.
	Confirm func(path string) bool
}

// Validate checks the option combination upfront. These are the only hard
// errors a run produces; everything after validation is absorbed as
// warnings.
func (o Options) Validate() error {
	info, err := os.Stat(o.Source)
	if err != nil {
		return fmt.Errorf("source directory is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", o.Source)
	}
	if o.ThrottleLimit < 1 || o.ThrottleLimit > MaxThrottleLimit {
		return fmt.Errorf("throttle limit must be between 1 and %d, got %d", MaxThrottleLimit, o.ThrottleLimit)
	}
	if o.UseNativeTools {
		if !o.Recurse {
			return fmt.Errorf("native tools require recursion to be enabled")
		}
		if o.UpdateMode == UpdatePrompt {
			return fmt.Errorf("update mode %q cannot be combined with native tools", o.UpdateMode)
		}
	}
	if o.UpdateMode == UpdatePrompt && o.Confirm == nil {
		return fmt.Errorf("update mode %q requires a confirmation callback", o.UpdateMode)
	}
	return nil
}
