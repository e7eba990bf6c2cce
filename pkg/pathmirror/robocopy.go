package pathmirror

import (
	"regexp"
	"strconv"
)

// robocopyFatalExitCode is the first robocopy exit code that indicates a
// real failure. Codes 0-7 are informational success states (files copied,
// extras detected, and so on).
const robocopyFatalExitCode = 8

// robocopyArgs maps the run options onto robocopy flags. The mapping is
// best-effort: robocopy's copy semantics are close to, but not identical
// with, the walker-based update policy.
//
// /E copies subdirectories including empty ones; native delegation already
// requires recursion. /NP /NJH /NFL /NDL silence everything except the
// summary block, which is exactly what the parser consumes.
func robocopyArgs(o Options) []string {
	args := []string{o.Source, o.Destination, "/E", "/NP", "/NJH", "/NFL", "/NDL", "/R:3", "/W:5"}
	args = append(args, "/MT:"+strconv.Itoa(o.ThrottleLimit))

	switch o.UpdateMode {
	case UpdateSkip:
		// Exclude Changed, Newer and Older files: only copy files that do
		// not exist in the destination at all.
		args = append(args, "/XC", "/XN", "/XO")
	case UpdateOverwrite:
		// Include Same and Tweaked files: force overwrite even if identical.
		args = append(args, "/IS", "/IT")
	case UpdateIfNewer:
		// Exclude Older: copy only when the source is newer.
		args = append(args, "/XO")
	}

	if o.DryRun {
		args = append(args, "/L") // List only: no copying, no timestamps.
	}
	if len(o.ExcludeDirs) > 0 {
		args = append(args, "/XD")
		args = append(args, o.ExcludeDirs...)
	}
	return args
}

// The summary block robocopy prints at the end of a run, parsed by the fixed
// columns Total/Copied/Skipped:
//
//	               Total    Copied   Skipped  Mismatch    FAILED    Extras
//	    Dirs :        23         5        18         0         0         0
//	   Files :       147       147         0         0         0         0
var (
	robocopyDirsRe  = regexp.MustCompile(`(?m)^\s*Dirs\s*:\s*(\d+)\s+(\d+)\s+(\d+)`)
	robocopyFilesRe = regexp.MustCompile(`(?m)^\s*Files\s*:\s*(\d+)\s+(\d+)\s+(\d+)`)
)

// parseRobocopySummary recovers copied/skipped/created counts from
// robocopy's summary block. Robocopy exposes no overwrite-specific counter,
// so FilesOverwritten stays zero and the resulting summary is tagged as
// reduced. It reports whether a summary block was found at all.
func parseRobocopySummary(out string, c *Counters) bool {
	found := false
	if m := robocopyDirsRe.FindStringSubmatch(out); m != nil {
		if copied, err := strconv.ParseInt(m[2], 10, 64); err == nil {
			c.DirsCreated.Store(copied)
			found = true
		}
	}
	if m := robocopyFilesRe.FindStringSubmatch(out); m != nil {
		if copied, err := strconv.ParseInt(m[2], 10, 64); err == nil {
			c.FilesCopied.Store(copied)
			found = true
		}
		if skipped, err := strconv.ParseInt(m[3], 10, 64); err == nil {
			c.FilesSkipped.Store(skipped)
		}
	}
	return found
}
