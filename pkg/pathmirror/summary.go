package pathmirror

import (
	"fmt"
	"time"

	"github.com/paulschiretz/pgl-mirror/pkg/plog"
)

// ResultSource identifies where the counters in a Summary came from.
type ResultSource int

const (
	// ResultWalker means the counters were maintained by the in-process
	// walker and copy workers. All fields are populated and consistent.
	ResultWalker ResultSource = iota
	// ResultRobocopy means the counters were parsed from robocopy's summary
	// block. FilesOverwritten is never populated.
	ResultRobocopy
	// ResultRsync means the counters were parsed from rsync's --stats
	// output. Only FilesCopied is populated.
	ResultRsync
)

var resultSourceToString = map[ResultSource]string{
	ResultWalker:   "walker",
	ResultRobocopy: "robocopy",
	ResultRsync:    "rsync",
}

// String returns the string representation of a ResultSource.
func (rs ResultSource) String() string {
	if str, ok := resultSourceToString[rs]; ok {
		return str
	}
	return fmt.Sprintf("unknown_result_source(%d)", rs)
}

// Summary is the final result of a Run invocation.
//
// Walker-based strategies populate every counter field. Native delegation
// returns a reduced, best-effort subset: the fields named in the
// ResultSource doc comments are filled in, the rest stay zero. Use Reduced
// to tell the two shapes apart; they are deliberately not presented as
// equally trustworthy.
type Summary struct {
	FilesCopied      int64
	DirsCreated      int64
	DirsExcluded     int64
	FilesSkipped     int64
	FilesOverwritten int64

	Strategy Strategy
	Source   ResultSource
	Duration time.Duration
}

// Reduced reports whether the counters are a best-effort subset parsed from
// native tool output rather than exact in-process counts.
func (s Summary) Reduced() bool {
	return s.Source != ResultWalker
}

// Log emits the summary through the package logger.
func (s Summary) Log(msg string) {
	args := []any{
		"strategy", s.Strategy.String(),
		"files_copied", s.FilesCopied,
		"dirs_created", s.DirsCreated,
		"dirs_excluded", s.DirsExcluded,
		"files_skipped", s.FilesSkipped,
		"files_overwritten", s.FilesOverwritten,
		"duration", s.Duration.Round(time.Millisecond),
	}
	if s.Reduced() {
		args = append(args, "source", s.Source.String(), "reduced_counters", true)
	}
	plog.Info(msg, args...)
}
