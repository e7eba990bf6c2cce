package pathmirror

import (
	"regexp"
	"strconv"
	"strings"
)

// rsyncVanishedExitCode (24) means some source files vanished during the
// transfer, which is routine on a live tree and treated as success.
const rsyncVanishedExitCode = 24

// rsyncArgs maps the run options onto rsync flags. rsync has no file-level
// parallelism flag, so the throttle limit is ignored here.
func rsyncArgs(o Options) []string {
	args := []string{"-a", "--stats"}

	switch o.UpdateMode {
	case UpdateSkip:
		args = append(args, "--ignore-existing")
	case UpdateOverwrite:
		args = append(args, "--ignore-times")
	case UpdateIfNewer:
		args = append(args, "-u")
	}

	if o.DryRun {
		args = append(args, "--dry-run")
	}
	for _, name := range o.ExcludeDirs {
		// The trailing slash restricts the pattern to directories.
		args = append(args, "--exclude="+name+"/")
	}

	// A trailing slash on the source copies its contents rather than the
	// directory itself, matching the walker's layout.
	args = append(args, strings.TrimRight(o.Source, "/")+"/", o.Destination)
	return args
}

// rsyncTransferredRe matches the files-transferred line of rsync --stats.
// Older rsync prints "Number of files transferred", newer versions
// "Number of regular files transferred"; counts may carry thousands
// separators.
var rsyncTransferredRe = regexp.MustCompile(`Number of (?:regular )?files transferred:\s*([\d,]+)`)

// parseRsyncStats recovers the transferred-file count from rsync --stats
// output. rsync reports neither created directories nor skipped files in a
// usable form, so only FilesCopied is populated and the resulting summary is
// tagged as reduced.
func parseRsyncStats(out string, c *Counters) bool {
	m := rsyncTransferredRe.FindStringSubmatch(out)
	if m == nil {
		return false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return false
	}
	c.FilesCopied.Store(n)
	return true
}
