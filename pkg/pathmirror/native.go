package pathmirror

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"

	"github.com/paulschiretz/pgl-mirror/pkg/plog"
)

// commandRunner abstracts the invocation of the external mirroring tool so
// tests can substitute canned output for a real process.
type commandRunner interface {
	// Run executes the command and returns its exit code together with the
	// combined stdout/stderr output. A non-zero exit code is not an error
	// here; err is non-nil only when the process could not be run at all.
	Run(ctx context.Context, name string, args []string) (exitCode int, output string, err error)
}

// execRunner is the production commandRunner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string) (int, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err == nil {
		return 0, buf.String(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), buf.String(), nil
	}
	return -1, buf.String(), err
}

// nativeToolName returns the platform mirroring tool: robocopy on Windows,
// rsync everywhere else.
func nativeToolName() string {
	if runtime.GOOS == "windows" {
		return "robocopy"
	}
	return "rsync"
}

// runNative delegates the whole copy to the platform tool and parses its
// textual output back into the counters. It returns delegated=false when the
// tool is absent or could not be started; the orchestrator then falls back
// to a walker-based strategy. A tool that ran but reported a failing exit
// code is surfaced as a warning, not an error: the parsed counters are
// best-effort either way.
func (m *Mirrorer) runNative(ctx context.Context, opts Options, counters *Counters) (source ResultSource, delegated bool) {
	tool := nativeToolName()
	if _, err := m.lookPath(tool); err != nil {
		plog.Warn("Native tool not found, falling back to walker-based copy", "tool", tool, "error", err)
		return ResultWalker, false
	}

	var args []string
	if tool == "robocopy" {
		source = ResultRobocopy
		args = robocopyArgs(opts)
	} else {
		source = ResultRsync
		args = rsyncArgs(opts)
	}

	plog.Info("Delegating copy to native tool", "tool", tool)
	code, out, err := m.runner.Run(ctx, tool, args)
	if err != nil {
		plog.Warn("Native tool could not be run, falling back to walker-based copy", "tool", tool, "error", err)
		return ResultWalker, false
	}

	switch source {
	case ResultRobocopy:
		if !parseRobocopySummary(out, counters) {
			plog.Warn("Could not parse robocopy summary, counters are incomplete")
		}
		// Exit codes below 8 signal success, possibly with files copied.
		if code >= robocopyFatalExitCode {
			plog.Warn("robocopy reported errors", "exit_code", code)
		}
	case ResultRsync:
		if !parseRsyncStats(out, counters) {
			plog.Warn("Could not parse rsync stats, counters are incomplete")
		}
		if code != 0 && code != rsyncVanishedExitCode {
			plog.Warn("rsync reported errors", "exit_code", code)
		}
	}
	return source, true
}
