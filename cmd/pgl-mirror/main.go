package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paulschiretz/pgl-mirror/pkg/pathmirror"
	"github.com/paulschiretz/pgl-mirror/pkg/plog"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		excludeDirs   []string
		updateMode    string
		noRecurse     bool
		throttle      int
		useNative     bool
		dryRun        bool
		verify        bool
		checkCapacity bool
		quiet         bool
	)

	rootCmd := &cobra.Command{
		Use:           "pgl-mirror <source> <destination>",
		Short:         "Replicate a directory tree with per-file update policies",
		Args:          cobra.ExactArgs(2),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plog.SetQuiet(quiet)

			mode, err := pathmirror.ParseUpdateMode(updateMode)
			if err != nil {
				return err
			}

			opts := pathmirror.Options{
				Source:         args[0],
				Destination:    args[1],
				ExcludeDirs:    excludeDirs,
				UpdateMode:     mode,
				Recurse:        !noRecurse,
				ThrottleLimit:  throttle,
				UseNativeTools: useNative,
				DryRun:         dryRun,
				Verify:         verify,
				CheckCapacity:  checkCapacity,
			}
			if mode == pathmirror.UpdatePrompt {
				opts.Confirm = stdinConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := pathmirror.NewMirrorer().Run(ctx, opts)
			if summary != nil {
				summary.Log("Copy finished")
			}
			return err
		},
	}

	flags := rootCmd.Flags()
	flags.StringSliceVar(&excludeDirs, "exclude-dir", nil, "directory names to exclude, case-insensitive (repeatable)")
	flags.StringVar(&updateMode, "update-mode", "skip", "behavior for existing destination files: skip, overwrite, if-newer or prompt")
	flags.BoolVar(&noRecurse, "no-recurse", false, "do not descend into subdirectories")
	flags.IntVar(&throttle, "throttle", 4, fmt.Sprintf("maximum number of concurrent file copies (1-%d)", pathmirror.MaxThrottleLimit))
	flags.BoolVar(&useNative, "native", false, "delegate the copy to robocopy/rsync when available")
	flags.BoolVar(&dryRun, "dry-run", false, "report what would be copied without writing anything")
	flags.BoolVar(&verify, "verify", false, "verify every copied file against the source content hash")
	flags.BoolVar(&checkCapacity, "check-capacity", false, "warn when the destination volume looks too small for the source")
	flags.BoolVar(&quiet, "quiet", false, "suppress per-file output")

	if err := rootCmd.Execute(); err != nil {
		plog.Error("Copy failed", "error", err)
		return 1
	}
	return 0
}

// stdinConfirm returns the interactive confirmation callback for prompt
// mode. It is only ever invoked from the sequential strategy, one file at a
// time.
func stdinConfirm(in io.Reader, out io.Writer) func(string) bool {
	reader := bufio.NewReader(in)
	return func(path string) bool {
		fmt.Fprintf(out, "Overwrite %s? [y/N] ", path)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
