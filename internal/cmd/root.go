// Package cmd wires the cobra command tree to the parser/store/urgency
// pipeline. Cobra owns process entry and flag-free passthrough of argv;
// the actual command semantics come from internal/parser's DNA-driven
// dispatch rather than per-command cobra flags, since the CLI's own
// grammar (filters, modifications, rc overrides) doesn't map onto
// pflag's model.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskwarrior-go/task/internal/applog"
)

// NewRootCmd builds the cobra entrypoint. It disables cobra's flag
// parsing entirely: every argument, including things that look like
// flags (-- separators, rc.foo=bar), is part of this application's own
// grammar and goes through internal/parser instead.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                   "task [<filter>] <command> [<modifications>]",
		Short:                 "A command-line task manager",
		DisableFlagParsing:    true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		Args:                  cobra.ArbitraryArgs,
		RunE: func(c *cobra.Command, args []string) error {
			full := append([]string{"task"}, args...)
			return Dispatch(full, os.Stdin, os.Stdout, os.Stderr)
		},
	}
	return root
}

// Execute runs the root command and returns the process exit code per
// spec.md §6: 0 success, 1 user error, 2 internal error.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	if ue, ok := err.(userError); ok {
		_ = ue
		applog.Errorf("%v", err)
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	applog.Errorf("internal error: %v", err)
	return 2
}

// userError marks an error as a spec.md §7 user-facing failure (exit 1)
// rather than an internal one (exit 2).
type userError struct{ error }

func asUserError(err error) error {
	if err == nil {
		return nil
	}
	return userError{err}
}
