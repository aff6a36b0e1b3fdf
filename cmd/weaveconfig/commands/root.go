// Package commands implements weaveconfig's CLI surface: the argument
// parsing and subcommand dispatch that sits outside the resolver core,
// wiring pkg/pipeline to a terminal.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags, shared across subcommands.
	rootPath     string
	logLevel     string
	logFormat    string
	jsonOutput   bool
	metricsAddr  string
	enableTraces bool
)

// usageError marks a failure to set up a run from its arguments
// (resolving --root, reading weaveconfig.yaml), mapped to exit code 2.
// Pipeline errors (validation/resolution/emission) map to exit code 1
// and are not wrapped in usageError.
type usageError struct{ err error }

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

// pipelineError marks a non-empty wcerror.List surfaced from a run,
// mapped to exit code 1.
type pipelineError struct{ err error }

func (p *pipelineError) Error() string { return p.err.Error() }
func (p *pipelineError) Unwrap() error { return p.err }

// ExitCode maps a command's returned error to an exit code: 0 success,
// 1 validation/resolution errors, 2 usage error. A
// *pipelineError (a non-empty wcerror.List, already reported to
// stderr) maps to 1; everything else — cobra's own flag/arg-parsing
// failures and explicit *usageError wraps alike — maps to 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var p *pipelineError
	if errors.As(err, &p) {
		return 1
	}
	return 2
}

// Execute builds and runs the root command. Errors surfaced from cobra
// itself (unknown flag, bad arg count) arrive un-wrapped and are mapped
// to exit code 2 by ExitCode's default case; errors explicitly wrapped
// in *pipelineError (a non-empty wcerror.List) map to 1.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weaveconfig",
		Short: "Build-time configuration resolver for monorepos",
		Long: `weaveconfig resolves typed configuration across a monorepo of
"spaces" (apps, services, packages), merging shared and per-environment
variables along parent and dependency edges, and emits one resolved
config artifact plus a typed environment-selection binding per space
that requests generation.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig(rootPath)
			if err != nil {
				return &usageError{err: err}
			}
			cfg.applyDefaults(cmd.Flags().Changed)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", ".", "weaveconfig workspace root")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable errors as JSON lines")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (empty disables)")
	rootCmd.PersistentFlags().BoolVar(&enableTraces, "traces", false, "emit stdout trace spans for each pipeline stage")

	rootCmd.AddCommand(newGenCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newDevCommand())

	return rootCmd
}
