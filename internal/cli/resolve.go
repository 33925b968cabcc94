package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quadgrid/quadgrid/internal/dates"
	"github.com/quadgrid/quadgrid/internal/syncer"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	CacheDir string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <date>",
		Short: "Resolve the best cached date for a request",
		Long: `Resolve a requested date against the cache's index manifest.

The requested date wins when it synced ok; otherwise the window's
anchor date, then the nearest ok date by absolute day distance with
ties broken toward the earlier date.

Example:
  quadgrid resolve --cache-dir ./cache 2024-06-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "cache directory (required)")
	_ = cmd.MarkFlagRequired("cache-dir")

	return cmd
}

type resolution struct {
	Requested string `json:"requested"`
	Resolved  string `json:"resolved"`
	Exact     bool   `json:"exact"`
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions, want string) error {
	setupLogging(opts.Verbose)

	if _, err := dates.Parse(want); err != nil {
		return WrapExitError(ExitCommandError, "invalid date", err)
	}

	man, err := syncer.LoadIndex(filepath.Join(opts.CacheDir, syncer.IndexFile))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load index manifest", err)
	}

	best, err := syncer.ResolveBest(man, want)
	if errors.Is(err, syncer.ErrNoDates) {
		return WrapExitError(ExitFailure, "no resolvable dates in cache", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "resolution failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(resolution{Requested: want, Resolved: best, Exact: best == want})
	}
	fmt.Fprintln(cmd.OutOrStdout(), best)
	return nil
}
