package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quadgrid/quadgrid/internal/syncer"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	ConfigPath string
	CacheDir   string
	BaseURL    string
	Timezone   string
	From       int
	To         int
	Timeout    time.Duration
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch the current date window into the local cache",
		Long: `Fetch every puzzle in the configured date window into the cache
directory, skipping dates already cached, then rewrite the index,
availability, and latest-alias manifests.

Dates that fail to fetch are recorded in the index and retried on the
next run; a partial day is not an error.

Example:
  quadgrid sync --cache-dir ./cache --base-url https://example.com/puzzles
  quadgrid sync --config sync.yaml --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "cache directory (overrides config)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "remote source root (overrides config)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "IANA zone anchoring the window (overrides config)")
	cmd.Flags().IntVar(&opts.From, "from", 0, "window start offset in days (overrides config)")
	cmd.Flags().IntVar(&opts.To, "to", 0, "window end offset in days (overrides config)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-fetch timeout (overrides config)")

	return cmd
}

// buildSyncConfig layers flag overrides onto the file (or default)
// config. Only flags the user actually set override.
func buildSyncConfig(cmd *cobra.Command, opts *SyncOptions) (syncer.Config, error) {
	cfg := syncer.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := syncer.LoadConfig(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = opts.CacheDir
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = opts.BaseURL
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = opts.Timezone
	}
	if cmd.Flags().Changed("from") {
		cfg.From = opts.From
	}
	if cmd.Flags().Changed("to") {
		cfg.To = opts.To
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = syncer.Duration(opts.Timeout)
	}
	return cfg, nil
}

func runSync(cmd *cobra.Command, opts *SyncOptions) error {
	logger := setupLogging(opts.Verbose)

	cfg, err := buildSyncConfig(cmd, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	s, err := syncer.New(cfg, syncer.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid sync configuration", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := s.Run(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "sync failed", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"anchor %s: attempted %d, fetched %d, skipped %d, failed %d, available %d\n",
		report.AnchorDate, report.Attempted, report.Fetched,
		report.Skipped, report.Failed, report.Available)
	return nil
}
