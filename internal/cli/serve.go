package cli

import (
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quadgrid/quadgrid/internal/progress"
	"github.com/quadgrid/quadgrid/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	CacheDir   string
	Database   string
	Bind       string
	Port       int
	StrictLock bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached puzzles and play sessions over HTTP",
		Long: `Serve the synced cache over HTTP: puzzle documents with best-date
fallback, the availability manifest, and a stateful play-session API
with per-date progress persisted to SQLite.

Example:
  quadgrid serve --cache-dir ./cache --port 8080
  quadgrid serve --cache-dir ./cache --db ./progress.db --strict-lock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "cache directory (required)")
	_ = cmd.MarkFlagRequired("cache-dir")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to progress database (default: <cache-dir>/progress.db)")
	cmd.Flags().StringVarP(&opts.Bind, "bind", "b", "0.0.0.0", "address to bind to")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 8080, "port to listen on")
	cmd.Flags().BoolVar(&opts.StrictLock, "strict-lock", false, "reject all input while a submission is in flight")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	logger := setupLogging(opts.Verbose)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = filepath.Join(opts.CacheDir, "progress.db")
	}
	store, err := progress.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open progress database", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing progress database", "error", closeErr)
		}
	}()

	serverOpts := []server.Option{server.WithLogger(logger)}
	if opts.StrictLock {
		serverOpts = append(serverOpts, server.WithStrictLock())
	}
	srv := server.New(opts.CacheDir, store, serverOpts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(opts.Bind, strconv.Itoa(opts.Port))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	return nil
}
