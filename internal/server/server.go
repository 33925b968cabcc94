package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/quadgrid/quadgrid/internal/engine"
	"github.com/quadgrid/quadgrid/internal/progress"
)

const shutdownGrace = 5 * time.Second

// Version is reported by the version endpoint. Overridden at link
// time for releases.
var Version = "dev"

// Server routes puzzle reads and play sessions over one cache
// directory and one progress store.
type Server struct {
	cacheDir string
	store    *progress.Store
	logger   *slog.Logger

	strictLock bool
	loadSeq    engine.LoadSeq

	mu       sync.RWMutex
	sessions map[string]*playSession
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStrictLock makes play sessions reject all input while a
// submission is in flight, instead of only the four pending tiles.
func WithStrictLock() Option {
	return func(s *Server) { s.strictLock = true }
}

// New creates a server over a synced cache directory. The progress
// store may be nil, in which case play sessions start fresh and are
// not persisted.
func New(cacheDir string, store *progress.Store, opts ...Option) *Server {
	s := &Server{
		cacheDir: cacheDir,
		store:    store,
		logger:   slog.Default(),
		sessions: make(map[string]*playSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *httprouter.Router {
	mux := httprouter.New()

	mux.GET("/healthz", s.serveHealth())
	mux.GET("/version", s.serveVersion())

	mux.GET("/puzzles/:date", s.servePuzzle())
	mux.GET("/dates", s.serveDates())
	mux.GET("/dates/nearest", s.serveNearest())

	mux.POST("/play/:date", s.createSession())
	mux.GET("/sessions/:id/state", s.withSession(s.serveState))
	mux.POST("/sessions/:id/toggle", s.withSession(s.toggleTile))
	mux.POST("/sessions/:id/submit", s.withSession(s.submitGuess))
	mux.POST("/sessions/:id/reset", s.withSession(s.resetSession))
	mux.GET("/sessions/:id/share", s.withSession(s.serveShareText))
	mux.GET("/sessions/:id/share.png", s.withSession(s.serveShareQR))

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, _ any) {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL", "an internal error occurred")
	}
	mux.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})

	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func securityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")
}

func (s *Server) serveHealth() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		fmt.Fprintln(w, "ok")
	}
}

func (s *Server) serveVersion() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(w)
		fmt.Fprintf(w, "quadgrid v%s\n", Version)
	}
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
