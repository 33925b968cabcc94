package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/quadgrid/quadgrid/internal/dates"
	"github.com/quadgrid/quadgrid/internal/puzzle"
)

// dateFilePattern matches cache files named for a print date.
var dateFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.json$`)

// probe is the minimal view of a payload the sync job cares about.
// Full structural validation is the solve engine's concern; the sync
// job only checks the status sentinel and identity fields.
type probe struct {
	Status    string `json:"status"`
	ID        int    `json:"id"`
	PrintDate string `json:"print_date"`
	Editor    string `json:"editor"`
}

// Syncer performs one date-window sync run. Fields that touch the
// outside world (clock, HTTP client, logger) are injectable for tests.
type Syncer struct {
	cfg    Config
	loc    *time.Location
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Syncer) { s.client = c }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// WithNow overrides the wall-clock source. Tests pin this to make the
// anchor date and manifest timestamps deterministic.
func WithNow(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// New validates cfg and builds a Syncer.
func New(cfg Config, opts ...Option) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("syncer config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	s := &Syncer{
		cfg:    cfg,
		loc:    loc,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout)},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Report summarizes one run for CLI output.
type Report struct {
	AnchorDate string `json:"anchor_date"`
	Attempted  int    `json:"attempted"`
	Fetched    int    `json:"fetched"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	Available  int    `json:"available"`
}

// Run executes the full sync: window walk, index manifest, latest
// alias, availability rescan. Only setup errors are returned; per-date
// failures land in the index as failed entries.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	anchor := dates.Anchor(s.now(), s.loc)
	window, err := dates.Window(anchor, s.cfg.From, s.cfg.To)
	if err != nil {
		return nil, fmt.Errorf("compute date window: %w", err)
	}
	s.logger.Info("sync starting",
		"anchor", anchor,
		"from", s.cfg.From,
		"to", s.cfg.To,
		"cache_dir", s.cfg.CacheDir,
	)

	report := &Report{AnchorDate: anchor, Attempted: len(window)}
	entries := make(map[string]Entry, len(window))
	for _, date := range window {
		entry, fetched := s.syncDate(ctx, date)
		entries[date] = entry
		switch {
		case entry.OK && fetched:
			report.Fetched++
		case entry.OK:
			report.Skipped++
		default:
			report.Failed++
		}
	}

	index := &IndexManifest{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Timezone:    s.cfg.Timezone,
		AnchorDate:  anchor,
		From:        s.cfg.From,
		To:          s.cfg.To,
		Entries:     entries,
	}
	if err := writeJSON(filepath.Join(s.cfg.CacheDir, IndexFile), index); err != nil {
		return nil, err
	}

	if err := s.writeLatestAlias(anchor); err != nil {
		return nil, err
	}

	avail, err := s.scanAvailability()
	if err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(s.cfg.CacheDir, AvailabilityFile), avail); err != nil {
		return nil, err
	}
	report.Available = len(avail.Dates)

	s.logger.Info("sync finished",
		"fetched", report.Fetched,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"available", report.Available,
	)
	return report, nil
}

// syncDate produces the index entry for one date. The second return
// reports whether the network was hit.
func (s *Syncer) syncDate(ctx context.Context, date string) (Entry, bool) {
	path := s.cachePath(date)

	// Cache-first: a file that exists, parses, and carries the
	// success status satisfies the date with zero network cost.
	if p, err := readProbe(path); err == nil && p.Status == puzzle.StatusOK {
		s.logger.Debug("cache hit", "date", date)
		return okEntry(date, p), false
	}

	entry := s.fetchDate(ctx, date)
	return entry, true
}

// fetchDate fetches one date from the remote source and, on success,
// persists the raw payload verbatim.
func (s *Syncer) fetchDate(ctx context.Context, date string) Entry {
	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/" + date + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failEntry(date, FailureHTTP, 0, err.Error())
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("fetch failed", "date", date, "error", err)
		return failEntry(date, FailureHTTP, 0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Debug("date unavailable", "date", date, "status", resp.StatusCode)
		return failEntry(date, FailureHTTP, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failEntry(date, FailureHTTP, resp.StatusCode, err.Error())
	}

	var p probe
	if err := json.Unmarshal(body, &p); err != nil {
		return failEntry(date, FailureBadFile, resp.StatusCode, err.Error())
	}
	if p.Status != puzzle.StatusOK {
		return failEntry(date, FailureNotOK, resp.StatusCode, p.Status)
	}

	if err := os.WriteFile(s.cachePath(date), body, 0o644); err != nil {
		s.logger.Warn("cache write failed", "date", date, "error", err)
		return failEntry(date, FailureBadFile, resp.StatusCode, err.Error())
	}
	s.logger.Info("fetched", "date", date, "id", p.ID)
	return okEntry(date, &p)
}

// writeLatestAlias mirrors the anchor date's file to latest.json, only
// if that file exists.
func (s *Syncer) writeLatestAlias(anchor string) error {
	data, err := os.ReadFile(s.cachePath(anchor))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read anchor file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.cfg.CacheDir, LatestFile), data, 0o644); err != nil {
		return fmt.Errorf("write latest alias: %w", err)
	}
	return nil
}

// scanAvailability independently re-derives the list of verified dates
// from the cache directory. A file counts only if it parses, carries
// the success status, and its embedded print date matches its filename.
func (s *Syncer) scanAvailability() (*AvailabilityManifest, error) {
	dirEntries, err := os.ReadDir(s.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("scan cache dir: %w", err)
	}

	var found []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		m := dateFilePattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		date := m[1]
		p, err := readProbe(filepath.Join(s.cfg.CacheDir, de.Name()))
		if err != nil || p.Status != puzzle.StatusOK {
			s.logger.Warn("excluding unreadable cache file", "file", de.Name())
			continue
		}
		if p.PrintDate != date {
			s.logger.Warn("excluding mismatched cache file",
				"file", de.Name(),
				"print_date", p.PrintDate,
			)
			continue
		}
		found = append(found, date)
	}
	sort.Strings(found)

	// Encode as an empty list, not null.
	if found == nil {
		found = []string{}
	}

	return &AvailabilityManifest{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Timezone:    s.cfg.Timezone,
		Dates:       found,
	}, nil
}

func (s *Syncer) cachePath(date string) string {
	return filepath.Join(s.cfg.CacheDir, date+".json")
}

func readProbe(path string) (*probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func okEntry(date string, p *probe) Entry {
	return Entry{OK: true, Date: date, DocumentID: p.ID, Editor: p.Editor}
}

func failEntry(date string, kind FailureKind, code int, text string) Entry {
	return Entry{OK: false, Date: date, Kind: kind, StatusCode: code, StatusText: text}
}
