package syncer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest filenames within the cache directory.
const (
	IndexFile        = "index.json"
	AvailabilityFile = "available-dates.json"
	LatestFile       = "latest.json"
)

// FailureKind distinguishes why a date could not be synced. The
// distinction is preserved in the index so consumers (and humans) can
// tell a not-yet-published date from a broken payload.
type FailureKind string

const (
	// FailureHTTP is a transport failure or non-2xx response.
	FailureHTTP FailureKind = "http"

	// FailureNotOK is a 2xx response whose status field is not the
	// success sentinel.
	FailureNotOK FailureKind = "not-ok"

	// FailureBadFile is a payload that does not parse at all.
	FailureBadFile FailureKind = "bad-file"
)

// Entry is the tagged per-date result of a sync attempt.
type Entry struct {
	OK   bool   `json:"ok"`
	Date string `json:"date"`

	// Set when OK.
	DocumentID int    `json:"document_id,omitempty"`
	Editor     string `json:"editor,omitempty"`

	// Set when not OK.
	Kind       FailureKind `json:"kind,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	StatusText string      `json:"status_text,omitempty"`
}

// IndexManifest aggregates every attempted date of one run. Entries is
// keyed by ISO date; Go's JSON encoder sorts map keys, so the encoded
// manifest is byte-stable for identical contents.
type IndexManifest struct {
	GeneratedAt string           `json:"generated_at"`
	Timezone    string           `json:"timezone"`
	AnchorDate  string           `json:"anchor_date"`
	From        int              `json:"offset_from"`
	To          int              `json:"offset_to"`
	Entries     map[string]Entry `json:"entries"`
}

// AvailabilityManifest lists the dates whose cached files were
// re-verified on disk: status OK and embedded print date matching the
// filename. Dates are ascending-sorted.
type AvailabilityManifest struct {
	GeneratedAt string   `json:"generated_at"`
	Timezone    string   `json:"timezone"`
	Dates       []string `json:"dates"`
}

// writeJSON writes v as indented JSON with a trailing newline.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadIndex reads an IndexManifest from disk.
func LoadIndex(path string) (*IndexManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var man IndexManifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &man, nil
}

// LoadAvailability reads an AvailabilityManifest from disk.
func LoadAvailability(path string) (*AvailabilityManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read availability: %w", err)
	}
	var man AvailabilityManifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("parse availability %s: %w", path, err)
	}
	return &man, nil
}
