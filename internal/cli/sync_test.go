package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadgrid/quadgrid/internal/puzzle"
	"github.com/quadgrid/quadgrid/internal/syncer"
)

// puzzleSource serves a valid document for any /{date}.json request,
// echoing the requested date back as the print date.
func puzzleSource(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json")
		doc := puzzle.Document{
			Status:    puzzle.StatusOK,
			ID:        1,
			PrintDate: date,
		}
		for c := 0; c < puzzle.NumCategories; c++ {
			cat := puzzle.Category{Title: fmt.Sprintf("Group %d", c)}
			for i := 0; i < puzzle.CardsPerCategory; i++ {
				cat.Cards = append(cat.Cards, puzzle.Card{
					Content:  fmt.Sprintf("word %d", c*puzzle.CardsPerCategory+i),
					Position: c*puzzle.CardsPerCategory + i,
				})
			}
			doc.Categories = append(doc.Categories, cat)
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSyncCommand_FetchesWindow(t *testing.T) {
	src := puzzleSource(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	stdout, _, err := execute(t,
		"sync",
		"--cache-dir", cacheDir,
		"--base-url", src.URL,
		"--timezone", "UTC",
		"--from", "0",
		"--to", "1",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "attempted 2")
	assert.Contains(t, stdout, "fetched 2")

	for _, name := range []string{syncer.IndexFile, syncer.AvailabilityFile, syncer.LatestFile} {
		_, statErr := os.Stat(filepath.Join(cacheDir, name))
		assert.NoError(t, statErr, "manifest %s should exist", name)
	}
}

func TestSyncCommand_JSONOutput(t *testing.T) {
	src := puzzleSource(t)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	stdout, _, err := execute(t,
		"sync",
		"--format", "json",
		"--cache-dir", cacheDir,
		"--base-url", src.URL,
		"--timezone", "UTC",
		"--from", "0",
		"--to", "0",
	)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestSyncCommand_ConfigFileWithFlagOverride(t *testing.T) {
	src := puzzleSource(t)
	fileCache := filepath.Join(t.TempDir(), "from-file")
	flagCache := filepath.Join(t.TempDir(), "from-flag")

	cfgPath := filepath.Join(t.TempDir(), "sync.yaml")
	cfg := fmt.Sprintf("timezone: UTC\nfrom: 0\nto: 0\nbase_url: %s\ncache_dir: %s\n", src.URL, fileCache)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, _, err := execute(t, "sync", "--config", cfgPath, "--cache-dir", flagCache)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(flagCache, syncer.IndexFile))
	assert.NoError(t, statErr, "flag override should win over the config file")
	_, statErr = os.Stat(fileCache)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncCommand_InvalidConfigIsCommandError(t *testing.T) {
	_, _, err := execute(t, "sync", "--cache-dir", t.TempDir(), "--timezone", "Mars/Olympus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSyncCommand_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "sync", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
