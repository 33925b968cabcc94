package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadgrid/quadgrid/internal/engine"
	"github.com/quadgrid/quadgrid/internal/progress"
	"github.com/quadgrid/quadgrid/internal/puzzle"
)

type playResponse struct {
	Result *engine.GuessResult `json:"result"`
	stateView
	Err struct {
		Code string `json:"code"`
	} `json:"error"`
}

func postJSON(t *testing.T, url string, body any) (int, playResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out playResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func createPlay(t *testing.T, ts *httptest.Server, date string) playResponse {
	t.Helper()
	code, out := postJSON(t, ts.URL+"/play/"+date, nil)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, out.ID)
	return out
}

// tid addresses the fixture documents, where category c owns
// positions c*4 through c*4+3.
func tid(docID, c, i int) puzzle.TileID {
	return puzzle.NewTileID(docID, c*puzzle.CardsPerCategory+i)
}

func toggle(t *testing.T, ts *httptest.Server, id string, tile puzzle.TileID) (int, playResponse) {
	t.Helper()
	return postJSON(t, fmt.Sprintf("%s/sessions/%s/toggle", ts.URL, id),
		map[string]string{"tile": string(tile)})
}

func selectGroup(t *testing.T, ts *httptest.Server, id string, docID, c int) {
	t.Helper()
	for i := 0; i < puzzle.CardsPerCategory; i++ {
		code, _ := toggle(t, ts, id, tid(docID, c, i))
		require.Equal(t, http.StatusOK, code)
	}
}

func TestPlay_CreateAndState(t *testing.T) {
	_, ts := newTestServer(t)

	sess := createPlay(t, ts, "2024-05-30")
	assert.Equal(t, engine.StateSelecting, sess.State)
	assert.Len(t, sess.Tiles, puzzle.NumCards)
	assert.Equal(t, engine.MaxMistakes, sess.MistakesLeft)

	var got playResponse
	code := getJSON(t, fmt.Sprintf("%s/sessions/%s/state", ts.URL, sess.ID), &got)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, sess.ID, got.ID)
}

func TestPlay_UnknownSession(t *testing.T) {
	_, ts := newTestServer(t)

	code, out := postJSON(t, ts.URL+"/sessions/nope/reset", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NO_SESSION", out.Err.Code)
}

func TestPlay_ToggleAndSubmitCorrect(t *testing.T) {
	_, ts := newTestServer(t)
	sess := createPlay(t, ts, "2024-05-30")

	selectGroup(t, ts, sess.ID, 100, 0)

	code, out := postJSON(t, fmt.Sprintf("%s/sessions/%s/submit", ts.URL, sess.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.Correct)
	assert.Equal(t, puzzle.RankYellow, out.Result.Rank)
	assert.Len(t, out.Groups, 1)
	assert.Empty(t, out.Selection)
}

func TestPlay_SubmitWrongOneAway(t *testing.T) {
	_, ts := newTestServer(t)
	sess := createPlay(t, ts, "2024-05-30")

	for i := 0; i < 3; i++ {
		toggle(t, ts, sess.ID, tid(100, 0, i))
	}
	toggle(t, ts, sess.ID, tid(100, 1, 0))

	code, out := postJSON(t, fmt.Sprintf("%s/sessions/%s/submit", ts.URL, sess.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, out.Result)
	assert.False(t, out.Result.Correct)
	assert.True(t, out.Result.OneAway)
	assert.Equal(t, engine.MaxMistakes-1, out.MistakesLeft)
	assert.Len(t, out.Selection, 4, "wrong guess keeps the selection")
}

func TestPlay_ToggleErrors(t *testing.T) {
	_, ts := newTestServer(t)
	sess := createPlay(t, ts, "2024-05-30")

	code, out := toggle(t, ts, sess.ID, "999_00")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(engine.ErrCodeUnknownTile), out.Err.Code)

	for i := 0; i < 4; i++ {
		toggle(t, ts, sess.ID, tid(100, 0, i))
	}
	code, out = toggle(t, ts, sess.ID, tid(100, 1, 0))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(engine.ErrCodeSelectionFull), out.Err.Code)
}

func TestPlay_SolveToTerminalAndShare(t *testing.T) {
	_, ts := newTestServer(t)
	sess := createPlay(t, ts, "2024-05-30")

	var last playResponse
	for c := 0; c < puzzle.NumCategories; c++ {
		selectGroup(t, ts, sess.ID, 100, c)
		code, out := postJSON(t, fmt.Sprintf("%s/sessions/%s/submit", ts.URL, sess.ID), nil)
		require.Equal(t, http.StatusOK, code)
		last = out
	}
	assert.Equal(t, engine.StateSolved, last.State)
	require.NotNil(t, last.Results)
	assert.True(t, last.Results.Solved)

	resp, err := http.Get(fmt.Sprintf("%s/sessions/%s/share", ts.URL, sess.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Puzzle #100 (2024-05-30)")

	// Terminal sessions reject further input.
	code, out := toggle(t, ts, sess.ID, tid(100, 0, 0))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(engine.ErrCodeTerminal), out.Err.Code)
}

func TestPlay_ShareQR(t *testing.T) {
	_, ts := newTestServer(t)
	sess := createPlay(t, ts, "2024-05-30")

	resp, err := http.Get(fmt.Sprintf("%s/sessions/%s/share.png", ts.URL, sess.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestPlay_Placeholder(t *testing.T) {
	_, ts := newTestServer(t)

	sess := createPlay(t, ts, "placeholder")
	assert.Equal(t, puzzle.Placeholder().PrintDate, sess.Date)
}

func TestPlay_ProgressPersistsAcrossServers(t *testing.T) {
	dir := writeCache(t, fixtureDoc(100, "2024-05-30"))
	store, err := progress.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts1 := httptest.NewServer(New(dir, store, WithLogger(logger)).Router())
	sess := createPlay(t, ts1, "2024-05-30")
	selectGroup(t, ts1, sess.ID, 100, 2)
	code, out := postJSON(t, fmt.Sprintf("%s/sessions/%s/submit", ts1.URL, sess.ID), nil)
	require.Equal(t, http.StatusOK, code)
	require.True(t, out.Result.Correct)
	ts1.Close()

	// A fresh server over the same store restores the solved group.
	ts2 := httptest.NewServer(New(dir, store, WithLogger(logger)).Router())
	defer ts2.Close()
	restored := createPlay(t, ts2, "2024-05-30")
	require.Len(t, restored.Groups, 1)
	assert.Equal(t, puzzle.RankBlue, restored.Groups[0].Rank)
}

func TestPlay_ResetClearsProgress(t *testing.T) {
	dir := writeCache(t, fixtureDoc(100, "2024-05-30"))
	store, err := progress.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer store.Close()

	ts := httptest.NewServer(New(dir, store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).Router())
	defer ts.Close()

	sess := createPlay(t, ts, "2024-05-30")
	selectGroup(t, ts, sess.ID, 100, 0)
	postJSON(t, fmt.Sprintf("%s/sessions/%s/submit", ts.URL, sess.ID), nil)

	code, out := postJSON(t, fmt.Sprintf("%s/sessions/%s/reset", ts.URL, sess.ID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out.Groups)
	assert.Equal(t, engine.MaxMistakes, out.MistakesLeft)

	_, ok, err := store.Get(context.Background(), "2024-05-30")
	require.NoError(t, err)
	assert.False(t, ok)
}
