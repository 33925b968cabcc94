package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexWith(anchor string, entries map[string]bool) *IndexManifest {
	man := &IndexManifest{
		AnchorDate: anchor,
		Entries:    make(map[string]Entry, len(entries)),
	}
	for date, ok := range entries {
		e := Entry{OK: ok, Date: date}
		if !ok {
			e.Kind = FailureHTTP
			e.StatusCode = 404
		}
		man.Entries[date] = e
	}
	return man
}

func TestResolveBest_ExactMatchWins(t *testing.T) {
	man := indexWith("2024-06-01", map[string]bool{
		"2024-05-30": true,
		"2024-06-01": true,
		"2024-06-02": true,
	})

	got, err := ResolveBest(man, "2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-30", got)
}

func TestResolveBest_ExactPresentButFailedFallsThrough(t *testing.T) {
	man := indexWith("2024-06-01", map[string]bool{
		"2024-05-30": false,
		"2024-06-01": true,
	})

	got, err := ResolveBest(man, "2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", got, "failed exact match falls back to the anchor")
}

func TestResolveBest_AnchorBeforeNearest(t *testing.T) {
	// 2024-05-29 is closer to the request than the anchor, but the
	// anchor takes priority when the exact date is missing.
	man := indexWith("2024-06-10", map[string]bool{
		"2024-05-29": true,
		"2024-06-10": true,
	})

	got, err := ResolveBest(man, "2024-05-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", got)
}

func TestResolveBest_NearestWhenNoAnchor(t *testing.T) {
	man := indexWith("2024-06-10", map[string]bool{
		"2024-06-10": false, // anchor attempted but failed
		"2024-05-28": true,
		"2024-06-03": true,
	})

	got, err := ResolveBest(man, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", got, "minimum day distance wins")
}

func TestResolveBest_TieBrokenByEarliestDate(t *testing.T) {
	man := indexWith("2024-06-10", map[string]bool{
		"2024-05-31": true,
		"2024-06-02": true,
	})

	got, err := ResolveBest(man, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31", got, "equidistant dates resolve to the ascending-sort first")
}

func TestResolveBest_NoOKDates(t *testing.T) {
	man := indexWith("2024-06-01", map[string]bool{
		"2024-06-01": false,
		"2024-06-02": false,
	})

	_, err := ResolveBest(man, "2024-06-01")
	assert.ErrorIs(t, err, ErrNoDates)

	_, err = ResolveBest(indexWith("2024-06-01", nil), "2024-06-01")
	assert.ErrorIs(t, err, ErrNoDates)
}
