package syncer

import (
	"errors"
	"sort"

	"github.com/quadgrid/quadgrid/internal/dates"
)

// ErrNoDates is returned by ResolveBest when the index contains no ok
// entries at all. Callers fall back further (latest alias, then the
// built-in placeholder).
var ErrNoDates = errors.New("index manifest contains no ok dates")

// ResolveBest picks the best available cached date for a request,
// without requiring an exact match. Strict priority:
//
//  1. the requested date itself, if present and ok
//  2. the manifest's anchor date, if present and ok
//  3. the ok date with minimum absolute day distance from the request,
//     ties broken by the earliest date in ascending order
//
// Returns ErrNoDates when no ok entries exist.
func ResolveBest(man *IndexManifest, want string) (string, error) {
	if e, ok := man.Entries[want]; ok && e.OK {
		return want, nil
	}
	if e, ok := man.Entries[man.AnchorDate]; ok && e.OK {
		return man.AnchorDate, nil
	}

	okDates := make([]string, 0, len(man.Entries))
	for date, e := range man.Entries {
		if e.OK {
			okDates = append(okDates, date)
		}
	}
	if len(okDates) == 0 {
		return "", ErrNoDates
	}
	sort.Strings(okDates)

	best := ""
	bestDist := -1
	for _, d := range okDates {
		dist, err := dates.DayDistance(d, want)
		if err != nil {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if best == "" {
		return "", ErrNoDates
	}
	return best, nil
}
