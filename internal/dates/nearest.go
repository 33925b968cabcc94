package dates

// Nearest picks the best date from an ascending-sorted list of
// available dates for calendar navigation.
//
// An exact hit wins immediately. Otherwise the date with the minimum
// absolute day distance wins, ties broken by the earliest date (the
// first element of the ascending sort that attains the minimum).
// Returns "" only when the list is empty.
//
// Dates that fail to parse are skipped rather than failing the lookup;
// the availability list is self-verified upstream, so a bad entry here
// means a corrupted manifest and the best response is to keep looking.
func Nearest(sorted []string, want string) string {
	if len(sorted) == 0 {
		return ""
	}

	best := ""
	bestDist := -1
	for _, d := range sorted {
		if d == want {
			return d
		}
		dist, err := DayDistance(d, want)
		if err != nil {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}
