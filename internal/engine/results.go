package engine

import (
	"fmt"
	"strings"
)

// Results is the sharable summary of a finished (or in-progress)
// session: the emoji grid mirrors the original game's share format,
// one row per guess with each tile's true-rank color in click order.
type Results struct {
	PuzzleID     int      `json:"puzzle_id"`
	PrintDate    string   `json:"print_date"`
	Solved       bool     `json:"solved"`
	Failed       bool     `json:"failed"`
	MistakesUsed int      `json:"mistakes_used"`
	Grid         []string `json:"grid"`
	ShareText    string   `json:"share_text"`
}

// Results builds the current results view.
func (s *Session) Results() Results {
	res := Results{
		PuzzleID:     s.doc.ID,
		PrintDate:    s.doc.PrintDate,
		Solved:       s.completed && !s.didFail,
		Failed:       s.didFail,
		MistakesUsed: MaxMistakes - s.mistakesLeft,
	}
	for _, guess := range s.guesses {
		var row strings.Builder
		for _, r := range guess {
			row.WriteString(r.Emoji())
		}
		res.Grid = append(res.Grid, row.String())
	}

	var share strings.Builder
	fmt.Fprintf(&share, "Puzzle #%d (%s)\n", s.doc.ID, s.doc.PrintDate)
	share.WriteString(strings.Join(res.Grid, "\n"))
	res.ShareText = share.String()
	return res
}

// DismissResults marks the results overlay as seen; reopening later is
// allowed but no longer automatic.
func (s *Session) DismissResults() {
	s.resultsSeen = true
	s.justCompleted = false
}

// ResultsDismissed reports whether the overlay was explicitly closed.
func (s *Session) ResultsDismissed() bool {
	return s.resultsSeen
}
