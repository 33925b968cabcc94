package engine

import (
	"sort"
	"strings"

	"github.com/quadgrid/quadgrid/internal/puzzle"
)

// fingerprintSeparator joins sorted tile ids into a guess fingerprint.
// Tile ids never contain '+'.
const fingerprintSeparator = "+"

// Fingerprint computes the order-independent identity of a guess:
// tile ids sorted as strings and joined. [A B C D] and [D C B A]
// produce the same fingerprint. String sort is positionally correct
// because tile ids zero-pad their position component.
func Fingerprint(ids []puzzle.TileID) string {
	sorted := make([]string, len(ids))
	for i, id := range ids {
		sorted[i] = string(id)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, fingerprintSeparator)
}

// GuessResult reports the outcome of one resolved submission.
type GuessResult struct {
	// Correct is set when the guess matched an answer group; Rank and
	// Group identify the commit.
	Correct bool         `json:"correct"`
	Rank    puzzle.Rank  `json:"rank,omitempty"`
	Group   *PlayerGroup `json:"group,omitempty"`

	// Duplicate marks a previously attempted fingerprint: no penalty,
	// no state change, selection preserved.
	Duplicate bool `json:"duplicate,omitempty"`

	// OneAway marks a wrong guess sharing exactly three tiles with
	// some unsolved answer.
	OneAway bool `json:"one_away,omitempty"`

	MistakesLeft int  `json:"mistakes_left"`
	Solved       bool `json:"solved,omitempty"`
	Failed       bool `json:"failed,omitempty"`
}

// BeginSubmit opens the submission window, snapshotting the pending
// four tiles. It reports false with no error when fewer than four
// tiles are selected: submitting an incomplete selection is a no-op,
// not an error.
func (s *Session) BeginSubmit() (bool, error) {
	if s.completed {
		return false, newPlayError(ErrCodeTerminal, "puzzle is finished")
	}
	if s.submitting {
		return false, newPlayError(ErrCodeBusy, "a submission is already in flight")
	}
	if len(s.selection) != SelectionSize {
		return false, nil
	}
	s.pending = append([]puzzle.TileID(nil), s.selection...)
	s.submitting = true
	return true, nil
}

// ResolveSubmit evaluates the pending guess and commits its state
// mutations, closing the submission window.
func (s *Session) ResolveSubmit() (*GuessResult, error) {
	if !s.submitting {
		return nil, newPlayError(ErrCodeNotSubmitting, "no submission in flight")
	}
	defer func() {
		s.submitting = false
		s.pending = nil
	}()
	return s.evaluate(s.pending), nil
}

// Submit is the one-shot form: BeginSubmit immediately followed by
// ResolveSubmit. Returns (nil, nil) on the incomplete-selection no-op.
func (s *Session) Submit() (*GuessResult, error) {
	opened, err := s.BeginSubmit()
	if err != nil {
		return nil, err
	}
	if !opened {
		return nil, nil
	}
	return s.ResolveSubmit()
}

// evaluate scores one four-tile guess against the unsolved answers.
func (s *Session) evaluate(guess []puzzle.TileID) *GuessResult {
	fp := Fingerprint(guess)
	if s.fingerprints[fp] {
		// Informational only: no penalty, no recording, selection kept.
		return &GuessResult{Duplicate: true, MistakesLeft: s.mistakesLeft}
	}

	// Record the guess in the user's click order, mapped to each
	// tile's true rank, regardless of correctness.
	ranks := make([]puzzle.Rank, len(guess))
	for i, id := range guess {
		ranks[i] = s.rankOf[id]
	}
	s.guesses = append(s.guesses, ranks)
	s.fingerprints[fp] = true

	if ag, ok := s.matchAnswer(guess); ok {
		group := s.commitGroup(ag, false)
		res := &GuessResult{
			Correct:      true,
			Rank:         ag.Rank,
			Group:        group,
			MistakesLeft: s.mistakesLeft,
		}
		if len(s.groups) == puzzle.NumCategories {
			s.completed = true
			s.justCompleted = true
			res.Solved = true
		}
		return res
	}

	res := &GuessResult{OneAway: s.oneAway(guess)}
	if s.mistakesLeft > 0 {
		s.mistakesLeft--
	}
	res.MistakesLeft = s.mistakesLeft

	if s.mistakesLeft == 0 {
		s.failAndReveal()
		res.Failed = true
	}
	return res
}

// matchAnswer finds the unsolved answer group whose tiles equal the
// guess, comparing both sides sorted.
func (s *Session) matchAnswer(guess []puzzle.TileID) (puzzle.AnswerGroup, bool) {
	guessSorted := sortedIDs(guess)
	for _, ag := range s.answers {
		if s.rankSolved(ag.Rank) {
			continue
		}
		if equalIDs(sortedIDs(ag.Tiles[:]), guessSorted) {
			return ag, true
		}
	}
	return puzzle.AnswerGroup{}, false
}

// oneAway reports whether any unsolved answer shares exactly three of
// its four tiles with the guess.
func (s *Session) oneAway(guess []puzzle.TileID) bool {
	in := make(map[puzzle.TileID]bool, len(guess))
	for _, id := range guess {
		in[id] = true
	}
	for _, ag := range s.answers {
		if s.rankSolved(ag.Rank) {
			continue
		}
		shared := 0
		for _, id := range ag.Tiles {
			if in[id] {
				shared++
			}
		}
		if shared == puzzle.CardsPerCategory-1 {
			return true
		}
	}
	return false
}

// commitGroup forms a PlayerGroup from an answer, in canonical card
// order, and removes its tiles from the active pool and selection.
func (s *Session) commitGroup(ag puzzle.AnswerGroup, autoRevealed bool) *PlayerGroup {
	g := PlayerGroup{
		ID:           s.newGroupID(),
		Rank:         ag.Rank,
		Title:        ag.Title,
		Tiles:        append([]puzzle.TileID(nil), ag.Tiles[:]...),
		AutoRevealed: autoRevealed,
	}
	s.groups = append(s.groups, g)

	committed := make(map[puzzle.TileID]bool, len(g.Tiles))
	for _, id := range g.Tiles {
		committed[id] = true
		delete(s.pool, id)
	}
	kept := s.selection[:0]
	for _, id := range s.selection {
		if !committed[id] {
			kept = append(kept, id)
		}
	}
	s.selection = append([]puzzle.TileID(nil), kept...)

	return &s.groups[len(s.groups)-1]
}

// failAndReveal commits every unsolved answer in rank order, empties
// the pool, and marks the terminal failure.
func (s *Session) failAndReveal() {
	for _, ag := range s.answers {
		if !s.rankSolved(ag.Rank) {
			s.commitGroup(ag, true)
		}
	}
	s.selection = nil
	s.didFail = true
	s.completed = true
	s.justCompleted = true
}

// rankSolved reports whether a rank's group has been formed.
func (s *Session) rankSolved(r puzzle.Rank) bool {
	for _, g := range s.groups {
		if g.Rank == r {
			return true
		}
	}
	return false
}

func sortedIDs(ids []puzzle.TileID) []puzzle.TileID {
	out := append([]puzzle.TileID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []puzzle.TileID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
