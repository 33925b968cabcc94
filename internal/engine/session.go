package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/quadgrid/quadgrid/internal/progress"
	"github.com/quadgrid/quadgrid/internal/puzzle"
)

// MaxMistakes is the number of wrong guesses allowed before the
// session fails and the remaining groups are revealed.
const MaxMistakes = 4

// SelectionSize is the number of tiles in a complete guess.
const SelectionSize = puzzle.CardsPerCategory

// State names the session's position in the solve state machine.
type State string

const (
	StateSelecting  State = "selecting"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateSolved     State = "solved"
	StateFailed     State = "failed"
)

// PlayerGroup is a formed group: either a correct guess committed in
// canonical order, or an answer auto-revealed on failure.
type PlayerGroup struct {
	ID           string          `json:"id"`
	Rank         puzzle.Rank     `json:"rank"`
	Title        string          `json:"title"`
	Tiles        []puzzle.TileID `json:"tiles"`
	AutoRevealed bool            `json:"auto_revealed,omitempty"`
}

// Session owns all mutable state for one loaded document. Not safe for
// concurrent use; callers that share a session across goroutines (the
// serve layer) wrap it in their own lock.
type Session struct {
	doc     *puzzle.Document
	answers [puzzle.NumCategories]puzzle.AnswerGroup
	rankOf  map[puzzle.TileID]puzzle.Rank

	pool         map[puzzle.TileID]puzzle.Tile
	selection    []puzzle.TileID // click order
	groups       []PlayerGroup
	guesses      [][]puzzle.Rank // each guess's ranks in click order
	fingerprints map[string]bool
	mistakesLeft int

	didFail       bool
	completed     bool
	justCompleted bool
	resultsSeen   bool

	submitting bool
	pending    []puzzle.TileID // snapshot taken at BeginSubmit
	strictLock bool

	newGroupID func() string
}

// Option configures a Session.
type Option func(*Session)

// WithStrictLock makes the in-flight window reject every tile toggle.
// The default policy only locks the four tiles of the pending guess.
func WithStrictLock() Option {
	return func(s *Session) { s.strictLock = true }
}

// WithProgress restores persisted progress into the new session.
// Malformed or inconsistent records are silently discarded and the
// session starts fresh; a progress record must never prevent play.
func WithProgress(rec *progress.Record) Option {
	return func(s *Session) { s.restore(rec) }
}

// withGroupIDs overrides group id generation; tests pin it.
func withGroupIDs(gen func() string) Option {
	return func(s *Session) { s.newGroupID = gen }
}

// NewSession validates doc and builds a fresh session over its tiles.
func NewSession(doc *puzzle.Document, opts ...Option) (*Session, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		doc:        doc,
		answers:    doc.AnswerGroups(),
		rankOf:     make(map[puzzle.TileID]puzzle.Rank, puzzle.NumCards),
		newGroupID: uuid.NewString,
	}
	for _, ag := range s.answers {
		for _, id := range ag.Tiles {
			s.rankOf[id] = ag.Rank
		}
	}
	s.reset()

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// reset restores the initial tile pool and clears all play state.
func (s *Session) reset() {
	s.pool = make(map[puzzle.TileID]puzzle.Tile, puzzle.NumCards)
	for _, t := range s.doc.Tiles() {
		s.pool[t.ID] = t
	}
	s.selection = nil
	s.groups = nil
	s.guesses = nil
	s.fingerprints = make(map[string]bool)
	s.mistakesLeft = MaxMistakes
	s.didFail = false
	s.completed = false
	s.justCompleted = false
	s.resultsSeen = false
	s.submitting = false
	s.pending = nil
}

// Reset returns the session to its initial state for the loaded
// document: full pool, no groups, no guesses, four mistakes.
func (s *Session) Reset() {
	s.reset()
}

// State reports the current state-machine position.
func (s *Session) State() State {
	switch {
	case s.completed && s.didFail:
		return StateFailed
	case s.completed:
		return StateSolved
	case s.submitting:
		return StateSubmitting
	case len(s.selection) == SelectionSize:
		return StateReady
	default:
		return StateSelecting
	}
}

// Document returns the loaded document.
func (s *Session) Document() *puzzle.Document {
	return s.doc
}

// Tiles returns the active pool in grid-position order.
func (s *Session) Tiles() []puzzle.Tile {
	out := make([]puzzle.Tile, 0, len(s.pool))
	for _, t := range s.pool {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Selection returns the current selection in click order.
func (s *Session) Selection() []puzzle.TileID {
	return append([]puzzle.TileID(nil), s.selection...)
}

// Groups returns the formed groups in commit order.
func (s *Session) Groups() []PlayerGroup {
	return append([]PlayerGroup(nil), s.groups...)
}

// MistakesLeft returns the remaining-mistakes counter.
func (s *Session) MistakesLeft() int {
	return s.mistakesLeft
}

// Terminal reports whether the session is solved or failed.
func (s *Session) Terminal() bool {
	return s.completed
}

// JustCompleted reports whether the terminal state was reached in this
// session (as opposed to restored from persisted progress). Presenters
// use it to decide whether the results overlay opens automatically.
func (s *Session) JustCompleted() bool {
	return s.justCompleted
}

// Toggle flips a tile's membership in the current selection.
func (s *Session) Toggle(id puzzle.TileID) error {
	if s.completed {
		return newPlayError(ErrCodeTerminal, "puzzle is finished")
	}
	if s.submitting {
		if s.strictLock {
			return &PlayError{Code: ErrCodeLocked, Message: "input locked during submission", Tile: string(id)}
		}
		for _, p := range s.pending {
			if p == id {
				return &PlayError{Code: ErrCodeLocked, Message: "tile is part of the in-flight guess", Tile: string(id)}
			}
		}
	}
	if _, grouped := s.groupOf(id); grouped {
		return &PlayError{Code: ErrCodeGrouped, Message: "tile already belongs to a group", Tile: string(id)}
	}
	if _, ok := s.pool[id]; !ok {
		return &PlayError{Code: ErrCodeUnknownTile, Message: "tile not in this puzzle", Tile: string(id)}
	}

	for i, sel := range s.selection {
		if sel == id {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return nil
		}
	}
	if len(s.selection) == SelectionSize {
		return &PlayError{Code: ErrCodeSelectionFull, Message: "four tiles already selected", Tile: string(id)}
	}
	s.selection = append(s.selection, id)
	return nil
}

// ClearSelection deselects everything. Rejected mid-submission under
// the strict lock policy.
func (s *Session) ClearSelection() error {
	if s.submitting && s.strictLock {
		return newPlayError(ErrCodeLocked, "input locked during submission")
	}
	kept := s.selection[:0]
	if s.submitting {
		// The in-flight four stay selected under the permissive policy.
		for _, id := range s.selection {
			for _, p := range s.pending {
				if p == id {
					kept = append(kept, id)
					break
				}
			}
		}
	}
	s.selection = append([]puzzle.TileID(nil), kept...)
	return nil
}

// groupOf finds the formed group containing a tile, if any.
func (s *Session) groupOf(id puzzle.TileID) (*PlayerGroup, bool) {
	for i := range s.groups {
		for _, t := range s.groups[i].Tiles {
			if t == id {
				return &s.groups[i], true
			}
		}
	}
	return nil, false
}

// restore applies a persisted record. Any inconsistency (unknown rank,
// unknown tile, duplicated group) discards the whole record.
func (s *Session) restore(rec *progress.Record) {
	if !rec.Valid() {
		return
	}

	restored := *s
	restored.pool = make(map[puzzle.TileID]puzzle.Tile, len(s.pool))
	for k, v := range s.pool {
		restored.pool[k] = v
	}
	restored.groups = nil
	restored.guesses = nil
	restored.fingerprints = make(map[string]bool)

	for _, rg := range rec.Groups {
		rank, err := puzzle.ParseRank(rg.Rank)
		if err != nil {
			return
		}
		g := PlayerGroup{ID: rg.ID, Rank: rank, Title: rg.Title, AutoRevealed: rg.AutoRevealed}
		if g.ID == "" {
			g.ID = s.newGroupID()
		}
		for _, raw := range rg.Tiles {
			id := puzzle.TileID(raw)
			if _, ok := restored.pool[id]; !ok {
				return // unknown or doubly-grouped tile
			}
			delete(restored.pool, id)
			g.Tiles = append(g.Tiles, id)
		}
		restored.groups = append(restored.groups, g)
	}

	for _, guess := range rec.Guesses {
		ranks := make([]puzzle.Rank, 0, SelectionSize)
		for _, raw := range guess {
			rank, err := puzzle.ParseRank(raw)
			if err != nil {
				return
			}
			ranks = append(ranks, rank)
		}
		restored.guesses = append(restored.guesses, ranks)
	}
	for _, fp := range rec.Fingerprints {
		restored.fingerprints[fp] = true
	}

	restored.mistakesLeft = rec.MistakesLeft
	restored.didFail = rec.DidFail
	restored.completed = rec.Completed || len(restored.groups) == puzzle.NumCategories
	restored.justCompleted = false // revisiting does not re-trigger the overlay
	restored.resultsSeen = rec.ResultsSeen

	*s = restored
}

// Snapshot converts the session to its persisted form.
func (s *Session) Snapshot() progress.Record {
	rec := progress.Record{
		Guesses:      make([][]string, 0, len(s.guesses)),
		Fingerprints: make([]string, 0, len(s.fingerprints)),
		MistakesLeft: s.mistakesLeft,
		DidFail:      s.didFail,
		Completed:    s.completed,
		ResultsSeen:  s.resultsSeen,
	}
	for _, g := range s.groups {
		rg := progress.RecordGroup{
			ID:           g.ID,
			Rank:         g.Rank.String(),
			Title:        g.Title,
			AutoRevealed: g.AutoRevealed,
		}
		for _, id := range g.Tiles {
			rg.Tiles = append(rg.Tiles, string(id))
		}
		rec.Groups = append(rec.Groups, rg)
	}
	for _, guess := range s.guesses {
		row := make([]string, 0, len(guess))
		for _, r := range guess {
			row = append(row, r.String())
		}
		rec.Guesses = append(rec.Guesses, row)
	}
	for fp := range s.fingerprints {
		rec.Fingerprints = append(rec.Fingerprints, fp)
	}
	sort.Strings(rec.Fingerprints)
	return rec
}
