package progress

// Record is the persisted solve progress for one print date. It is the
// wire format of the progress store; the engine converts to and from
// its richer in-memory state.
//
// Records written by older or buggy clients must never break loading:
// Valid() is the gate, and callers discard anything it rejects rather
// than surfacing an error.
type Record struct {
	Groups       []RecordGroup `json:"groups"`
	Guesses      [][]string    `json:"guesses"`
	Fingerprints []string      `json:"fingerprints"`
	MistakesLeft int           `json:"mistakes_left"`
	DidFail      bool          `json:"did_fail"`
	Completed    bool          `json:"completed"`
	ResultsSeen  bool          `json:"results_seen"`
}

// RecordGroup is one formed player group in persisted form.
type RecordGroup struct {
	ID           string   `json:"id"`
	Rank         string   `json:"rank"`
	Title        string   `json:"title"`
	Tiles        []string `json:"tiles"`
	AutoRevealed bool     `json:"auto_revealed,omitempty"`
}

// Valid reports whether the record is structurally usable: every group
// has exactly four tiles, every guess exactly four ranks, and the
// mistakes counter is in range. Malformed records are discarded, not
// repaired.
func (r *Record) Valid() bool {
	if r == nil {
		return false
	}
	if r.MistakesLeft < 0 || r.MistakesLeft > 4 {
		return false
	}
	if len(r.Groups) > 4 {
		return false
	}
	for _, g := range r.Groups {
		if len(g.Tiles) != 4 || g.Rank == "" {
			return false
		}
	}
	for _, guess := range r.Guesses {
		if len(guess) != 4 {
			return false
		}
	}
	return true
}
