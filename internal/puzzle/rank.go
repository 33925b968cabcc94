package puzzle

import "fmt"

// Rank is a category difficulty tier. Category index i in a document
// maps directly to Rank(i): index 0 is the easiest group, index 3 the
// hardest. Each rank has a fixed display color and emoji used in
// sharable results.
type Rank int

const (
	RankYellow Rank = iota // easiest
	RankGreen
	RankBlue
	RankPurple // hardest

	// NumRanks is the number of answer groups in every document.
	NumRanks = 4
)

// String returns the rank's color name.
func (r Rank) String() string {
	switch r {
	case RankYellow:
		return "yellow"
	case RankGreen:
		return "green"
	case RankBlue:
		return "blue"
	case RankPurple:
		return "purple"
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

// Emoji returns the colored square used in sharable result grids.
func (r Rank) Emoji() string {
	switch r {
	case RankYellow:
		return "\U0001F7E8"
	case RankGreen:
		return "\U0001F7E9"
	case RankBlue:
		return "\U0001F7E6"
	case RankPurple:
		return "\U0001F7EA"
	}
	return "⬜"
}

// Valid reports whether r is one of the four defined ranks.
func (r Rank) Valid() bool {
	return r >= RankYellow && r <= RankPurple
}

// ParseRank converts a color name back to a Rank. Used when restoring
// persisted progress records.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "yellow":
		return RankYellow, nil
	case "green":
		return RankGreen, nil
	case "blue":
		return RankBlue, nil
	case "purple":
		return RankPurple, nil
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}
