package puzzle

import "fmt"

// TileID identifies one tile of one document: "{documentID}_{position}".
//
// The position component is zero-padded to two digits so that
// lexicographic ordering of IDs within a document equals numeric
// position ordering. Guess fingerprints sort IDs as strings and rely on
// this; revisit the padding before ever changing the ID format.
type TileID string

// NewTileID builds the stable identity for a card of a document.
func NewTileID(documentID, position int) TileID {
	return TileID(fmt.Sprintf("%d_%02d", documentID, position))
}

// Tile is the ephemeral display view of one card. Tiles are derived
// from a Document and carry no state of their own; selection and group
// membership live in the solve session.
type Tile struct {
	ID       TileID `json:"id"`
	Position int    `json:"position"`

	// Display is the uppercased card text; empty for image cards.
	Display string `json:"display,omitempty"`

	// ImageURL and ImageAlt are set for image cards.
	ImageURL string `json:"image_url,omitempty"`
	ImageAlt string `json:"image_alt,omitempty"`
}

// IsImage reports whether the tile renders an image rather than text.
func (t Tile) IsImage() bool {
	return t.ImageURL != ""
}
