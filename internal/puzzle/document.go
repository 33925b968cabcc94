package puzzle

import (
	"encoding/json"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusOK is the success sentinel carried by valid remote payloads.
// Anything else (including a missing status) marks the payload as
// unavailable, even when the HTTP fetch itself succeeded.
const StatusOK = "OK"

const (
	// NumCategories is the number of hidden groups per document.
	NumCategories = 4

	// CardsPerCategory is the number of cards in each group.
	CardsPerCategory = 4

	// NumCards is the total card count of a valid document.
	NumCards = NumCategories * CardsPerCategory
)

// Document is one day's puzzle as fetched from the remote source.
// Immutable after parse.
type Document struct {
	Status     string     `json:"status"`
	ID         int        `json:"id"`
	PrintDate  string     `json:"print_date"`
	Editor     string     `json:"editor,omitempty"`
	Categories []Category `json:"categories"`
}

// Category is one hidden group: a title and its four cards in the
// document's original order.
type Category struct {
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// Card is polymorphic over text and image cards: a text card carries
// Content, an image card carries ImageURL (+ ImageAlt). Position is the
// card's slot in the 4x4 grid, unique across the whole document.
type Card struct {
	Content  string `json:"content,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ImageAlt string `json:"image_alt_text,omitempty"`
	Position int    `json:"position"`
}

// IsImage reports whether the card is an image card.
func (c Card) IsImage() bool {
	return c.Content == "" && c.ImageURL != ""
}

// ParseDocument decodes and validates a raw payload. The returned
// document is guaranteed to satisfy Validate; any violation is reported
// as a *ValidationError and no document is returned.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Code: ErrCodeBadJSON, Message: err.Error()}
	}
	if doc.Status != StatusOK {
		return nil, newValidationError(ErrCodeStatus, "payload status %q is not %q", doc.Status, StatusOK)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural invariants of a document: exactly 4
// categories of exactly 4 cards, every card text or image, positions
// covering {0..15} exactly once, and an ISO print date.
func (d *Document) Validate() error {
	if _, err := time.Parse("2006-01-02", d.PrintDate); err != nil {
		return newValidationError(ErrCodePrintDate, "print_date %q is not an ISO date", d.PrintDate)
	}
	if len(d.Categories) != NumCategories {
		return newValidationError(ErrCodeCategoryCount, "got %d categories, want %d", len(d.Categories), NumCategories)
	}

	seen := make(map[int]bool, NumCards)
	for i, cat := range d.Categories {
		if len(cat.Cards) != CardsPerCategory {
			return &ValidationError{
				Code:    ErrCodeCardCount,
				Message: "category has wrong card count",
				Field:   cat.Title,
			}
		}
		for _, card := range cat.Cards {
			if card.Content == "" && card.ImageURL == "" {
				return &ValidationError{
					Code:    ErrCodeEmptyCard,
					Message: "card has neither content nor image",
					Field:   cat.Title,
				}
			}
			if card.Position < 0 || card.Position >= NumCards || seen[card.Position] {
				return newValidationError(ErrCodePositions,
					"category %d: position %d out of range or repeated", i, card.Position)
			}
			seen[card.Position] = true
		}
	}
	// len(seen) == NumCards is implied: 16 cards, each marking a
	// distinct in-range position.
	return nil
}

// Tiles returns the sixteen display tiles in grid-position order.
// Text is uppercased the way the original rendering does.
func (d *Document) Tiles() []Tile {
	upper := cases.Upper(language.English)

	tiles := make([]Tile, 0, NumCards)
	for _, cat := range d.Categories {
		for _, card := range cat.Cards {
			t := Tile{
				ID:       NewTileID(d.ID, card.Position),
				Position: card.Position,
			}
			if card.IsImage() {
				t.ImageURL = card.ImageURL
				t.ImageAlt = card.ImageAlt
			} else {
				t.Display = upper.String(card.Content)
			}
			tiles = append(tiles, t)
		}
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Position < tiles[j].Position })
	return tiles
}

// AnswerGroup is a canonical answer: the four tile identities of one
// category, in the document's original card order (not grid order).
type AnswerGroup struct {
	Rank  Rank                     `json:"rank"`
	Title string                   `json:"title"`
	Tiles [CardsPerCategory]TileID `json:"tiles"`
}

// AnswerGroups returns the four canonical answers, category index i
// mapped to Rank(i).
func (d *Document) AnswerGroups() [NumCategories]AnswerGroup {
	var groups [NumCategories]AnswerGroup
	for i, cat := range d.Categories {
		g := AnswerGroup{Rank: Rank(i), Title: cat.Title}
		for j, card := range cat.Cards {
			g.Tiles[j] = NewTileID(d.ID, card.Position)
		}
		groups[i] = g
	}
	return groups
}

// TileByID looks up one tile by identity.
func (d *Document) TileByID(id TileID) (Tile, bool) {
	for _, t := range d.Tiles() {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}
