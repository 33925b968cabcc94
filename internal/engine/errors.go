package engine

import (
	"errors"
	"fmt"
)

// PlayError represents a rejected play operation.
//
// Rejections are ordinary outcomes of the state machine (a fifth tile,
// a toggle on a grouped tile, a submit while one is in flight); the
// code tells presenters which informational signal to surface.
type PlayError struct {
	// Code identifies the rejection category.
	Code PlayErrorCode

	// Message is a human-readable description.
	Message string

	// Tile identifies the offending tile, when relevant.
	Tile string
}

// PlayErrorCode categorizes play rejections.
type PlayErrorCode string

const (
	// ErrCodeUnknownTile indicates a tile id not in the loaded document.
	ErrCodeUnknownTile PlayErrorCode = "UNKNOWN_TILE"

	// ErrCodeGrouped indicates a tile already committed to a group.
	ErrCodeGrouped PlayErrorCode = "TILE_GROUPED"

	// ErrCodeSelectionFull indicates a fifth tile was selected.
	ErrCodeSelectionFull PlayErrorCode = "SELECTION_FULL"

	// ErrCodeLocked indicates input rejected by the in-flight lock policy.
	ErrCodeLocked PlayErrorCode = "INPUT_LOCKED"

	// ErrCodeBusy indicates a submission attempted while one is in flight.
	ErrCodeBusy PlayErrorCode = "SUBMISSION_IN_FLIGHT"

	// ErrCodeNotSubmitting indicates ResolveSubmit without BeginSubmit.
	ErrCodeNotSubmitting PlayErrorCode = "NOT_SUBMITTING"

	// ErrCodeTerminal indicates play input after solved/failed.
	ErrCodeTerminal PlayErrorCode = "SESSION_TERMINAL"
)

// Error implements the error interface.
func (e *PlayError) Error() string {
	if e.Tile != "" {
		return fmt.Sprintf("%s: %s (tile=%s)", e.Code, e.Message, e.Tile)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a PlayError carrying the given code.
func IsCode(err error, code PlayErrorCode) bool {
	var pe *PlayError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func newPlayError(code PlayErrorCode, format string, args ...any) *PlayError {
	return &PlayError{Code: code, Message: fmt.Sprintf(format, args...)}
}
