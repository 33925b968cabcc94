package puzzle

import (
	"errors"
	"fmt"
)

// ValidationError reports why a payload was refused at load time.
//
// Load-time rejection is deliberate: a document with the wrong shape is
// never partially rendered, it is refused whole so the caller can fall
// back to another source.
type ValidationError struct {
	// Code identifies the validation failure category.
	Code ValidationErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending field or category index, when known.
	Field string
}

// ValidationErrorCode categorizes validation failures.
type ValidationErrorCode string

const (
	// ErrCodeBadJSON indicates the payload is not parseable JSON.
	ErrCodeBadJSON ValidationErrorCode = "BAD_JSON"

	// ErrCodeStatus indicates the payload's status field is not the
	// success sentinel.
	ErrCodeStatus ValidationErrorCode = "STATUS_NOT_OK"

	// ErrCodeCategoryCount indicates other than exactly 4 categories.
	ErrCodeCategoryCount ValidationErrorCode = "CATEGORY_COUNT"

	// ErrCodeCardCount indicates a category with other than 4 cards.
	ErrCodeCardCount ValidationErrorCode = "CARD_COUNT"

	// ErrCodePositions indicates card positions do not form {0..15}.
	ErrCodePositions ValidationErrorCode = "POSITIONS"

	// ErrCodeEmptyCard indicates a card with neither text nor image.
	ErrCodeEmptyCard ValidationErrorCode = "EMPTY_CARD"

	// ErrCodePrintDate indicates a missing or non-ISO print date.
	ErrCodePrintDate ValidationErrorCode = "PRINT_DATE"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func newValidationError(code ValidationErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
