package puzzle

import (
	_ "embed"
	"fmt"
)

//go:embed placeholder.json
var placeholderJSON []byte

// Placeholder returns the built-in fallback document used when every
// cached source fails to load. The embedded payload is validated on
// first use; a bad embed is a programmer error, hence the panic.
func Placeholder() *Document {
	doc, err := ParseDocument(placeholderJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded placeholder document invalid: %v", err))
	}
	return doc
}
