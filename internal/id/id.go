// Package id generates prefixed, URL-safe identifiers for import batches.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ImportPrefix tags checklist import batch IDs.
const ImportPrefix = "imp"

// Generate returns prefix + "-" + a 21 character NanoID,
// e.g. "imp-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system entropy source does.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewImportID returns a fresh import batch ID.
func NewImportID() (string, error) {
	return Generate(ImportPrefix)
}
