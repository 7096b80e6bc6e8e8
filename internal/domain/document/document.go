// Package document holds the corpus document value object.
package document

import "fmt"

// MaxIDLength bounds the document identifier (typically a file path).
const MaxIDLength = 4096

// Document is one indexed corpus entry (immutable value object).
// Identity is the id; documents are created during index build and
// never mutated afterwards.
type Document struct {
	id   string
	text string
}

// New validates and creates a Document.
// ID: non-empty, max 4096 bytes. Text: non-empty (empty files are dropped
// by the corpus loader before documents are constructed).
func New(id, text string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}
	if text == "" {
		return Document{}, fmt.Errorf("document text is required")
	}
	return Document{id: id, text: text}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, text string) Document {
	return Document{id: id, text: text}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the extracted document text.
func (d *Document) Text() string { return d.text }
