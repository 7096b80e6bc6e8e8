// Package index holds the persisted index aggregate.
package index

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
)

// Index is the persisted unit of state (immutable value object):
// document records, their vectors in matching positions, the fitted
// vectorizer and its serializable state. A rebuild produces a new Index
// that replaces the old one wholesale; no in-place mutation.
type Index struct {
	docs       []document.Document
	vectors    [][]float64
	vectorizer domain.Vectorizer
	state      domain.VectorizerState
	modelName  string
}

// New validates and creates an Index.
// Docs must be non-empty, vectors must align one-to-one with docs, and the
// fitted vectorizer must be present.
func New(
	docs []document.Document, vectors [][]float64,
	vectorizer domain.Vectorizer, state domain.VectorizerState, modelName string,
) (*Index, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("index requires at least one document: %w", domain.ErrEmptyCorpus)
	}
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("docs/vectors length mismatch: %d != %d", len(docs), len(vectors))
	}
	if vectorizer == nil {
		return nil, fmt.Errorf("fitted vectorizer is required")
	}
	return &Index{
		docs:       docs,
		vectors:    vectors,
		vectorizer: vectorizer,
		state:      state,
		modelName:  modelName,
	}, nil
}

// Reconstruct creates an Index without validation (storage hydration).
func Reconstruct(
	docs []document.Document, vectors [][]float64,
	vectorizer domain.Vectorizer, state domain.VectorizerState, modelName string,
) *Index {
	return &Index{
		docs:       docs,
		vectors:    vectors,
		vectorizer: vectorizer,
		state:      state,
		modelName:  modelName,
	}
}

// Docs returns the ordered document records. Callers must not mutate.
func (i *Index) Docs() []document.Document { return i.docs }

// Doc returns the document at position pos.
func (i *Index) Doc(pos int) document.Document { return i.docs[pos] }

// Vectors returns the ordered document vectors. Callers must not mutate.
func (i *Index) Vectors() [][]float64 { return i.vectors }

// Vectorizer returns the fitted vectorizer.
func (i *Index) Vectorizer() domain.Vectorizer { return i.vectorizer }

// State returns the serializable vectorizer state.
func (i *Index) State() domain.VectorizerState { return i.state }

// ModelName returns the embedding model identifier ("tfidf", "openai").
func (i *Index) ModelName() string { return i.modelName }

// Len returns the number of indexed documents.
func (i *Index) Len() int { return len(i.docs) }
