package index

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
)

// CorpusSource supplies the document records an index is built from.
type CorpusSource interface {
	Load(ctx context.Context) ([]document.Document, error)
}

// VectorizerFactory creates fresh vectorizers for builds and restores
// fitted ones from persisted state on load.
type VectorizerFactory interface {
	New(ctx context.Context) (domain.Vectorizer, error)
	Restore(state domain.VectorizerState) (domain.Vectorizer, error)
}
