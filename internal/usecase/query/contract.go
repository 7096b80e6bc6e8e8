package query

import (
	"context"

	"github.com/kailas-cloud/docdex/internal/answer"
	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
	"github.com/kailas-cloud/docdex/internal/domain/provider"
)

// IndexSource supplies the live in-memory index.
type IndexSource interface {
	Current() *domindex.Index
}

// IndexLoader loads a persisted index from an explicit path override.
type IndexLoader interface {
	Load(ctx context.Context, path string) (*domindex.Index, error)
}

// SynthesizerResolver picks the answer synthesizer registered for a provider.
type SynthesizerResolver interface {
	Resolve(p provider.Provider) answer.Synthesizer
}
