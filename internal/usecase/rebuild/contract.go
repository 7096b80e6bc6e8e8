package rebuild

import (
	"context"

	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
	"github.com/kailas-cloud/docdex/internal/index"
)

// Guard serializes rebuilds and publishes the replacement index.
type Guard interface {
	BeginRebuild() bool
	EndRebuild()
	Swap(idx *domindex.Index)
}

// Builder builds a fresh index from the corpus and persists it at path.
type Builder interface {
	Build(ctx context.Context, source index.CorpusSource, path string) (*domindex.Index, error)
}
