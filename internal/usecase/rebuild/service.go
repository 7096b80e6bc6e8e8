// Package rebuild replaces the live index with one freshly built from the
// corpus directory.
package rebuild

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/index"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// Service rebuilds the index on demand.
type Service struct {
	guard   Guard
	builder Builder
	source  index.CorpusSource
	path    string
}

// New creates a rebuild service. The corpus source and index path are fixed
// at startup; every rebuild reads the same directory and persists to the
// same file.
func New(guard Guard, builder Builder, source index.CorpusSource, path string) *Service {
	return &Service{guard: guard, builder: builder, source: source, path: path}
}

// Response reports a completed rebuild.
type Response struct {
	NumDocuments int
	IndexPath    string
}

// Rebuild builds a new index from the corpus, persists it, and swaps it
// live. Only one rebuild runs at a time; a concurrent call fails with
// ErrRebuildInProgress. A failed build leaves the live index untouched.
func (s *Service) Rebuild(ctx context.Context) (*Response, error) {
	if !s.guard.BeginRebuild() {
		metrics.IndexRebuildsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrRebuildInProgress
	}
	defer s.guard.EndRebuild()

	start := time.Now()

	idx, err := s.builder.Build(ctx, s.source, s.path)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	s.guard.Swap(idx)

	metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexDocuments.Set(float64(idx.Len()))

	return &Response{NumDocuments: idx.Len(), IndexPath: s.path}, nil
}
