// Package embedding carries the cross-cutting layers around a vectorizer.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// DefaultMaxAPIBatchSize caps how many texts go into one inner Embed call.
const DefaultMaxAPIBatchSize = 256

// InstrumentedVectorizer wraps a Vectorizer with logging and API batch
// splitting. Transport metrics (requests, duration, tokens) are recorded in
// transport/openai.
type InstrumentedVectorizer struct {
	inner  domain.Vectorizer
	logger *zap.Logger
}

// NewInstrumentedVectorizer wraps a vectorizer with observability.
func NewInstrumentedVectorizer(inner domain.Vectorizer, logger *zap.Logger) *InstrumentedVectorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedVectorizer{inner: inner, logger: logger}
}

// ModelName implements domain.Vectorizer.
func (p *InstrumentedVectorizer) ModelName() string { return p.inner.ModelName() }

// Dimensions implements domain.Vectorizer.
func (p *InstrumentedVectorizer) Dimensions() int { return p.inner.Dimensions() }

// State implements domain.Vectorizer.
func (p *InstrumentedVectorizer) State() (domain.VectorizerState, error) {
	return p.inner.State()
}

// Fit delegates to the inner vectorizer and logs the outcome.
func (p *InstrumentedVectorizer) Fit(ctx context.Context, corpus []string) error {
	start := time.Now()

	err := p.inner.Fit(ctx, corpus)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Vectorizer fit failed",
			zap.String("model", p.inner.ModelName()),
			zap.Int("corpus_size", len(corpus)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("fit: %w", err)
	}

	p.logger.Info("Vectorizer fitted",
		zap.String("model", p.inner.ModelName()),
		zap.Int("corpus_size", len(corpus)),
		zap.Int("dimensions", p.inner.Dimensions()),
		zap.Duration("duration", duration),
	)
	return nil
}

// Embed splits texts into API-sized chunks, delegates to the inner
// vectorizer, and logs the outcome.
func (p *InstrumentedVectorizer) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()

	vecs, err := p.embedChunked(ctx, texts)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("model", p.inner.ModelName()),
			zap.Int("batch_size", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding completed",
		zap.String("model", p.inner.ModelName()),
		zap.Int("batch_size", len(texts)),
		zap.Duration("duration", duration),
	)
	return vecs, nil
}

// embedChunked splits texts into chunks of DefaultMaxAPIBatchSize.
func (p *InstrumentedVectorizer) embedChunked(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))

	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		end := offset + DefaultMaxAPIBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := p.inner.Embed(ctx, texts[offset:end])
		if err != nil {
			return nil, fmt.Errorf("chunk at %d: %w", offset, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}
