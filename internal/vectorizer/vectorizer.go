// Package vectorizer assembles the text vectorization backend from
// configuration: the in-process tfidf model or a remote embeddings API,
// with optional cross-cutting layers around the remote one.
package vectorizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/transport/openai"
	"github.com/kailas-cloud/docdex/internal/vectorizer/tfidf"
)

// Decorator wraps a vectorizer with a cross-cutting layer such as caching
// or instrumentation.
type Decorator func(domain.Vectorizer) domain.Vectorizer

// Config selects the vectorizer backend and its settings.
type Config struct {
	// Model picks the backend kind, tfidf.Kind or openai.Kind.
	// Empty defaults to tfidf.
	Model string
	// TFIDF configures the in-process backend.
	TFIDF tfidf.Config
	// OpenAI configures the remote backend.
	OpenAI openai.Config
	// RemoteDecorators wrap remote vectorizers, innermost first. The
	// in-process backend runs bare, its Embed is local arithmetic.
	RemoteDecorators []Decorator
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
}

// Factory builds vectorizers for index builds and restores fitted ones
// from persisted index state.
type Factory struct {
	model      string
	tfidfCfg   tfidf.Config
	openaiCfg  openai.Config
	decorators []Decorator
	logger     *zap.Logger
}

// NewFactory creates a vectorizer factory.
func NewFactory(cfg *Config) *Factory {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = tfidf.Kind
	}
	openaiCfg := cfg.OpenAI
	if openaiCfg.Logger == nil {
		openaiCfg.Logger = cfg.Logger
	}
	return &Factory{
		model:      model,
		tfidfCfg:   cfg.TFIDF,
		openaiCfg:  openaiCfg,
		decorators: cfg.RemoteDecorators,
		logger:     cfg.Logger,
	}
}

// New creates an unfitted vectorizer of the configured model for an index
// build.
func (f *Factory) New(_ context.Context) (domain.Vectorizer, error) {
	switch f.model {
	case tfidf.Kind:
		return tfidf.New(f.tfidfCfg), nil
	case openai.Kind:
		return f.decorate(openai.NewVectorizer(&f.openaiCfg)), nil
	default:
		return nil, fmt.Errorf("unknown vectorizer model %q", f.model)
	}
}

// Restore rebuilds a fitted vectorizer from persisted index state. The
// state kind decides the backend regardless of the configured model, so a
// service reconfigured to tfidf can still serve an openai-built index.
func (f *Factory) Restore(st domain.VectorizerState) (domain.Vectorizer, error) {
	switch st.Kind {
	case tfidf.Kind:
		return tfidf.FromState(st)
	case openai.Kind:
		cfg := f.openaiCfg
		cfg.Model = st.Model
		cfg.Dimensions = st.Dimensions
		return f.decorate(openai.NewVectorizer(&cfg)), nil
	default:
		return nil, fmt.Errorf("restore vectorizer: state kind %q has no configured provider", st.Kind)
	}
}

func (f *Factory) decorate(v domain.Vectorizer) domain.Vectorizer {
	for _, d := range f.decorators {
		v = d(v)
	}
	return v
}
