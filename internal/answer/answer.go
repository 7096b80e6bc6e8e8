// Package answer turns retrieved document contexts into an answer string.
//
// The simple synthesizer is a deterministic exact-text search over the
// retrieved contexts, rendering highlighted HTML result items. The
// generative synthesizers prompt a language model (OpenAI, a local Ollama
// server, or GPT4All) with the contexts instead.
package answer

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain/provider"
)

// Synthesizer produces the answer text for a query from the retrieved
// contexts. topK is the page size the caller will display, some
// synthesizers mention it in their output.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, contexts, docIDs []string, topK int) string
}

// FactoryConfig wires the backends available to a Factory. Nil backends
// resolve to the simple synthesizer.
type FactoryConfig struct {
	Simple  *Simple
	OpenAI  *Generative
	Local   *Generative
	GPT4All *Generative
	Logger  *zap.Logger
}

// Factory resolves a provider tag to its synthesizer. The simple
// synthesizer doubles as the fallback when a generative backend is not
// configured.
type Factory struct {
	simple  *Simple
	openai  *Generative
	local   *Generative
	gpt4all *Generative
	logger  *zap.Logger
}

// NewFactory builds a Factory. cfg.Simple is required, the generative
// backends are optional.
func NewFactory(cfg *FactoryConfig) *Factory {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Simple == nil {
		cfg.Simple = NewSimple()
	}
	return &Factory{
		simple:  cfg.Simple,
		openai:  cfg.OpenAI,
		local:   cfg.Local,
		gpt4all: cfg.GPT4All,
		logger:  cfg.Logger,
	}
}

// Resolve returns the synthesizer for the provider. openai without a
// configured backend falls back to simple, matching the behavior of
// running without an API key.
func (f *Factory) Resolve(p provider.Provider) Synthesizer {
	switch p {
	case provider.GPT4All:
		if f.gpt4all != nil {
			return f.gpt4all
		}
	case provider.Local:
		if f.local != nil {
			return f.local
		}
	case provider.OpenAI:
		if f.openai != nil {
			return f.openai
		}
		f.logger.Warn("openai provider requested but not configured, using simple synthesizer")
	}
	return f.simple
}
