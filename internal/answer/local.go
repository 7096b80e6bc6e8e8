package answer

import (
	"errors"

	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// LocalConfig configures the local inference backend, served by Ollama.
type LocalConfig struct {
	// ServerURL points at the Ollama server. Defaults to the client's
	// built-in http://localhost:11434 when empty.
	ServerURL string
	// Model names the model to run, e.g. "llama3". Required.
	Model string
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
}

// NewLocal builds the local answer synthesizer. An unconfigured or
// unreachable backend is reported through the answer string rather than an
// error.
func NewLocal(cfg *LocalConfig) *Generative {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	g := &Generative{
		unavailLabel: "Local LLM unavailable",
		failLabel:    "Local LLM call failed",
		logger:       cfg.Logger.With(zap.String("synthesizer", "local")),
	}
	if cfg.Model == "" {
		g.initErr = errors.New("no model configured, set answer.local.model")
		return g
	}

	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		g.initErr = err
		return g
	}

	g.backend = &langchainCompleter{model: model, maxTokens: maxAnswerTokens}
	return g
}
