package answer

import (
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// GPT4All's desktop app exposes an OpenAI-compatible API server on this
// port when enabled.
const defaultGPT4AllBaseURL = "http://localhost:4891/v1"

// GPT4AllConfig configures the GPT4All backend, reached through its
// OpenAI-compatible local API server.
type GPT4AllConfig struct {
	// BaseURL points at the GPT4All API server. Defaults to
	// http://localhost:4891/v1.
	BaseURL string
	// Model names the model loaded in the server. The server answers with
	// whatever model it has loaded, so this mostly serves logging.
	Model string
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
}

// NewGPT4All builds the gpt4all answer synthesizer. An unreachable server is
// reported through the answer string rather than an error.
func NewGPT4All(cfg *GPT4AllConfig) *Generative {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGPT4AllBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt4all"
	}

	g := &Generative{
		unavailLabel: "GPT4All unavailable",
		failLabel:    "GPT4All call failed",
		logger:       cfg.Logger.With(zap.String("synthesizer", "gpt4all")),
	}

	// The local server ignores authentication, but the client insists on a
	// token.
	model, err := lcopenai.New(
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithToken("none"),
		lcopenai.WithModel(cfg.Model),
	)
	if err != nil {
		g.initErr = err
		return g
	}

	g.backend = &langchainCompleter{model: model, maxTokens: maxAnswerTokens}
	return g
}
