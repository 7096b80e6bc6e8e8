package answer

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultOpenAIModel is the chat model used when none is configured.
const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAIConfig configures the hosted OpenAI chat backend.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for proxies. Optional.
	BaseURL string
	// Model selects the chat model. Defaults to DefaultOpenAIModel.
	Model string
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
}

type chatCompleter struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func (c *chatCompleter) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response contains no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// NewOpenAI builds the openai answer synthesizer. A missing API key is
// reported through the answer string rather than an error so callers can
// still route queries to it.
func NewOpenAI(cfg *OpenAIConfig) *Generative {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	g := &Generative{
		unavailLabel: "OpenAI call failed",
		failLabel:    "OpenAI call failed",
		logger:       cfg.Logger.With(zap.String("synthesizer", "openai")),
	}
	if cfg.APIKey == "" {
		g.initErr = errors.New("OPENAI_API_KEY not set")
		return g
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	g.backend = &chatCompleter{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: maxAnswerTokens,
	}
	return g
}
