package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// maxAnswerTokens caps the completion length requested from generative
// backends.
const maxAnswerTokens = 256

// completer abstracts a single-prompt model call so the chat and langchaingo
// backends share the same failure handling.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// langchainCompleter drives any langchaingo model (ollama, openai-compatible
// local servers).
type langchainCompleter struct {
	model     llms.Model
	maxTokens int
}

func (c *langchainCompleter) complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithMaxTokens(c.maxTokens))
}

// Generative synthesizes answers by prompting a language model with the
// retrieved contexts. Backend failures never surface as errors; they become
// human-readable answer strings so a broken model endpoint degrades the
// answer, not the whole query.
type Generative struct {
	backend      completer
	initErr      error
	unavailLabel string
	failLabel    string
	logger       *zap.Logger
}

// Synthesize builds the completion prompt from the retrieved contexts and
// asks the backend for an answer.
func (g *Generative) Synthesize(ctx context.Context, query string, contexts, _ []string, _ int) string {
	return g.Complete(ctx, buildPrompt(query, contexts))
}

// Complete sends a raw prompt to the backend and returns the model's answer,
// or a failure message when the backend is misconfigured or the call fails.
func (g *Generative) Complete(ctx context.Context, prompt string) string {
	if g.initErr != nil {
		g.logger.Warn("generative backend unavailable", zap.Error(g.initErr))
		return fmt.Sprintf("%s: %v", g.unavailLabel, g.initErr)
	}

	completion, err := g.backend.complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("generative completion failed", zap.Error(err))
		return fmt.Sprintf("%s: %v", g.failLabel, err)
	}

	return strings.TrimSpace(completion)
}
