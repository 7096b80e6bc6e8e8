package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

// Kind identifies this vectorizer in persisted state.
const Kind = "openai"

// Vectorizer embeds texts through an OpenAI-compatible embeddings API.
// Fit is a no-op: the remote model is pre-trained, and reproducibility on
// index reload is delegated to the provider pinning the model.
type Vectorizer struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Logger     *zap.Logger
}

// NewVectorizer creates an OpenAI-compatible embedding vectorizer.
func NewVectorizer(cfg *Config) *Vectorizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Vectorizer{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		logger:     cfg.Logger,
	}
}

// ModelName returns the remote model identifier.
func (v *Vectorizer) ModelName() string { return string(v.model) }

// Dimensions returns the configured vector width, zero for the model default.
func (v *Vectorizer) Dimensions() int { return v.dimensions }

// Fit implements domain.Vectorizer. The remote model needs no fitting; the
// call only probes the API with one corpus text to pin the vector width.
func (v *Vectorizer) Fit(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("fit openai vectorizer: %w", domain.ErrEmptyCorpus)
	}
	if v.dimensions > 0 {
		return nil
	}
	vecs, err := v.Embed(ctx, corpus[:1])
	if err != nil {
		return fmt.Errorf("probe embedding dimensions: %w", err)
	}
	v.dimensions = len(vecs[0])
	return nil
}

// Embed implements domain.Vectorizer with transport-level metrics.
func (v *Vectorizer) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          v.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           v.user,
	}
	if v.dimensions > 0 {
		req.Dimensions = v.dimensions
	}

	start := time.Now()

	resp, err := v.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(v.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(v.model), "api_error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Data) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(v.model), "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(string(v.model), "short_response").Inc()
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrVectorizerProvider)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(v.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(v.model)).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(v.model), "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(string(v.model), "total").Add(float64(resp.Usage.TotalTokens))
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, x := range d.Embedding {
			vec[j] = float64(x)
		}
		out[d.Index] = vec
	}
	return out, nil
}

// State exports the model identity so a persisted index records which
// remote model produced its vectors.
func (v *Vectorizer) State() (domain.VectorizerState, error) {
	return domain.VectorizerState{
		Kind:       Kind,
		Model:      string(v.model),
		Dimensions: v.dimensions,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (v *Vectorizer) HealthCheck(ctx context.Context) error {
	if _, err := v.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrVectorizerProvider for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrVectorizerProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
