package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response body is read.
const maxErrorBody = 64 << 10

// Client is the docdex HTTP API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	obs        *observer
}

// New creates a client for the docdex server at baseURL,
// e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if baseURL == "" {
		return nil, errors.New("docdex: server base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("docdex: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("docdex: base URL scheme must be http or https, got %q", u.Scheme)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		userAgent:  cfg.userAgent,
		obs:        obs,
	}, nil
}

// Query runs a search and answer request against the server index.
func (c *Client) Query(ctx context.Context, req QueryRequest) (res *QueryResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	var out QueryResponse
	if err = c.do(ctx, http.MethodPost, "/query", req, &out); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &out, nil
}

// RebuildIndex asks the server to rebuild its index from the corpus.
// A rebuild that is already running surfaces as ErrRebuildInProgress.
func (c *Client) RebuildIndex(ctx context.Context) (res *RebuildResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild_index", start, err) }()

	var out RebuildResponse
	if err = c.do(ctx, http.MethodPost, "/rebuild-index", nil, &out); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	return &out, nil
}

// Health reports the server state.
func (c *Client) Health(ctx context.Context) (res *HealthResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	var out HealthResponse
	if err = c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &out, nil
}

// do runs one JSON round-trip against the server.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into an *APIError. Bodies that
// are not a docdex error envelope keep the raw text as the message.
func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Error.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
