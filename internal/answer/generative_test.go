package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// chatServer fakes an OpenAI-compatible chat completion endpoint. The last
// decoded request is stored into req when non-nil.
func chatServer(t *testing.T, reply string, req *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if req != nil {
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt("what is docdex", []string{"first context", "second context"})
	want := "Use the following contexts to answer the query:\n\n" +
		"first context\n\n---\n\nsecond context\n\n" +
		"Query: what is docdex\nAnswer:"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOpenAI_Synthesize(t *testing.T) {
	var req chatRequest
	srv := chatServer(t, "  Docdex is a document search service.  ", &req)
	defer srv.Close()

	g := NewOpenAI(&OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	got := g.Synthesize(context.Background(), "what is docdex", []string{"ctx one", "ctx two"}, nil, 10)

	if got != "Docdex is a document search service." {
		t.Errorf("got %q", got)
	}
	if req.Model != DefaultOpenAIModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultOpenAIModel)
	}
	if req.MaxTokens != maxAnswerTokens {
		t.Errorf("max_tokens = %d, want %d", req.MaxTokens, maxAnswerTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "ctx one\n\n---\n\nctx two") {
		t.Errorf("prompt should join contexts with the separator: %q", prompt)
	}
	if !strings.Contains(prompt, "Query: what is docdex\nAnswer:") {
		t.Errorf("prompt should end with the query: %q", prompt)
	}
}

func TestOpenAI_MissingKey(t *testing.T) {
	g := NewOpenAI(&OpenAIConfig{})
	got := g.Complete(context.Background(), "anything")

	if got != "OpenAI call failed: OPENAI_API_KEY not set" {
		t.Errorf("got %q", got)
	}
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewOpenAI(&OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	got := g.Complete(context.Background(), "anything")

	if !strings.HasPrefix(got, "OpenAI call failed: ") {
		t.Errorf("failures must be reported in the answer string, got %q", got)
	}
}

func TestLocal_Unconfigured(t *testing.T) {
	g := NewLocal(&LocalConfig{})
	got := g.Complete(context.Background(), "anything")

	if got != "Local LLM unavailable: no model configured, set answer.local.model" {
		t.Errorf("got %q", got)
	}
}

func TestGPT4All_Synthesize(t *testing.T) {
	srv := chatServer(t, "A local answer.", nil)
	defer srv.Close()

	g := NewGPT4All(&GPT4AllConfig{BaseURL: srv.URL})
	got := g.Complete(context.Background(), "anything")

	if got != "A local answer." {
		t.Errorf("got %q", got)
	}
}

func TestGPT4All_ServerDown(t *testing.T) {
	srv := chatServer(t, "unused", nil)
	srv.Close()

	g := NewGPT4All(&GPT4AllConfig{BaseURL: srv.URL})
	got := g.Complete(context.Background(), "anything")

	if !strings.HasPrefix(got, "GPT4All call failed: ") {
		t.Errorf("got %q", got)
	}
}
