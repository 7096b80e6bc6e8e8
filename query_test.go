package docdex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCorpus(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestClient(t *testing.T, files map[string]string) (*Client, string) {
	t.Helper()
	dir := t.TempDir()
	writeCorpus(t, dir, files)

	c, err := New(WithDataDir(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(c.Close)
	return c, dir
}

func TestClient_QueryWithoutIndex(t *testing.T) {
	c, _ := newTestClient(t, nil)

	_, err := c.Query(context.Background(), "anything")
	if !errors.Is(err, ErrIndexNotLoaded) {
		t.Fatalf("expected ErrIndexNotLoaded, got %v", err)
	}
}

func TestClient_RebuildAndQuery(t *testing.T) {
	c, dir := newTestClient(t, map[string]string{
		"alpha.txt": "alpha beta",
		"other.txt": "no match here",
	})
	ctx := context.Background()

	built, err := c.RebuildIndex(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if built.NumDocuments != 2 {
		t.Errorf("NumDocuments = %d, want 2", built.NumDocuments)
	}
	if want := filepath.Join(dir, "index.bin"); built.IndexPath != want {
		t.Errorf("IndexPath = %q, want %q", built.IndexPath, want)
	}

	res, err := c.Query(ctx, "beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Query != "beta" {
		t.Errorf("Query = %q, want beta", res.Query)
	}
	if len(res.AllResults) != 2 {
		t.Fatalf("AllResults = %d, want 2", len(res.AllResults))
	}
	if res.AllResults[0].ID != "alpha.txt" {
		t.Errorf("top result = %q, want alpha.txt", res.AllResults[0].ID)
	}
	if res.AllResults[0].Score <= res.AllResults[1].Score {
		t.Errorf("scores not descending: %v then %v", res.AllResults[0].Score, res.AllResults[1].Score)
	}
	if !strings.Contains(res.Answer, "<mark>beta</mark>") {
		t.Errorf("answer missing highlight: %q", res.Answer)
	}
	if !strings.Contains(res.Answer, "1 total matches") {
		t.Errorf("answer missing match count: %q", res.Answer)
	}

	p := res.Pagination
	if p.CurrentPage != 1 || p.PerPage != 10 || p.TotalResults != 2 || p.TotalPages != 1 {
		t.Errorf("pagination = %+v", p)
	}
}

func TestClient_QueryNoMatches(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"alpha.txt": "alpha beta",
		"gamma.txt": "gamma delta",
	})
	ctx := context.Background()

	if _, err := c.RebuildIndex(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := c.Query(ctx, "zzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "No matches found for 'zzz'."; res.Answer != want {
		t.Errorf("Answer = %q, want %q", res.Answer, want)
	}
}

func TestClient_Pagination(t *testing.T) {
	words := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	files := map[string]string{}
	for i, w := range words {
		files[fmt.Sprintf("doc-%d.txt", i)] = "shared topic about " + w
	}
	c, _ := newTestClient(t, files)
	ctx := context.Background()

	if _, err := c.RebuildIndex(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := c.Query(ctx, "shared", QueryOptions{PerPage: 2, Page: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.AllResults) != 5 {
		t.Fatalf("AllResults = %d, want 5", len(res.AllResults))
	}
	if len(res.Results) != 1 {
		t.Errorf("Results = %d, want 1 (last page)", len(res.Results))
	}
	p := res.Pagination
	if p.CurrentPage != 3 || p.PerPage != 2 || p.TotalResults != 5 || p.TotalPages != 3 {
		t.Errorf("pagination = %+v", p)
	}

	// A page past the end clamps to the last page.
	res, err = c.Query(ctx, "shared", QueryOptions{PerPage: 2, Page: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pagination.CurrentPage != 3 {
		t.Errorf("CurrentPage = %d, want 3", res.Pagination.CurrentPage)
	}
}

func TestClient_PersistedIndexReload(t *testing.T) {
	c, dir := newTestClient(t, map[string]string{
		"alpha.txt": "alpha beta",
		"gamma.txt": "gamma delta",
	})
	ctx := context.Background()

	if _, err := c.RebuildIndex(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Close()

	// A fresh client over the same directory picks up the persisted index.
	c2, err := New(WithDataDir(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c2.Close()

	h := c2.Health(ctx)
	if !h.IndexLoaded {
		t.Fatal("expected index loaded from disk")
	}
	if h.NumDocuments != 2 {
		t.Errorf("NumDocuments = %d, want 2", h.NumDocuments)
	}

	res, err := c2.Query(ctx, "delta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AllResults[0].ID != "gamma.txt" {
		t.Errorf("top result = %q, want gamma.txt", res.AllResults[0].ID)
	}
}

func TestClient_EmptyCorpusRebuild(t *testing.T) {
	c, _ := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.RebuildIndex(ctx)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}

	h := c.Health(ctx)
	if h.IndexLoaded {
		t.Error("failed rebuild must not install an index")
	}
	if h.Rebuilding {
		t.Error("rebuild guard must be released after failure")
	}
}

func TestClient_QueryValidation(t *testing.T) {
	c, _ := newTestClient(t, nil)
	ctx := context.Background()

	if _, err := c.Query(ctx, "   "); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}

	if _, err := c.Query(ctx, "fine", QueryOptions{Provider: "bard"}); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}

func TestClient_IndexPathOverride(t *testing.T) {
	built, dirA := newTestClient(t, map[string]string{
		"alpha.txt": "alpha beta",
		"gamma.txt": "gamma delta",
	})
	ctx := context.Background()
	if _, err := built.RebuildIndex(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A client with no index of its own can still query the persisted one.
	other, _ := newTestClient(t, nil)
	res, err := other.Query(ctx, "beta", QueryOptions{
		IndexPath: filepath.Join(dirA, "index.bin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.AllResults) != 2 || res.AllResults[0].ID != "alpha.txt" {
		t.Errorf("override results = %+v", res.AllResults)
	}

	// The override path must exist.
	if _, err := other.Query(ctx, "beta", QueryOptions{
		IndexPath: filepath.Join(dirA, "missing.bin"),
	}); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}
