package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/docdex/internal/answer"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
	"github.com/kailas-cloud/docdex/internal/domain/provider"
	domquery "github.com/kailas-cloud/docdex/internal/domain/query"
)

// --- Mocks ---

type mockVectorizer struct {
	queryVec []float64
	embedErr error
}

func (m *mockVectorizer) ModelName() string { return "mock" }
func (m *mockVectorizer) Dimensions() int   { return len(m.queryVec) }

func (m *mockVectorizer) Fit(_ context.Context, _ []string) error { return nil }

func (m *mockVectorizer) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = m.queryVec
	}
	return out, nil
}

func (m *mockVectorizer) State() (domain.VectorizerState, error) {
	return domain.VectorizerState{Kind: "mock"}, nil
}

type mockSource struct {
	idx   *domindex.Index
	calls int
}

func (m *mockSource) Current() *domindex.Index {
	m.calls++
	return m.idx
}

type mockLoader struct {
	idx      *domindex.Index
	err      error
	lastPath string
	called   bool
}

func (m *mockLoader) Load(_ context.Context, path string) (*domindex.Index, error) {
	m.called = true
	m.lastPath = path
	return m.idx, m.err
}

type mockSynthesizer struct {
	answer       string
	called       bool
	lastQuery    string
	lastContexts []string
	lastDocIDs   []string
	lastTopK     int
}

func (m *mockSynthesizer) Synthesize(
	_ context.Context, query string, contexts, docIDs []string, topK int,
) string {
	m.called = true
	m.lastQuery = query
	m.lastContexts = contexts
	m.lastDocIDs = docIDs
	m.lastTopK = topK
	return m.answer
}

type mockResolver struct {
	synth        answer.Synthesizer
	lastProvider provider.Provider
}

func (m *mockResolver) Resolve(p provider.Provider) answer.Synthesizer {
	m.lastProvider = p
	return m.synth
}

// testIndex builds an index of n documents whose vectors rank in position
// order against the query vector {1, 0}: cosine with {1, i} decreases as
// i grows.
func testIndex(t *testing.T, n int) *domindex.Index {
	t.Helper()

	docs := make([]document.Document, n)
	vectors := make([][]float64, n)
	for i := 0; i < n; i++ {
		docs[i] = document.Reconstruct(fmt.Sprintf("doc-%d.txt", i), fmt.Sprintf("text %d", i))
		vectors[i] = []float64{1, float64(i)}
	}

	vec := &mockVectorizer{queryVec: []float64{1, 0}}
	idx, err := domindex.New(docs, vectors, vec, domain.VectorizerState{Kind: "mock"}, "mock")
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	return idx
}

func makeRequest(t *testing.T, question string, perPage, page int, prov, indexPath string) *domquery.Request {
	t.Helper()
	r, err := domquery.New(question, perPage, page, prov, indexPath)
	if err != nil {
		t.Fatalf("query request: %v", err)
	}
	return &r
}

func newTestService(idx *domindex.Index, synth *mockSynthesizer) (*Service, *mockResolver) {
	resolver := &mockResolver{synth: synth}
	return New(&mockSource{idx: idx}, &mockLoader{}, resolver), resolver
}

// --- Tests ---

func TestQuery_SimpleProviderRetrievesAllDocuments(t *testing.T) {
	synth := &mockSynthesizer{answer: "the answer"}
	svc, resolver := newTestService(testIndex(t, 7), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 2, 1, "simple", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(resp.AllResults) != 7 {
		t.Errorf("AllResults length = %d, want all 7 documents", len(resp.AllResults))
	}
	if len(resp.Results) != 2 {
		t.Errorf("Results length = %d, want page of 2", len(resp.Results))
	}
	if resp.Answer != "the answer" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resolver.lastProvider != provider.Simple {
		t.Errorf("resolved provider = %q", resolver.lastProvider)
	}
}

func TestQuery_RanksByDescendingSimilarity(t *testing.T) {
	synth := &mockSynthesizer{}
	svc, _ := newTestService(testIndex(t, 4), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 10, 1, "simple", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	for i, r := range resp.AllResults {
		want := fmt.Sprintf("doc-%d.txt", i)
		if r.DocID() != want {
			t.Errorf("AllResults[%d] = %q, want %q", i, r.DocID(), want)
		}
	}
	for i := 1; i < len(resp.AllResults); i++ {
		if resp.AllResults[i].Score() > resp.AllResults[i-1].Score() {
			t.Errorf("scores not descending at %d: %f > %f",
				i, resp.AllResults[i].Score(), resp.AllResults[i-1].Score())
		}
	}
}

func TestQuery_GenerativeProviderOverfetches(t *testing.T) {
	synth := &mockSynthesizer{answer: "generated"}
	svc, resolver := newTestService(testIndex(t, 20), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 2, 1, "local", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(resp.AllResults) != 6 {
		t.Errorf("AllResults length = %d, want per_page*3 = 6", len(resp.AllResults))
	}
	if resolver.lastProvider != provider.Local {
		t.Errorf("resolved provider = %q", resolver.lastProvider)
	}
}

func TestQuery_OverfetchClampedToCorpusSize(t *testing.T) {
	synth := &mockSynthesizer{}
	svc, _ := newTestService(testIndex(t, 4), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 10, 1, "gpt4all", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(resp.AllResults) != 4 {
		t.Errorf("AllResults length = %d, want full corpus of 4", len(resp.AllResults))
	}
}

func TestQuery_AnswerSynthesizedOverAllRetrieved(t *testing.T) {
	synth := &mockSynthesizer{answer: "synthesized"}
	svc, _ := newTestService(testIndex(t, 5), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "  the question  ", 2, 1, "simple", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if !synth.called {
		t.Fatal("synthesizer not called")
	}
	if synth.lastQuery != "the question" {
		t.Errorf("synthesizer query = %q, want trimmed question", synth.lastQuery)
	}
	if len(synth.lastContexts) != 5 || len(synth.lastDocIDs) != 5 {
		t.Fatalf("synthesizer saw %d contexts / %d doc ids, want all 5 retrieved",
			len(synth.lastContexts), len(synth.lastDocIDs))
	}
	for i := range synth.lastDocIDs {
		if want := fmt.Sprintf("doc-%d.txt", i); synth.lastDocIDs[i] != want {
			t.Errorf("docIDs[%d] = %q, want %q", i, synth.lastDocIDs[i], want)
		}
		if want := fmt.Sprintf("text %d", i); synth.lastContexts[i] != want {
			t.Errorf("contexts[%d] = %q, want %q", i, synth.lastContexts[i], want)
		}
	}
	if synth.lastTopK != 2 {
		t.Errorf("synthesizer topK = %d, want per_page", synth.lastTopK)
	}
	if resp.Query != "the question" {
		t.Errorf("Response.Query = %q", resp.Query)
	}
}

func TestQuery_PageWindow(t *testing.T) {
	synth := &mockSynthesizer{}
	svc, _ := newTestService(testIndex(t, 5), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 2, 3, "simple", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("Results length = %d, want final window of 1", len(resp.Results))
	}
	if resp.Results[0].DocID() != "doc-4.txt" {
		t.Errorf("Results[0] = %q, want doc-4.txt", resp.Results[0].DocID())
	}
	if resp.Pagination.CurrentPage() != 3 {
		t.Errorf("CurrentPage = %d, want 3", resp.Pagination.CurrentPage())
	}
	if resp.Pagination.TotalPages() != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.Pagination.TotalPages())
	}
	if resp.Pagination.TotalResults() != 5 {
		t.Errorf("TotalResults = %d, want 5", resp.Pagination.TotalResults())
	}
}

func TestQuery_PageBeyondEndClampsToLast(t *testing.T) {
	synth := &mockSynthesizer{}
	svc, _ := newTestService(testIndex(t, 5), synth)

	resp, err := svc.Query(context.Background(), makeRequest(t, "question", 2, 9, "simple", ""))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if resp.Pagination.CurrentPage() != 3 {
		t.Errorf("CurrentPage = %d, want clamp to last page 3", resp.Pagination.CurrentPage())
	}
	if len(resp.Results) != 1 || resp.Results[0].DocID() != "doc-4.txt" {
		t.Errorf("Results = %v, want the last window", resp.Results)
	}
}

func TestQuery_IndexPathOverrideLoadsFresh(t *testing.T) {
	synth := &mockSynthesizer{}
	source := &mockSource{idx: testIndex(t, 3)}
	loader := &mockLoader{idx: testIndex(t, 2)}
	svc := New(source, loader, &mockResolver{synth: synth})

	resp, err := svc.Query(context.Background(),
		makeRequest(t, "question", 10, 1, "simple", "/data/other_index.json"))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if !loader.called {
		t.Fatal("loader not called for index_path override")
	}
	if loader.lastPath != "/data/other_index.json" {
		t.Errorf("loaded path = %q", loader.lastPath)
	}
	if len(resp.AllResults) != 2 {
		t.Errorf("AllResults length = %d, want the override index's 2 docs", len(resp.AllResults))
	}
	if source.calls != 0 {
		t.Errorf("live index consulted %d times despite override", source.calls)
	}
}

func TestQuery_OverrideLoadFailure(t *testing.T) {
	synth := &mockSynthesizer{}
	loader := &mockLoader{err: domain.ErrIndexNotFound}
	svc := New(&mockSource{idx: testIndex(t, 3)}, loader, &mockResolver{synth: synth})

	_, err := svc.Query(context.Background(),
		makeRequest(t, "question", 10, 1, "simple", "/data/missing.json"))
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("error = %v, want ErrIndexNotFound", err)
	}
	if synth.called {
		t.Error("synthesizer called after load failure")
	}
}

func TestQuery_NoIndexLoaded(t *testing.T) {
	synth := &mockSynthesizer{}
	svc, _ := newTestService(nil, synth)

	_, err := svc.Query(context.Background(), makeRequest(t, "question", 10, 1, "simple", ""))
	if !errors.Is(err, domain.ErrIndexNotLoaded) {
		t.Fatalf("error = %v, want ErrIndexNotLoaded", err)
	}
}

func TestQuery_VectorizeFailure(t *testing.T) {
	docs := []document.Document{document.Reconstruct("a.txt", "alpha")}
	vec := &mockVectorizer{embedErr: errors.New("api down")}
	idx := domindex.Reconstruct(docs, [][]float64{{1}}, vec, domain.VectorizerState{}, "mock")

	synth := &mockSynthesizer{}
	svc, _ := newTestService(idx, synth)

	_, err := svc.Query(context.Background(), makeRequest(t, "question", 10, 1, "simple", ""))
	if err == nil || !strings.Contains(err.Error(), "vectorize query") {
		t.Fatalf("error = %v, want vectorize query wrap", err)
	}
	if synth.called {
		t.Error("synthesizer called after vectorize failure")
	}
}
