package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
)

type stubVectorizer struct{}

func (stubVectorizer) ModelName() string { return "tfidf" }
func (stubVectorizer) Dimensions() int   { return 2 }
func (stubVectorizer) Fit(_ context.Context, _ []string) error {
	return nil
}
func (stubVectorizer) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}
func (stubVectorizer) State() (domain.VectorizerState, error) {
	return domain.VectorizerState{Kind: "tfidf"}, nil
}

func TestNew_Valid(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("a.txt", "alpha"),
		document.Reconstruct("b.txt", "beta"),
	}
	vectors := [][]float64{{1, 0}, {0, 1}}

	idx, err := New(docs, vectors, stubVectorizer{}, domain.VectorizerState{Kind: "tfidf"}, "tfidf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
	if idx.Doc(0).ID() != "a.txt" {
		t.Errorf("Doc(0).ID() = %q", idx.Doc(0).ID())
	}
	if idx.ModelName() != "tfidf" {
		t.Errorf("ModelName() = %q", idx.ModelName())
	}
	if len(idx.Docs()) != len(idx.Vectors()) {
		t.Errorf("docs/vectors length mismatch: %d != %d", len(idx.Docs()), len(idx.Vectors()))
	}
}

func TestNew_EmptyDocs(t *testing.T) {
	_, err := New(nil, nil, stubVectorizer{}, domain.VectorizerState{}, "tfidf")
	if err == nil {
		t.Fatal("expected error for empty docs")
	}
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestNew_LengthMismatch(t *testing.T) {
	docs := []document.Document{document.Reconstruct("a.txt", "alpha")}
	vectors := [][]float64{{1, 0}, {0, 1}}

	_, err := New(docs, vectors, stubVectorizer{}, domain.VectorizerState{}, "tfidf")
	if err == nil {
		t.Fatal("expected error for docs/vectors mismatch")
	}
}

func TestNew_NilVectorizer(t *testing.T) {
	docs := []document.Document{document.Reconstruct("a.txt", "alpha")}
	vectors := [][]float64{{1, 0}}

	_, err := New(docs, vectors, nil, domain.VectorizerState{}, "tfidf")
	if err == nil {
		t.Fatal("expected error for nil vectorizer")
	}
}

func TestReconstruct_SkipsValidation(t *testing.T) {
	idx := Reconstruct(nil, nil, nil, domain.VectorizerState{}, "")
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}
