package index

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/document"
)

// stubVectorizer embeds each text deterministically from its content, so
// order checks can verify vectors ended up at the right positions.
type stubVectorizer struct {
	fitted   bool
	fitErr   error
	embedErr error
}

func (s *stubVectorizer) ModelName() string { return "stub" }

func (s *stubVectorizer) Dimensions() int { return 2 }

func (s *stubVectorizer) Fit(_ context.Context, corpus []string) error {
	if s.fitErr != nil {
		return s.fitErr
	}
	if len(corpus) == 0 {
		return domain.ErrEmptyCorpus
	}
	s.fitted = true
	return nil
}

func (s *stubVectorizer) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if !s.fitted {
		return nil, domain.ErrNotFitted
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = stubVector(t)
	}
	return out, nil
}

func (s *stubVectorizer) State() (domain.VectorizerState, error) {
	return domain.VectorizerState{Kind: "stub", Model: "stub", Dimensions: 2}, nil
}

func stubVector(text string) []float64 {
	sum := 0
	for _, r := range text {
		sum += int(r)
	}
	return []float64{float64(len(text)), float64(sum % 97)}
}

type stubFactory struct {
	vec        *stubVectorizer
	newErr     error
	restoreErr error
	restored   []domain.VectorizerState
}

func (f *stubFactory) New(context.Context) (domain.Vectorizer, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	if f.vec != nil {
		return f.vec, nil
	}
	return &stubVectorizer{}, nil
}

func (f *stubFactory) Restore(st domain.VectorizerState) (domain.Vectorizer, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	f.restored = append(f.restored, st)
	return &stubVectorizer{fitted: true}, nil
}

type stubSource struct {
	docs []document.Document
	err  error
}

func (s *stubSource) Load(context.Context) ([]document.Document, error) {
	return s.docs, s.err
}

func docsOf(t *testing.T, pairs ...string) []document.Document {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatal("docsOf needs id/text pairs")
	}
	docs := make([]document.Document, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		doc, err := document.New(pairs[i], pairs[i+1])
		if err != nil {
			t.Fatalf("document.New(%q): %v", pairs[i], err)
		}
		docs = append(docs, doc)
	}
	return docs
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(&stubFactory{}, StoreConfig{Logger: zap.NewNop()})
}
