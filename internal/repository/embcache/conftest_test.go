package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/db"
	"github.com/kailas-cloud/docdex/internal/domain"
)

// mockVectorizer counts calls and derives vectors from text length so
// order checks stay deterministic.
type mockVectorizer struct {
	fitErr     error
	embedErr   error
	fitCalls   int
	embedCalls int
	lastTexts  []string
}

func (m *mockVectorizer) ModelName() string { return "mock" }

func (m *mockVectorizer) Dimensions() int { return 2 }

func (m *mockVectorizer) Fit(_ context.Context, _ []string) error {
	m.fitCalls++
	return m.fitErr
}

func (m *mockVectorizer) State() (domain.VectorizerState, error) {
	return domain.VectorizerState{Kind: "mock", Model: "mock", Dimensions: 2}, nil
}

func (m *mockVectorizer) Embed(_ context.Context, texts []string) ([][]float64, error) {
	m.embedCalls++
	m.lastTexts = texts
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = mockVec(text)
	}
	return out, nil
}

func mockVec(text string) []float64 {
	return []float64{float64(len(text)), 1}
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	setTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setTTLFn != nil {
		return m.setTTLFn(ctx, key, value, ttl)
	}
	return nil
}

// memoryKVStore backs the mock store with a map so hit paths can be tested.
func memoryKVStore() (*mockKVStore, map[string][]byte) {
	data := make(map[string][]byte)
	ms := &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := data[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte) error {
			data[key] = value
			return nil
		},
	}
	return ms, data
}

func newTestCached(t *testing.T, inner *mockVectorizer, ms *mockKVStore, ttl time.Duration) *CachedVectorizer {
	t.Helper()
	return New(inner, ms, ttl, nil, zap.NewNop())
}
