package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// DefaultLRUSize is the default number of embeddings kept in memory. At
// 1536 dimensions a float64 vector is ~12KB, so 1000 entries stay near 12MB.
const DefaultLRUSize = 1000

// LRUVectorizer keeps a small in-process cache in front of the inner
// vectorizer, so repeated query texts skip even the persistent cache.
type LRUVectorizer struct {
	inner domain.Vectorizer
	cache *lru.Cache[string, []float64]
}

// NewLRU creates an in-process caching decorator. size <= 0 uses
// DefaultLRUSize.
func NewLRU(inner domain.Vectorizer, size int) *LRUVectorizer {
	if size <= 0 {
		size = DefaultLRUSize
	}
	cache, _ := lru.New[string, []float64](size)
	return &LRUVectorizer{inner: inner, cache: cache}
}

// ModelName implements domain.Vectorizer.
func (c *LRUVectorizer) ModelName() string { return c.inner.ModelName() }

// Dimensions implements domain.Vectorizer.
func (c *LRUVectorizer) Dimensions() int { return c.inner.Dimensions() }

// Fit passes through and drops cached entries, a refit changes the vector
// space.
func (c *LRUVectorizer) Fit(ctx context.Context, corpus []string) error {
	if err := c.inner.Fit(ctx, corpus); err != nil {
		return err
	}
	c.cache.Purge()
	return nil
}

// State implements domain.Vectorizer.
func (c *LRUVectorizer) State() (domain.VectorizerState, error) {
	return c.inner.State()
}

// Embed returns cached embeddings where available and calls the inner
// vectorizer once for the remaining texts, preserving input order.
func (c *LRUVectorizer) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(c.key(text)); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("inner vectorizer returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.Add(c.key(texts[i]), vecs[j])
	}
	return out, nil
}

func (c *LRUVectorizer) key(text string) string {
	h := sha256.Sum256([]byte(c.inner.ModelName() + "|" + text))
	return hex.EncodeToString(h[:])
}
