// Package retriever ranks indexed documents against a query vector by
// exact cosine similarity.
package retriever

import (
	"math"
	"sort"

	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
)

// Retriever scans all indexed vectors; results are exact nearest neighbors
// under cosine distance, not approximate.
type Retriever struct {
	vectors [][]float64
}

// FromIndex creates a retriever over the index's vectors.
func FromIndex(idx *domindex.Index) *Retriever {
	return &Retriever{vectors: idx.Vectors()}
}

// Query ranks all documents by cosine similarity to queryVec and returns
// the topK document positions with their scores. Ordering is descending
// similarity with ties broken by ascending document position, so repeated
// queries return identical rankings. topK is clamped to [1, numDocs].
func (r *Retriever) Query(queryVec []float64, topK int) ([]int, []float64) {
	n := len(r.vectors)
	if n == 0 {
		return nil, nil
	}
	if topK < 1 {
		topK = 1
	}
	if topK > n {
		topK = n
	}

	scores := make([]float64, n)
	for i, vec := range r.vectors {
		scores[i] = cosineSimilarity(queryVec, vec)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	topIdx := make([]int, topK)
	topScores := make([]float64, topK)
	for i := 0; i < topK; i++ {
		topIdx[i] = order[i]
		topScores[i] = scores[order[i]]
	}
	return topIdx, topScores
}

// cosineSimilarity returns dot(a,b)/(|a||b|); identical directions score 1,
// orthogonal vectors 0. A zero-norm side scores 0.
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		normA += x * x
	}
	for _, x := range b {
		normB += x * x
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
