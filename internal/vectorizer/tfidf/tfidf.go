// Package tfidf implements the default local vectorizer: a deterministic
// TF-IDF transform over unigrams and adjacent bigrams with a serializable
// fitted state, so a persisted index reproduces the exact same vector space
// on reload without refitting.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Kind identifies this vectorizer in persisted state.
const Kind = "tfidf"

// Default vocabulary pruning knobs.
const (
	DefaultMaxFeatures = 5000
	DefaultMaxDocRatio = 0.95
	DefaultMinDocCount = 1
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Config holds vocabulary pruning knobs. Zero values select the defaults.
type Config struct {
	MaxFeatures int     // vocabulary size cap
	MaxDocRatio float64 // drop terms whose df fraction strictly exceeds this
	MinDocCount int     // drop terms seen in fewer documents than this
}

// Vectorizer is a TF-IDF vectorizer. It is not safe for concurrent use
// during Fit; once fitted it is immutable and safe to share.
type Vectorizer struct {
	cfg        Config
	vocabulary map[string]int
	terms      []string
	idf        []float64
	fitted     bool
	stopwords  map[string]struct{}
}

// New creates an unfitted TF-IDF vectorizer.
func New(cfg Config) *Vectorizer {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultMaxFeatures
	}
	if cfg.MaxDocRatio <= 0 {
		cfg.MaxDocRatio = DefaultMaxDocRatio
	}
	if cfg.MinDocCount <= 0 {
		cfg.MinDocCount = DefaultMinDocCount
	}
	return &Vectorizer{cfg: cfg, stopwords: defaultStopwords()}
}

// FromState restores a fitted vectorizer from persisted state without
// refitting. The restored instance reproduces Embed output bit-for-bit.
func FromState(st domain.VectorizerState) (*Vectorizer, error) {
	if st.Kind != Kind {
		return nil, fmt.Errorf("restore tfidf vectorizer: unexpected state kind %q", st.Kind)
	}
	if len(st.Terms) != len(st.IDF) {
		return nil, fmt.Errorf("restore tfidf vectorizer: %d terms but %d idf values", len(st.Terms), len(st.IDF))
	}
	v := New(Config{
		MaxFeatures: st.MaxFeatures,
		MaxDocRatio: st.MaxDocRatio,
		MinDocCount: st.MinDocCount,
	})
	v.terms = append([]string(nil), st.Terms...)
	v.idf = append([]float64(nil), st.IDF...)
	v.vocabulary = make(map[string]int, len(v.terms))
	for i, term := range v.terms {
		v.vocabulary[term] = i
	}
	v.fitted = true
	return v, nil
}

// ModelName returns the identifier of this vectorizer implementation.
func (v *Vectorizer) ModelName() string { return Kind }

// Dimensions returns the vector width decided at fit time, zero before Fit.
func (v *Vectorizer) Dimensions() int { return len(v.terms) }

// Fit builds the vocabulary and IDF values from the corpus.
func (v *Vectorizer) Fit(_ context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("fit tfidf vectorizer: %w", domain.ErrEmptyCorpus)
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, feat := range v.features(text) {
			if _, ok := seen[feat]; ok {
				continue
			}
			seen[feat] = struct{}{}
			df[feat]++
		}
	}

	n := len(corpus)
	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.cfg.MinDocCount {
			continue
		}
		if float64(count)/float64(n) > v.cfg.MaxDocRatio {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return fmt.Errorf("fit tfidf vectorizer: no indexable terms after pruning: %w", domain.ErrEmptyCorpus)
	}

	if len(kept) > v.cfg.MaxFeatures {
		// Keep highest-df terms; ties resolved by ascending term so the
		// selection is deterministic.
		sort.Slice(kept, func(i, j int) bool {
			if df[kept[i]] != df[kept[j]] {
				return df[kept[i]] > df[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:v.cfg.MaxFeatures]
	}
	// Stable term ordering for index assignment.
	sort.Strings(kept)

	v.terms = kept
	v.vocabulary = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for i, term := range kept {
		v.vocabulary[term] = i
		// Smoothed IDF.
		v.idf[i] = math.Log((1+float64(n))/(1+float64(df[term]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Embed computes L2-normalized TF-IDF vectors for the given texts. A text
// with no known terms embeds to the zero vector.
func (v *Vectorizer) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if !v.fitted {
		return nil, fmt.Errorf("embed: %w", domain.ErrNotFitted)
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = v.embedOne(text)
	}
	return out, nil
}

// State exports the fitted vocabulary so the index can persist it.
func (v *Vectorizer) State() (domain.VectorizerState, error) {
	if !v.fitted {
		return domain.VectorizerState{}, fmt.Errorf("export tfidf state: %w", domain.ErrNotFitted)
	}
	return domain.VectorizerState{
		Kind:        Kind,
		Model:       Kind,
		Dimensions:  len(v.terms),
		Terms:       append([]string(nil), v.terms...),
		IDF:         append([]float64(nil), v.idf...),
		MaxFeatures: v.cfg.MaxFeatures,
		MaxDocRatio: v.cfg.MaxDocRatio,
		MinDocCount: v.cfg.MinDocCount,
	}, nil
}

func (v *Vectorizer) embedOne(text string) []float64 {
	vec := make([]float64, len(v.terms))
	tf := make(map[int]int)
	total := 0
	for _, feat := range v.features(text) {
		if idx, ok := v.vocabulary[feat]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}
	// L2 normalize.
	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// features returns unigrams plus adjacent bigrams, stopwords removed.
// Bigrams are formed over the filtered token sequence.
func (v *Vectorizer) features(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		tokens = append(tokens, t)
	}
	feats := make([]string, len(tokens), 2*len(tokens))
	copy(feats, tokens)
	for i := 0; i+1 < len(tokens); i++ {
		feats = append(feats, tokens[i]+" "+tokens[i+1])
	}
	return feats
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
