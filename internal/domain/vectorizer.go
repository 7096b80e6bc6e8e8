package domain

import "context"

// Vectorizer is the shared text vectorization contract between layers.
// Implementations must be safe for concurrent Embed calls once fitted.
type Vectorizer interface {
	// ModelName identifies the vectorizer kind ("tfidf", "openai").
	ModelName() string
	// Dimensions returns the fixed vector width decided at fit time.
	Dimensions() int
	// Fit derives the vector space from the corpus.
	// An empty corpus fails with ErrEmptyCorpus.
	Fit(ctx context.Context, corpus []string) error
	// Embed maps texts to vectors of Dimensions width, one per input text.
	// Calling Embed before Fit fails with ErrNotFitted.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	// State captures the fitted state for persistence. Restoring from state
	// must reproduce Embed output exactly. Before Fit it fails with ErrNotFitted.
	State() (VectorizerState, error)
}

// VectorizerState is the serializable fitted state of a Vectorizer.
// Terms and IDF are populated by the tfidf kind only; remote kinds carry
// just the model identity and dimensions.
type VectorizerState struct {
	Kind        string
	Model       string
	Dimensions  int
	Terms       []string
	IDF         []float64
	MaxFeatures int
	MaxDocRatio float64
	MinDocCount int
}
