package result

// Result is a single retrieval hit.
type Result struct {
	docID string
	score float64
	text  string
}

// New creates a retrieval result.
func New(docID string, score float64, text string) Result {
	return Result{docID: docID, score: score, text: text}
}

// DocID returns the document identifier.
func (r *Result) DocID() string { return r.docID }

// Score returns the cosine similarity to the query.
func (r *Result) Score() float64 { return r.score }

// Text returns the document content.
func (r *Result) Text() string { return r.text }
