package sdk

// QueryRequest is the payload for POST /query.
type QueryRequest struct {
	// Q is the search question. Required.
	Q string `json:"q"`
	// PerPage is the number of results per page, clamped server-side
	// to [1, 100]. Zero means the server default (10).
	PerPage int `json:"per_page,omitempty"`
	// Page selects the result page, starting at 1.
	Page int `json:"page,omitempty"`
	// Provider picks the answer backend: simple, openai, local or
	// gpt4all. Empty means simple.
	Provider string `json:"provider,omitempty"`
	// IndexPath queries an alternative index file instead of the
	// server's configured one.
	IndexPath string `json:"index_path,omitempty"`
}

// Result is a single ranked document.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// Pagination describes the page window of a query response.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalResults int `json:"total_results"`
	TotalPages   int `json:"total_pages"`
}

// QueryResponse is the answer to a query.
type QueryResponse struct {
	Query string `json:"query"`
	// Results is the current page window.
	Results []Result `json:"results"`
	// AllResults holds every retrieved document, ranked.
	AllResults []Result   `json:"all_results"`
	Answer     string     `json:"answer"`
	Pagination Pagination `json:"pagination"`
}

// RebuildResponse reports a completed index rebuild.
type RebuildResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	NumDocuments int    `json:"num_documents"`
	IndexPath    string `json:"index_path"`
}

// HealthResponse reports the service state.
type HealthResponse struct {
	Status       string `json:"status"`
	IndexLoaded  bool   `json:"index_loaded"`
	Rebuilding   bool   `json:"rebuilding"`
	NumDocuments int    `json:"num_documents"`
}
