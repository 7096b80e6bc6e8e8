package docdex

import (
	"context"
	"fmt"

	domquery "github.com/kailas-cloud/docdex/internal/domain/query"
	"github.com/kailas-cloud/docdex/internal/domain/result"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
)

// Result is one ranked document.
type Result struct {
	ID    string
	Score float64
	Text  string
}

// Pagination describes the page window over the full ranked list.
type Pagination struct {
	CurrentPage  int
	PerPage      int
	TotalResults int
	TotalPages   int
}

// QueryResult is the paginated response to one question.
type QueryResult struct {
	Query      string
	Results    []Result // current page window
	AllResults []Result // every retrieved document, ranked
	Answer     string
	Pagination Pagination
}

// QueryOptions configures a query.
type QueryOptions struct {
	// PerPage is the page size, clamped to [1, 100]. Default 10.
	PerPage int
	// Page is the 1-based page number. Default 1.
	Page int
	// Provider picks the answer synthesizer: simple, openai, local or
	// gpt4all. Default simple.
	Provider string
	// IndexPath queries a different persisted index instead of the live one.
	IndexPath string
}

// Query answers a question from the indexed corpus.
func (c *Client) Query(ctx context.Context, question string, opts ...QueryOptions) (*QueryResult, error) {
	var qo QueryOptions
	if len(opts) > 0 {
		qo = opts[0]
	}

	req, err := domquery.New(question, qo.PerPage, qo.Page, qo.Provider, qo.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	resp, err := c.query.Query(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return fromResponse(resp), nil
}

func fromResponse(resp *queryuc.Response) *QueryResult {
	return &QueryResult{
		Query:      resp.Query,
		Results:    fromResults(resp.Results),
		AllResults: fromResults(resp.AllResults),
		Answer:     resp.Answer,
		Pagination: Pagination{
			CurrentPage:  resp.Pagination.CurrentPage(),
			PerPage:      resp.Pagination.PerPage(),
			TotalResults: resp.Pagination.TotalResults(),
			TotalPages:   resp.Pagination.TotalPages(),
		},
	}
}

func fromResults(results []result.Result) []Result {
	out := make([]Result, len(results))
	for i := range results {
		r := &results[i]
		out[i] = Result{ID: r.DocID(), Score: r.Score(), Text: r.Text()}
	}
	return out
}
