// Package query orchestrates one question: retrieve the nearest documents,
// synthesize an answer over them, and page the ranked results.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	domindex "github.com/kailas-cloud/docdex/internal/domain/index"
	"github.com/kailas-cloud/docdex/internal/domain/page"
	"github.com/kailas-cloud/docdex/internal/domain/provider"
	domquery "github.com/kailas-cloud/docdex/internal/domain/query"
	"github.com/kailas-cloud/docdex/internal/domain/result"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/retriever"
)

// overfetchFactor widens retrieval beyond one page so generative providers
// receive more context than the single page the caller lands on.
const overfetchFactor = 3

// Service answers questions over the indexed corpus.
type Service struct {
	handle  IndexSource
	loader  IndexLoader
	answers SynthesizerResolver
}

// New creates a query service.
func New(handle IndexSource, loader IndexLoader, answers SynthesizerResolver) *Service {
	return &Service{handle: handle, loader: loader, answers: answers}
}

// Response is the complete outcome of one query.
type Response struct {
	Query      string
	Results    []result.Result // current page window over AllResults
	AllResults []result.Result
	Answer     string
	Pagination page.Pagination
}

// Query retrieves the documents nearest the question, synthesizes an answer
// over all of them, and windows the ranked list to the requested page.
func (s *Service) Query(ctx context.Context, req *domquery.Request) (*Response, error) {
	start := time.Now()
	prov := string(req.Provider())

	resp, err := s.query(ctx, req)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(prov, "error").Inc()
		return nil, err
	}

	metrics.QueriesTotal.WithLabelValues(prov, "success").Inc()
	metrics.QueryDuration.WithLabelValues(prov).Observe(time.Since(start).Seconds())
	return resp, nil
}

func (s *Service) query(ctx context.Context, req *domquery.Request) (*Response, error) {
	idx, err := s.resolveIndex(ctx, req)
	if err != nil {
		return nil, err
	}

	// The simple synthesizer scans every document for literal matches;
	// generative providers only need a few pages of context.
	topK := req.PerPage() * overfetchFactor
	if req.Provider() == provider.Simple {
		topK = idx.Len()
	}

	vecs, err := idx.Vectorizer().Embed(ctx, []string{req.Question()})
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	positions, scores := retriever.FromIndex(idx).Query(vecs[0], topK)

	all := make([]result.Result, len(positions))
	contexts := make([]string, len(positions))
	docIDs := make([]string, len(positions))
	for i, pos := range positions {
		doc := idx.Doc(pos)
		all[i] = result.New(doc.ID(), scores[i], doc.Text())
		contexts[i] = doc.Text()
		docIDs[i] = doc.ID()
	}

	synth := s.answers.Resolve(req.Provider())
	answerText := synth.Synthesize(ctx, req.Question(), contexts, docIDs, req.PerPage())

	pg := page.New(req.Page(), req.PerPage(), len(all))
	lo, hi := pg.Window()

	return &Response{
		Query:      req.Question(),
		Results:    all[lo:hi],
		AllResults: all,
		Answer:     answerText,
		Pagination: pg,
	}, nil
}

// resolveIndex picks the index to query: a fresh load when the request
// overrides the path, otherwise the live index.
func (s *Service) resolveIndex(ctx context.Context, req *domquery.Request) (*domindex.Index, error) {
	if path := req.IndexPath(); path != "" {
		idx, err := s.loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("load index override: %w", err)
		}
		return idx, nil
	}

	idx := s.handle.Current()
	if idx == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	return idx, nil
}
