package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/provider"
)

// Query parameter limits.
const (
	// MaxQueryLength is the maximum allowed question length after trimming.
	MaxQueryLength = 500
	DefaultPerPage = 10
	MaxPerPage     = 100
	DefaultPage    = 1
)

// Request is a validated query.
type Request struct {
	question  string
	perPage   int
	page      int
	provider  provider.Provider
	indexPath string
}

// New validates and normalizes query parameters.
// Defaults: provider=simple, per_page=10, page=1. The question is trimmed;
// per_page is clamped to [1, 100] and page to [1, inf).
func New(question string, perPage, page int, prov, indexPath string) (Request, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Request{}, domain.NewInvalidQuery("q", "is required")
	}
	if len(question) > MaxQueryLength {
		return Request{}, domain.NewInvalidQuery("q", fmt.Sprintf("too long (max %d chars)", MaxQueryLength))
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = DefaultPage
	}
	p := provider.Normalize(prov)
	if p == "" {
		p = provider.Simple
	}
	if !p.IsValid() {
		return Request{}, domain.NewInvalidProvider(prov)
	}

	return Request{
		question:  question,
		perPage:   perPage,
		page:      page,
		provider:  p,
		indexPath: indexPath,
	}, nil
}

// Question returns the trimmed query text.
func (r *Request) Question() string { return r.question }

// PerPage returns the page size for result windows.
func (r *Request) PerPage() int { return r.perPage }

// Page returns the requested page number.
func (r *Request) Page() int { return r.page }

// Provider returns the answer provider to dispatch to.
func (r *Request) Provider() provider.Provider { return r.provider }

// IndexPath returns the caller-specified index override, or "" for the live index.
func (r *Request) IndexPath() string { return r.indexPath }
