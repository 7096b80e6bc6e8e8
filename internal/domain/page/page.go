package page

// Pagination describes a window over a ranked result list.
type Pagination struct {
	currentPage  int
	perPage      int
	totalResults int
	totalPages   int
}

// New derives pagination from a result count and page size. Total pages is
// ceiling division (zero when there are no results); the requested page is
// clamped into [1, max(totalPages, 1)].
func New(requestedPage, perPage, totalResults int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	if totalResults < 0 {
		totalResults = 0
	}
	totalPages := (totalResults + perPage - 1) / perPage

	current := requestedPage
	if current < 1 {
		current = 1
	}
	maxPage := totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if current > maxPage {
		current = maxPage
	}

	return Pagination{
		currentPage:  current,
		perPage:      perPage,
		totalResults: totalResults,
		totalPages:   totalPages,
	}
}

// CurrentPage returns the clamped page number, always >= 1.
func (p *Pagination) CurrentPage() int { return p.currentPage }

// PerPage returns the page size.
func (p *Pagination) PerPage() int { return p.perPage }

// TotalResults returns the number of ranked results.
func (p *Pagination) TotalResults() int { return p.totalResults }

// TotalPages returns the page count, zero when there are no results.
func (p *Pagination) TotalPages() int { return p.totalPages }

// Window returns the [start, end) slice bounds of the current page over a
// list of TotalResults items.
func (p *Pagination) Window() (start, end int) {
	start = (p.currentPage - 1) * p.perPage
	if start > p.totalResults {
		start = p.totalResults
	}
	end = start + p.perPage
	if end > p.totalResults {
		end = p.totalResults
	}
	return start, end
}
