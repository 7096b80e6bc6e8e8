// Package health reports process liveness and index state.
package health

import "context"

// StatusOK is the only status the service reports; answering at all is the
// liveness signal. Index availability is a separate field, not a status.
const StatusOK = "ok"

// Report is the health snapshot returned to callers.
type Report struct {
	Status       string
	IndexLoaded  bool
	Rebuilding   bool
	NumDocuments int
}

// Service reports service health.
type Service struct {
	index IndexStatus
}

// New creates a health service.
func New(index IndexStatus) *Service {
	return &Service{index: index}
}

// Report snapshots the index state. It is observational only and never
// fails; a server without an index is healthy and reports IndexLoaded false.
func (s *Service) Report(_ context.Context) Report {
	r := Report{Status: StatusOK, Rebuilding: s.index.Rebuilding()}
	if idx := s.index.Current(); idx != nil {
		r.IndexLoaded = true
		r.NumDocuments = idx.Len()
	}
	return r
}
