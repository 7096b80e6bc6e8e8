// Package chi exposes the query, rebuild, and health use cases over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	domquery "github.com/kailas-cloud/docdex/internal/domain/query"
	"github.com/kailas-cloud/docdex/internal/domain/result"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
	rebuilduc "github.com/kailas-cloud/docdex/internal/usecase/rebuild"
)

// errorCode labels error responses for programmatic clients.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeIndexNotFound    errorCode = "index_not_found"
	codeIndexNotLoaded   errorCode = "index_not_loaded"
	codeConflict         errorCode = "conflict"
	codeEmptyCorpus      errorCode = "empty_corpus"
	codeProviderError    errorCode = "embedding_provider_error"
	codeInternalError    errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server maps HTTP requests onto the use case services.
type Server struct {
	query         *queryuc.Service
	rebuild       *rebuilduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	query *queryuc.Service,
	rebuild *rebuilduc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		query:   query,
		rebuild: rebuild,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRebuildInProgress, http.StatusConflict, codeConflict),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, codeIndexNotFound),
		sentinelHandler(domain.ErrIndexNotLoaded, http.StatusServiceUnavailable, codeIndexNotLoaded),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusInternalServerError, codeEmptyCorpus),
		sentinelHandler(domain.ErrVectorizerProvider, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/query", s.Query)
	r.Post("/rebuild-index", s.RebuildIndex)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// --- Wire types ---

type queryRequest struct {
	Q         string `json:"q"`
	PerPage   int    `json:"per_page"`
	Page      int    `json:"page"`
	Provider  string `json:"provider"`
	IndexPath string `json:"index_path"`
}

type resultItem struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

type paginationInfo struct {
	CurrentPage  int `json:"current_page"`
	PerPage      int `json:"per_page"`
	TotalResults int `json:"total_results"`
	TotalPages   int `json:"total_pages"`
}

type queryResponse struct {
	Query      string         `json:"query"`
	Results    []resultItem   `json:"results"`
	AllResults []resultItem   `json:"all_results"`
	Answer     string         `json:"answer"`
	Pagination paginationInfo `json:"pagination"`
}

type rebuildResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	NumDocuments int    `json:"num_documents"`
	IndexPath    string `json:"index_path"`
}

type healthResponse struct {
	Status       string `json:"status"`
	IndexLoaded  bool   `json:"index_loaded"`
	Rebuilding   bool   `json:"rebuilding"`
	NumDocuments int    `json:"num_documents"`
}

type errorBody struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// --- Handlers ---

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	domReq, err := domquery.New(req.Q, req.PerPage, req.Page, req.Provider, req.IndexPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	resp, err := s.query.Query(r.Context(), &domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueryResponse(resp))
}

// RebuildIndex handles POST /rebuild-index.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rebuild.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rebuildResponse{
		Status:       "success",
		Message:      fmt.Sprintf("Index rebuilt successfully with %d documents", resp.NumDocuments),
		NumDocuments: resp.NumDocuments,
		IndexPath:    resp.IndexPath,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Report(r.Context())

	writeJSON(w, http.StatusOK, healthResponse{
		Status:       report.Status,
		IndexLoaded:  report.IndexLoaded,
		Rebuilding:   report.Rebuilding,
		NumDocuments: report.NumDocuments,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Mapping ---

func toQueryResponse(resp *queryuc.Response) queryResponse {
	pg := resp.Pagination
	return queryResponse{
		Query:      resp.Query,
		Results:    toResultItems(resp.Results),
		AllResults: toResultItems(resp.AllResults),
		Answer:     resp.Answer,
		Pagination: paginationInfo{
			CurrentPage:  pg.CurrentPage(),
			PerPage:      pg.PerPage(),
			TotalResults: pg.TotalResults(),
			TotalPages:   pg.TotalPages(),
		},
	}
}

func toResultItems(rs []result.Result) []resultItem {
	items := make([]resultItem, len(rs))
	for i := range rs {
		items[i] = resultItem{
			ID:    rs[i].DocID(),
			Score: rs[i].Score(),
			Text:  rs[i].Text(),
		}
	}
	return items
}

// --- Errors ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRebuildInProgress,
		domain.ErrIndexNotFound,
		domain.ErrIndexNotLoaded,
		domain.ErrEmptyCorpus,
		domain.ErrVectorizerProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
