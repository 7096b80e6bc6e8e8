package sdk

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrInvalidProvider    = domain.ErrInvalidProvider
	ErrIndexNotFound      = domain.ErrIndexNotFound
	ErrIndexNotLoaded     = domain.ErrIndexNotLoaded
	ErrRebuildInProgress  = domain.ErrRebuildInProgress
	ErrEmptyCorpus        = domain.ErrEmptyCorpus
	ErrVectorizerProvider = domain.ErrVectorizerProvider
)

// Error codes carried in the server error envelope.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeIndexNotFound    = "index_not_found"
	CodeIndexNotLoaded   = "index_not_loaded"
	CodeConflict         = "conflict"
	CodeEmptyCorpus      = "empty_corpus"
	CodeProviderError    = "embedding_provider_error"
	CodeInternalError    = "internal_error"
)

// sentinelByCode maps envelope codes onto domain sentinels.
// Codes without an unambiguous sentinel (validation_failed covers
// both query and provider problems) stay unmapped.
var sentinelByCode = map[string]error{
	CodeIndexNotFound:  domain.ErrIndexNotFound,
	CodeIndexNotLoaded: domain.ErrIndexNotLoaded,
	CodeConflict:       domain.ErrRebuildInProgress,
	CodeEmptyCorpus:    domain.ErrEmptyCorpus,
	CodeProviderError:  domain.ErrVectorizerProvider,
}

// APIError is a non-2xx response from the docdex server.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Code is the machine-readable error code from the envelope,
	// empty when the body was not a docdex error envelope.
	Code string
	// Message is the human-readable error description.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("docdex: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("docdex: http %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the error code onto a domain sentinel so that
// errors.Is(err, sdk.ErrRebuildInProgress) works across the wire.
func (e *APIError) Unwrap() error {
	return sentinelByCode[e.Code]
}
