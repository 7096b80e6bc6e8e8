package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus signals that a build found no indexable documents.
	ErrEmptyCorpus = errors.New("no indexable documents in corpus")
	// ErrIndexNotFound signals a load attempt on a missing index path.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexNotLoaded signals that no index is available to serve queries.
	ErrIndexNotLoaded = errors.New("index not loaded")
	// ErrNotFitted signals an embed call on an unfitted vectorizer.
	ErrNotFitted = errors.New("vectorizer not fitted")
	// ErrRebuildInProgress signals a rebuild request while one is already running.
	ErrRebuildInProgress = errors.New("index rebuild already in progress")
	// ErrVectorizerProvider signals a remote vectorizer provider failure.
	ErrVectorizerProvider = errors.New("vectorizer provider error")

	// ErrInvalidQuery signals a malformed query request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidProvider signals an answer provider outside the known set.
	ErrInvalidProvider = errors.New("invalid provider")
)

// ValidationError wraps a validation sentinel with the offending field and reason.
type ValidationError struct {
	Field  string
	Reason string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.err.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.err }

// NewInvalidQuery creates a validation error for a malformed request field.
func NewInvalidQuery(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, err: ErrInvalidQuery}
}

// NewInvalidProvider creates a validation error for an unknown answer provider.
func NewInvalidProvider(name string) error {
	return &ValidationError{
		Field:  "provider",
		Reason: fmt.Sprintf("unknown provider %q", name),
		err:    ErrInvalidProvider,
	}
}
