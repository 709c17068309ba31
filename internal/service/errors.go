package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-study/internal/store"
)

// Sentinel errors returned by DocumentService. The API layer maps each of
// them to an HTTP status code.
var (
	// ErrNotOwned indicates a document is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrDocumentNotFound indicates that the document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrUnitNotFound indicates that a named study unit is not part of the document.
	ErrUnitNotFound = errors.New("study unit not found")

	// ErrDocumentNotReady indicates the document has not completed synthesis.
	// API layer should map this to HTTP 409 Conflict.
	ErrDocumentNotReady = errors.New("document synthesis has not completed")
)

// DocumentServiceError wraps errors from the document service with context.
type DocumentServiceError struct {
	// Operation is the operation that failed (e.g., "create_document", "extend_document")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DocumentServiceError.
func (e *DocumentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("document service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DocumentServiceError) Unwrap() error {
	return e.Err
}

// NewDocumentServiceError creates a new DocumentServiceError.
// It returns known sentinel errors directly without wrapping.
func NewDocumentServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrNotOwned, ErrDocumentNotFound, ErrUnitNotFound, ErrDocumentNotReady} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	if errors.Is(err, store.ErrDocumentNotFound) {
		return ErrDocumentNotFound
	}

	return &DocumentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
