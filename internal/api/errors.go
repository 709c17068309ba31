package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/extract"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/phrazzld/scry-study/internal/synthesis"
)

// errInvalidRequestFormat marks request bodies that could not be decoded.
var errInvalidRequestFormat = fmt.Errorf("%w: invalid request format", domain.ErrValidation)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrDocumentNotReady),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge

	// Bad request errors
	case errors.Is(err, synthesis.ErrEmptyInput),
		errors.Is(err, extract.ErrUnsupportedType),
		errors.Is(err, extract.ErrNoText),
		errors.Is(err, domain.ErrEmptyDocumentText),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		isValidationError(err):
		return http.StatusBadRequest

	// The model answered but nothing usable came out of it
	case errors.Is(err, synthesis.ErrEmptyResult):
		return http.StatusUnprocessableEntity

	// Upstream language model failures
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrTransport):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this document"

	case errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Document not found"
	case errors.Is(err, service.ErrUnitNotFound):
		return "Study unit not found"

	case errors.Is(err, service.ErrDocumentNotReady):
		return "Document is still being processed"
	case errors.Is(err, store.ErrDuplicate):
		return "Document already exists"

	case errors.As(err, &maxBytesErr):
		return "Document is too large"

	case errors.Is(err, synthesis.ErrEmptyInput),
		errors.Is(err, domain.ErrEmptyDocumentText),
		errors.Is(err, extract.ErrNoText):
		return "Document contains no text"
	case errors.Is(err, extract.ErrUnsupportedType):
		return "Unsupported document type"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case isValidationError(err):
		return SanitizeValidationError(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid document data"
	case errors.Is(err, errInvalidRequestFormat):
		return "Invalid request format"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	case errors.Is(err, synthesis.ErrEmptyResult):
		return "No study units could be generated from this document"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The language model refused to process this document"
	case errors.Is(err, generation.ErrInvalidResponse):
		return "The language model returned an invalid response"
	case errors.Is(err, generation.ErrTransport):
		return "The language model is unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error reply for err. A non-empty message
// replaces the safe default message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden || status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
