package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds. Every failure that reaches the handler boundary wraps one of these.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrQuotaExceeded     = errors.New("quota_exceeded")
	ErrResumeMissing     = errors.New("resume_missing")
	ErrInvalidInput      = errors.New("invalid_input")
	ErrUpstream          = errors.New("upstream_error")
	ErrSchema            = errors.New("schema_error")
	ErrUnsupportedFormat = errors.New("unsupported_format")
	ErrDocumentParse     = errors.New("document_parse_error")
	ErrNotFound          = errors.New("not_found")
	ErrInternal          = errors.New("internal_error")
)

// AppError carries a user-facing message alongside the kind and the cause.
// Details and Err are for logs only.
type AppError struct {
	Kind    error
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (details: %s, cause: %v)", e.Kind.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (details: %s)", e.Kind.Error(), e.Message, e.Details)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, msg, details string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Details: details, Err: err}
}

func NewUnauthorized(details string) *AppError {
	return New(ErrUnauthorized, "Please sign in to continue.", details, nil)
}

func NewQuotaExceeded(used, limit int) *AppError {
	return New(ErrQuotaExceeded,
		fmt.Sprintf("Daily analysis limit reached (%d of %d). Try again tomorrow.", used, limit),
		fmt.Sprintf("used=%d limit=%d", used, limit), nil)
}

// NewQuotaUnverified is returned when the daily count itself could not be read.
// The request is denied rather than let through unmetered.
func NewQuotaUnverified(err error) *AppError {
	return New(ErrQuotaExceeded, "Your daily usage could not be verified. Please try again later.", "quota count failed", err)
}

func NewResumeMissing() *AppError {
	return New(ErrResumeMissing, "Please set up your profile and resume first.", "no structured resume on profile", nil)
}

// NewInvalidInput carries a human-readable reason that is shown to the user as-is.
func NewInvalidInput(reason string) *AppError {
	return New(ErrInvalidInput, reason, reason, nil)
}

func NewUpstream(details string, err error) *AppError {
	return New(ErrUpstream, "The AI service is unavailable right now. Please try again.", details, err)
}

func NewSchema(details string, err error) *AppError {
	return New(ErrSchema, "The AI service returned an unexpected response. Please try again.", details, err)
}

func NewUnsupportedFormat(contentType string) *AppError {
	return New(ErrUnsupportedFormat, "Only PDF files are supported.", "content type "+contentType, nil)
}

func NewDocumentParse(err error) *AppError {
	return New(ErrDocumentParse, "Could not read this PDF. It may be corrupted.", "pdf parse failed", err)
}

func NewNotFound(resource, id string) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("%s %q not found", resource, id), nil)
}

func NewInternal(details string, err error) *AppError {
	return New(ErrInternal, "Something went wrong. Please try again.", details, err)
}

// kinds is ordered; the first match wins.
var kinds = []struct {
	kind   error
	status int
}{
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrQuotaExceeded, http.StatusTooManyRequests},
	{ErrResumeMissing, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
	{ErrDocumentParse, http.StatusUnprocessableEntity},
	{ErrNotFound, http.StatusNotFound},
	{ErrUpstream, http.StatusBadGateway},
	{ErrSchema, http.StatusBadGateway},
}

// Kind returns the kind wrapped by err, or ErrInternal.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.kind
		}
	}
	return ErrInternal
}

func ToHTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// ToJSON renders the user-facing body. Causes never leave the process.
func ToJSON(err error) gin.H {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return gin.H{"error": appErr.Message, "kind": Kind(err).Error()}
	}
	return gin.H{"error": "Something went wrong. Please try again.", "kind": ErrInternal.Error()}
}
