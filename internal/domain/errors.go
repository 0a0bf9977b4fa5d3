package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message.
// Sentinels declared below match wrapped copies created with WithCause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithCause returns a copy of the error wrapping err.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Err: err}
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

// MessageOf returns the user-facing message of the first DomainError in err's
// chain, falling back to err.Error().
func MessageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeChunkingFailed    = "CHUNKING_FAILED"
	ErrCodeIndexingFailed    = "INDEXING_FAILED"
	ErrCodeConsistencyFailed = "CONSISTENCY_FAILED"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrMissingFile          = NewDomainError(ErrCodeValidation, "a PDF file is required")
	ErrNotPDF               = NewDomainError(ErrCodeValidation, "uploaded file is not a PDF")
)

// Not found errors
var (
	ErrSessionNotFound   = NewDomainError(ErrCodeSessionNotFound, "session not found")
	ErrEmbeddingNotFound = NewDomainError(ErrCodeNotFound, "embedding not found")
)

// Pipeline errors. The messages are shown to the user as-is.
var (
	ErrExtractionFailed  = NewDomainError(ErrCodeExtractionFailed, "No profile data extracted from PDF")
	ErrChunkingFailed    = NewDomainError(ErrCodeChunkingFailed, "No data chunks created from profile data")
	ErrIndexingFailed    = NewDomainError(ErrCodeIndexingFailed, "Failed to create vector index")
	ErrConsistencyFailed = NewDomainError(ErrCodeConsistencyFailed, "Embedding model verification failed")
	ErrGenerationFailed  = NewDomainError(ErrCodeGenerationFailed, "Error creating LLM model")
)

// Storage errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
