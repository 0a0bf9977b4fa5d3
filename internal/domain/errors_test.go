package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeIndexingFailed, "indexing", errors.New("boom"))
	assert.Equal(t, "[INDEXING_FAILED] indexing: boom", wrapped.Error())
}

func TestDomainError_IsMatchesSentinel(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("process: %w", ErrIndexingFailed.WithCause(cause))

	assert.ErrorIs(t, err, ErrIndexingFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrExtractionFailed)
}

func TestCodeOfAndMessageOf(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ErrSessionNotFound)

	assert.Equal(t, ErrCodeSessionNotFound, CodeOf(err))
	assert.Equal(t, "session not found", MessageOf(err))

	plain := errors.New("plain")
	assert.Equal(t, ErrCodeInternalError, CodeOf(plain))
	assert.Equal(t, "plain", MessageOf(plain))
}
