package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("call: %w", ErrServiceUnavailable)))
	assert.True(t, IsTransient(ErrTimeout))
	assert.False(t, IsTransient(ErrEmptyInput))
	assert.False(t, IsTransient(ErrExtractionParse))
	assert.False(t, IsTransient(nil))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "marshal record")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "marshal record: disk full", err.Error())

	assert.NoError(t, WrapError(nil, "anything"))
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "CONFIG_ERROR")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY is required")

	bare := NewAppError("ARCHIVE_OPEN", "failed to open archive database", nil)
	assert.Equal(t, "ARCHIVE_OPEN: failed to open archive database", bare.Error())
}
