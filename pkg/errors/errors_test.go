package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPErrorMapsStatusCodes(t *testing.T) {
	tests := []struct {
		statusCode int
		wantType   ErrorType
	}{
		{401, ErrorTypeUnauthorized},
		{403, ErrorTypeForbidden},
		{404, ErrorTypeNotFound},
		{409, ErrorTypeConflict},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServer},
		{503, ErrorTypeServer},
		{418, ErrorTypeHTTP},
	}

	for _, tt := range tests {
		err := HTTPError(tt.statusCode, fmt.Sprintf("%d status", tt.statusCode))
		assert.Equal(t, tt.wantType, err.Type, "status %d", tt.statusCode)
		assert.Equal(t, tt.statusCode, err.StatusCode)
	}
}

func TestAlreadyDoneIsDistinguishable(t *testing.T) {
	err := AlreadyDoneError("already liked")

	assert.True(t, IsAlreadyDone(err))
	assert.True(t, IsType(err, ErrorTypeConflict))

	// An ordinary conflict is not "already done"
	plain := HTTPError(409, "409 Conflict")
	assert.False(t, IsAlreadyDone(plain))
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	inner := NetworkError("connection refused", nil)
	wrapped := fmt.Errorf("toggling like: %w", inner)

	assert.True(t, IsType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsType(wrapped, ErrorTypeTimeout))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NetworkError("request failed", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, err.HasSuggestion())
}
