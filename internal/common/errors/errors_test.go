package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_UsesCatalog(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
		retries   int
		category  string
	}{
		{ErrCodeInvalidScore, false, 0, "SCHOLARSHIP"},
		{ErrCodeApplicationNotFound, false, 0, "SCHOLARSHIP"},
		{ErrCodeAlreadyApproved, false, 0, "SCHOLARSHIP"},
		{ErrCodeBelowMinimum, false, 0, "SCHOLARSHIP"},
		{ErrCodeUnauthorized, false, 0, "AUTH"},
		{ErrCodeStorageFailure, true, 3, "LEDGER"},
		{ErrCodeInconsistentState, false, 0, "LEDGER"},
		{ErrCodeInvalidInput, false, 0, "VALIDATION"},
		{ErrCodeTimeout, true, 2, "INTEGRATION"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := New(tt.code, "details")
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
			assert.Equal(t, tt.category, GetErrorCategory(tt.code))
		})
	}
}

func TestNew_UnknownCode(t *testing.T) {
	e := New("SOMETHING_ELSE", "x")
	assert.Equal(t, ErrorCode("SOMETHING_ELSE"), e.Code)
	assert.False(t, e.Retryable)
	assert.Equal(t, "OTHER", GetErrorCategory(e.Code))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(New(ErrCodeStorageFailure, "redis down"))
	assert.Equal(t, "STORAGE_FAILURE", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "STORAGE_FAILURE", vars["errorCode"])
	assert.Equal(t, "redis down", vars["errorDetails"])
	assert.Equal(t, "STORAGE_FAILURE", vars["originalErrorCode"])

	business := ConvertToBPMNError(New(ErrCodeBelowMinimum, "score 299"))
	assert.Equal(t, 0, business.Retries)
}

func TestNormalize(t *testing.T) {
	std := New(ErrCodeAlreadyApproved, "id 1")
	wrapped := fmt.Errorf("approve: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	foreign := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, foreign.Code)
	assert.Equal(t, "boom", foreign.Details)
}
