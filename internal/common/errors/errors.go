// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Scholarship business rules
const (
	ErrCodeInvalidScore        ErrorCode = "INVALID_SCORE"
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeAlreadyApproved     ErrorCode = "ALREADY_APPROVED"
	ErrCodeBelowMinimum        ErrorCode = "BELOW_MINIMUM"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
)

// Technical failures
const (
	ErrCodeStorageFailure    ErrorCode = "STORAGE_FAILURE"
	ErrCodeInconsistentState ErrorCode = "INCONSISTENT_STATE"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeAuthentication    ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeExternalService   ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

type descriptor struct {
	message   string
	retryable bool
	retries   int
}

var catalog = map[ErrorCode]descriptor{
	ErrCodeInvalidScore:        {message: "Score exceeds the 4.00 GPA scale"},
	ErrCodeApplicationNotFound: {message: "Scholarship application not found"},
	ErrCodeAlreadyApproved:     {message: "Scholarship application already approved"},
	ErrCodeBelowMinimum:        {message: "Score below the minimum required for approval"},
	ErrCodeUnauthorized:        {message: "Caller is not authorized for this operation"},
	ErrCodeInvalidInput:        {message: "Job variables failed validation"},
	ErrCodeAuthentication:      {message: "Authentication failed"},
	ErrCodeInconsistentState:   {message: "Ledger state is inconsistent"},
	ErrCodeStorageFailure:      {message: "Ledger storage unavailable", retryable: true, retries: 3},
	ErrCodeExternalService:     {message: "External service error", retryable: true, retries: 3},
	ErrCodeTimeout:             {message: "Operation timed out", retryable: true, retries: 2},
	ErrCodeInternal:            {message: "Unexpected error"},
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// New builds a StandardError whose message and retryability come from the code catalog.
// Unknown codes are treated as non-retryable internal errors.
func New(code ErrorCode, details string) *StandardError {
	d, ok := catalog[code]
	if !ok {
		d = catalog[ErrCodeInternal]
	}
	return &StandardError{
		Code:      code,
		Message:   d.message,
		Details:   details,
		Retryable: d.retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return New(ErrCodeInvalidInput, details)
}

func NewAuthenticationError(details string) *StandardError {
	return New(ErrCodeAuthentication, details)
}

func NewExternalServiceError(service string, err error) *StandardError {
	e := New(ErrCodeExternalService, err.Error())
	e.Message = fmt.Sprintf("External service '%s' error", service)
	return e
}

func NewTimeoutError(service string, err error) *StandardError {
	e := New(ErrCodeTimeout, err.Error())
	e.Message = fmt.Sprintf("Service '%s' timeout", service)
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns how many times the engine should retry a job failing with code.
func GetRetryCount(code ErrorCode) int {
	return catalog[code].retries
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are the internal codes verbatim.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for dashboards and log filtering.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidScore, ErrCodeApplicationNotFound, ErrCodeAlreadyApproved, ErrCodeBelowMinimum:
		return "SCHOLARSHIP"
	case ErrCodeUnauthorized, ErrCodeAuthentication:
		return "AUTH"
	case ErrCodeStorageFailure, ErrCodeInconsistentState:
		return "LEDGER"
	}
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "INTEGRATION"
	default:
		return "OTHER"
	}
}
