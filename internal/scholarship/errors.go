package scholarship

import (
	"errors"
	"fmt"

	apperrors "scholarship-workers/internal/common/errors"
)

var (
	ErrInvalidScore      = errors.New("INVALID_SCORE")
	ErrNotFound          = errors.New("APPLICATION_NOT_FOUND")
	ErrAlreadyApproved   = errors.New("ALREADY_APPROVED")
	ErrBelowMinimum      = errors.New("BELOW_MINIMUM")
	ErrUnauthorized      = errors.New("UNAUTHORIZED")
	ErrStorage           = errors.New("STORAGE_FAILURE")
	ErrInconsistentState = errors.New("INCONSISTENT_STATE")
)

var errorCodes = []struct {
	err  error
	code apperrors.ErrorCode
}{
	{ErrInvalidScore, apperrors.ErrCodeInvalidScore},
	{ErrNotFound, apperrors.ErrCodeApplicationNotFound},
	{ErrAlreadyApproved, apperrors.ErrCodeAlreadyApproved},
	{ErrBelowMinimum, apperrors.ErrCodeBelowMinimum},
	{ErrUnauthorized, apperrors.ErrCodeUnauthorized},
	{ErrInconsistentState, apperrors.ErrCodeInconsistentState},
	{ErrStorage, apperrors.ErrCodeStorageFailure},
}

// Code classifies err into the shared error code space. Standard errors from
// collaborators keep their code; anything else is INTERNAL_ERROR.
func Code(err error) apperrors.ErrorCode {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return apperrors.ErrCodeInternal
}

// ToStandardError converts a service error for the workflow engine and HTTP clients.
func ToStandardError(err error) *apperrors.StandardError {
	var stdErr *apperrors.StandardError
	if !isDomainError(err) && errors.As(err, &stdErr) {
		return stdErr
	}
	return apperrors.New(Code(err), err.Error())
}

// authFailure turns an authorizer error into ErrUnauthorized unless the identity
// provider failed transiently, in which case the retryable error passes through.
func authFailure(err error) error {
	if errors.Is(err, ErrUnauthorized) {
		return err
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Retryable {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnauthorized, err)
}

func isDomainError(err error) bool {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return true
		}
	}
	return false
}
