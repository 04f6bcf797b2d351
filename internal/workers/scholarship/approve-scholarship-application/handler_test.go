package approvescholarshipapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"
	"scholarship-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Service Implementation
// ==========================

type MockService struct {
	mock.Mock
}

func (m *MockService) Approve(ctx context.Context, req scholarship.ApproveRequest) (models.ApplicationRecord, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.ApplicationRecord), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "scholarship-process",
		ElementId:          "Activity_ApproveApplication",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()
	reg, err := registry.LoadRegistry("../../../../configs/activity-registry.json")
	require.NoError(t, err)
	validator, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return NewHandler(&Config{Enabled: true, Timeout: 5 * time.Second}, svc, validator, nil, logger.NewTestLogger(t))
}

func approvedRecord(id, score, award uint64) models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:          id,
		Applicant:   "student-a",
		Score:       score,
		SubmittedAt: 1700000000,
		Approved:    true,
		AwardAmount: award,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_AwardTiers(t *testing.T) {
	tests := []struct {
		score uint64
		award uint64
		tier  string
	}{
		{400, 20_000_000_000, "gold"},
		{380, 20_000_000_000, "gold"},
		{350, 15_000_000_000, "silver"},
		{300, 10_000_000_000, "bronze"},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Approve", mock.Anything, scholarship.ApproveRequest{ApplicationID: 1, Approver: "admin", AuthToken: "tok"}).
				Return(approvedRecord(1, tt.score, tt.award), nil)

			h := createTestHandler(t, svc)
			output, err := h.Execute(context.Background(), &Input{ApplicationID: 1, Approver: "admin", AuthToken: "tok"})

			require.NoError(t, err)
			assert.True(t, output.Approved)
			assert.Equal(t, tt.award, output.AwardAmount)
			assert.Equal(t, tt.tier, output.Tier)
			assert.Equal(t, StatusApproved, output.Status)
		})
	}
}

func TestHandler_Execute_ServiceErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      errors.ErrorCode
		retryable bool
	}{
		{"unknown id", fmt.Errorf("%w: application 9", scholarship.ErrNotFound), errors.ErrCodeApplicationNotFound, false},
		{"approved twice", fmt.Errorf("%w: application 1", scholarship.ErrAlreadyApproved), errors.ErrCodeAlreadyApproved, false},
		{"score too low", fmt.Errorf("%w: score 299", scholarship.ErrBelowMinimum), errors.ErrCodeBelowMinimum, false},
		{"not an authority", fmt.Errorf("%w: approver", scholarship.ErrUnauthorized), errors.ErrCodeUnauthorized, false},
		{"ledger unavailable", fmt.Errorf("%w: i/o timeout", scholarship.ErrStorage), errors.ErrCodeStorageFailure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Approve", mock.Anything, mock.Anything).Return(models.ApplicationRecord{}, tt.err)

			h := createTestHandler(t, svc)
			output, err := h.Execute(context.Background(), &Input{ApplicationID: 9})

			assert.Nil(t, output)
			stdErr := errors.Normalize(err)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

// ==========================
// Input Handling Tests
// ==========================

func TestHandler_Process_ZeroIDReachesService(t *testing.T) {
	svc := new(MockService)
	svc.On("Approve", mock.Anything, scholarship.ApproveRequest{ApplicationID: 0}).
		Return(models.ApplicationRecord{}, scholarship.ErrNotFound)

	h := createTestHandler(t, svc)
	_, err := h.process(context.Background(), createMockJob(1, map[string]interface{}{"applicationId": 0}))

	assert.Equal(t, errors.ErrCodeApplicationNotFound, errors.Normalize(err).Code)
	svc.AssertExpectations(t)
}

func TestHandler_Process_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
	}{
		{"missing id", map[string]interface{}{"approver": "admin"}},
		{"negative id", map[string]interface{}{"applicationId": -1}},
		{"id as string", map[string]interface{}{"applicationId": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			h := createTestHandler(t, svc)

			_, err := h.process(context.Background(), createMockJob(2, tt.variables))

			assert.Equal(t, errors.ErrCodeInvalidInput, errors.Normalize(err).Code)
			svc.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
		})
	}
}
