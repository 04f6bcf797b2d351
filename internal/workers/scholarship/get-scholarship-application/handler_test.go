package getscholarshipapplication

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

type MockService struct {
	mock.Mock
}

func (m *MockService) Lookup(ctx context.Context, id uint64) (models.ApplicationRecord, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ApplicationRecord), args.Bool(1), args.Error(2)
}

func createMockJob(variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       1,
		Type:      TaskType,
		Retries:   3,
		Variables: string(variablesJSON),
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

func TestHandler_Process(t *testing.T) {
	stored := models.ApplicationRecord{ID: 3, Applicant: "student-c", Score: 352, SubmittedAt: 1700000000}

	tests := []struct {
		name   string
		id     uint64
		rec    models.ApplicationRecord
		found  bool
		output string
	}{
		{
			name:   "existing record",
			id:     3,
			rec:    stored,
			found:  true,
			output: `{"found":true,"application":{"id":3,"applicant":"student-c","score":352,"submittedAt":1700000000,"approved":false,"awardAmount":0}}`,
		},
		{
			name:   "unknown id yields sentinel",
			id:     99,
			output: `{"found":false,"application":{"id":0,"applicant":"","score":0,"submittedAt":0,"approved":false,"awardAmount":0}}`,
		},
		{
			name:   "zero id yields sentinel",
			id:     0,
			output: `{"found":false,"application":{"id":0,"applicant":"","score":0,"submittedAt":0,"approved":false,"awardAmount":0}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Lookup", mock.Anything, tt.id).Return(tt.rec, tt.found, nil)

			h := createTestHandler(t, svc)
			output, err := h.process(context.Background(), createMockJob(map[string]interface{}{"applicationId": tt.id}))
			require.NoError(t, err)

			data, err := json.Marshal(output)
			require.NoError(t, err)
			assert.JSONEq(t, tt.output, string(data))
		})
	}
}

func TestHandler_Execute_StorageFailure(t *testing.T) {
	svc := new(MockService)
	svc.On("Lookup", mock.Anything, uint64(1)).
		Return(models.ApplicationRecord{}, false, fmt.Errorf("%w: connection reset", scholarship.ErrStorage))

	h := createTestHandler(t, svc)
	_, err := h.Execute(context.Background(), &Input{ApplicationID: 1})

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeStorageFailure, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Process_MissingID(t *testing.T) {
	svc := new(MockService)
	h := createTestHandler(t, svc)

	_, err := h.process(context.Background(), createMockJob(map[string]interface{}{}))
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Normalize(err).Code)
	svc.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}
