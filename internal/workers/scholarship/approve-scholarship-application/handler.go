// internal/workers/scholarship/approve-scholarship-application/handler.go
package approvescholarshipapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/internal/common/validation"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "approve-scholarship-application"

	StatusApproved = "approved"
)

type Service interface {
	Approve(ctx context.Context, req scholarship.ApproveRequest) (models.ApplicationRecord, error)
}

type Handler struct {
	config       *Config
	service      Service
	validator    *validation.Validator
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, service Service, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		validator:    validator,
		errorHandler: errors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(ctx, job)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		h.obs.RecordJob(ctx, TaskType, "failed", time.Since(start))
		return
	}

	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(start))
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":        job.GetKey(),
		"applicationId": output.ApplicationID,
		"awardAmount":   output.AwardAmount,
	})
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	variables := job.GetVariables()

	result, err := h.validator.ValidateJSON(TaskType, variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return h.Execute(ctx, &input)
}

// Execute approves the application and reports the award fixed for it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := h.service.Approve(ctx, scholarship.ApproveRequest{
		ApplicationID: input.ApplicationID,
		Approver:      models.Identity(input.Approver),
		AuthToken:     input.AuthToken,
	})
	if err != nil {
		return nil, scholarship.ToStandardError(err)
	}

	output := &Output{
		ApplicationID: rec.ID,
		Approved:      rec.Approved,
		AwardAmount:   rec.AwardAmount,
		Status:        StatusApproved,
	}
	if tier, ok := scholarship.TierForScore(rec.Score); ok {
		output.Tier = tier.Name
	}
	return output, nil
}
