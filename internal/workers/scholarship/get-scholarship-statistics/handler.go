// internal/workers/scholarship/get-scholarship-statistics/handler.go
package getscholarshipstatistics

import (
	"context"
	"time"

	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/internal/models"
	"scholarship-workers/internal/scholarship"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "get-scholarship-statistics"

type Service interface {
	GetStats(ctx context.Context) (models.AggregateStats, error)
}

// Handler takes no job variables, so there is nothing to validate.
type Handler struct {
	config       *Config
	service      Service
	errorHandler *errors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, service Service, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		errorHandler: errors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx)
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
}

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	stats, err := h.service.GetStats(ctx)
	if err != nil {
		return nil, scholarship.ToStandardError(err)
	}
	return &Output{Statistics: stats}, nil
}
