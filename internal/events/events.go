// Package events publishes scholarship ledger events to observers after a unit of work commits.
package events

import (
	"context"
	"errors"
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/models"

	"github.com/google/uuid"
)

type Type string

const (
	TypeApplicationSubmitted Type = "scholarship.application.submitted"
	TypeApplicationApproved  Type = "scholarship.application.approved"
)

// Event is the observable record of one committed state transition.
type Event struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	ApplicationID uint64          `json:"applicationId"`
	Applicant     models.Identity `json:"applicant"`
	Score         uint64          `json:"score"`
	AwardAmount   uint64          `json:"awardAmount,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// New builds an event for rec with a fresh id.
func New(t Type, rec models.ApplicationRecord, at time.Time) Event {
	return Event{
		ID:            uuid.New().String(),
		Type:          t,
		ApplicationID: rec.ID,
		Applicant:     rec.Applicant,
		Score:         rec.Score,
		AwardAmount:   rec.AwardAmount,
		OccurredAt:    at.UTC(),
	}
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Publish(_ context.Context, ev Event) error {
	fields := map[string]interface{}{
		"eventId":       ev.ID,
		"applicationId": ev.ApplicationID,
		"applicant":     string(ev.Applicant),
		"score":         ev.Score,
	}
	if ev.Type == TypeApplicationApproved {
		fields["awardAmount"] = ev.AwardAmount
	}
	s.logger.Info(string(ev.Type), fields)
	return nil
}
