package scholarship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/events"
	"scholarship-workers/internal/ledger"
	"scholarship-workers/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTTL extends the instance to roughly 5000 ledgers of 5s whenever it drops below that.
var DefaultTTL = ledger.TTLPolicy{
	Threshold: 25000 * time.Second,
	ExtendTo:  25000 * time.Second,
}

type Options struct {
	Store      ledger.Store
	Authorizer Authorizer
	Approval   ApprovalPolicy
	Events     events.Sink
	Clock      ledger.Clock
	TTL        *ledger.TTLPolicy
	Logger     logger.Logger
}

// Service owns every state transition of the scholarship ledger. Each mutating call
// is one ledger unit of work: either all of its writes land or none do.
type Service struct {
	store    ledger.Store
	auth     Authorizer
	approval ApprovalPolicy
	events   events.Sink
	clock    ledger.Clock
	ttl      ledger.TTLPolicy
	logger   logger.Logger
	tracer   trace.Tracer
}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("scholarship: ledger store is required")
	}
	if opts.Authorizer == nil {
		return nil, errors.New("scholarship: authorizer is required")
	}
	s := &Service{
		store:    opts.Store,
		auth:     opts.Authorizer,
		approval: opts.Approval,
		events:   opts.Events,
		clock:    opts.Clock,
		ttl:      DefaultTTL,
		logger:   opts.Logger,
		tracer:   otel.Tracer("scholarship-workers/scholarship"),
	}
	if s.approval == nil {
		s.approval = OpenApproval{}
	}
	if s.clock == nil {
		s.clock = ledger.SystemClock{}
	}
	if opts.TTL != nil {
		s.ttl = *opts.TTL
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	return s, nil
}

type SubmitRequest struct {
	Applicant models.Identity
	Score     uint64
	AuthToken string
}

// Submit records a new pending application for req.Applicant and returns its id.
// The caller must authenticate as the applicant and the score must be on the 0-400 scale.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (id uint64, err error) {
	ctx, span := s.tracer.Start(ctx, "scholarship.Submit", trace.WithAttributes(
		attribute.String("applicant", string(req.Applicant)),
		attribute.Int64("score", int64(req.Score)),
	))
	defer func() { s.finish(span, "submit", err) }()

	if err := s.auth.RequireAuth(ctx, req.Applicant, req.AuthToken); err != nil {
		return 0, authFailure(err)
	}
	if req.Score > MaxScore {
		return 0, fmt.Errorf("%w: score %d exceeds %d", ErrInvalidScore, req.Score, MaxScore)
	}

	var rec models.ApplicationRecord
	err = s.update(ctx, "submit", func(ctx context.Context, tx ledger.Tx) error {
		newID, err := allocateID(ctx, tx)
		if err != nil {
			return err
		}
		rec = models.ApplicationRecord{
			ID:          newID,
			Applicant:   req.Applicant,
			Score:       req.Score,
			SubmittedAt: uint64(s.clock.Now().Unix()),
		}
		if err := storeRecord(ctx, tx, rec); err != nil {
			return err
		}
		if err := recordSubmission(ctx, tx); err != nil {
			return err
		}
		return tx.ExtendTTL(ctx, s.ttl)
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("application.id", int64(rec.ID)))
	s.logger.Info("Scholarship application submitted", map[string]interface{}{
		"applicationId": rec.ID,
		"applicant":     string(rec.Applicant),
		"score":         rec.Score,
	})
	s.publish(ctx, events.TypeApplicationSubmitted, rec)
	return rec.ID, nil
}

type ApproveRequest struct {
	ApplicationID uint64
	Approver      models.Identity
	AuthToken     string
}

// Approve marks a pending application approved and fixes its award from the score tier.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) (rec models.ApplicationRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "scholarship.Approve", trace.WithAttributes(
		attribute.Int64("application.id", int64(req.ApplicationID)),
	))
	defer func() { s.finish(span, "approve", err) }()

	if err := s.approval.AuthorizeApproval(ctx, req.Approver, req.AuthToken); err != nil {
		return models.ApplicationRecord{}, authFailure(err)
	}

	var tier Tier
	err = s.update(ctx, "approve", func(ctx context.Context, tx ledger.Tx) error {
		current, ok, err := loadRecord(ctx, tx, req.ApplicationID)
		if err != nil {
			return err
		}
		if !ok || !current.Exists() {
			return fmt.Errorf("%w: id %d", ErrNotFound, req.ApplicationID)
		}
		if current.Approved {
			return fmt.Errorf("%w: id %d", ErrAlreadyApproved, req.ApplicationID)
		}
		var found bool
		tier, found = TierForScore(current.Score)
		if !found {
			return fmt.Errorf("%w: score %d is below %d", ErrBelowMinimum, current.Score, MinimumScore)
		}

		current.Approved = true
		current.AwardAmount = tier.Award
		if err := storeRecord(ctx, tx, current); err != nil {
			return err
		}
		if err := recordApproval(ctx, tx, tier.Award); err != nil {
			return err
		}
		rec = current
		return tx.ExtendTTL(ctx, s.ttl)
	})
	if err != nil {
		return models.ApplicationRecord{}, err
	}

	span.SetAttributes(
		attribute.String("award.tier", tier.Name),
		attribute.Int64("award.amount", int64(rec.AwardAmount)),
	)
	metrics.ScholarshipAwardsDisbursed.WithLabelValues(tier.Name).Add(float64(rec.AwardAmount))
	s.logger.Info("Scholarship application approved", map[string]interface{}{
		"applicationId": rec.ID,
		"awardAmount":   rec.AwardAmount,
		"tier":          tier.Name,
	})
	s.publish(ctx, events.TypeApplicationApproved, rec)
	return rec, nil
}

// GetRecord returns the record for id, or the zero-valued sentinel when none exists.
func (s *Service) GetRecord(ctx context.Context, id uint64) (models.ApplicationRecord, error) {
	rec, _, err := s.Lookup(ctx, id)
	return rec, err
}

// Lookup is GetRecord with explicit presence.
func (s *Service) Lookup(ctx context.Context, id uint64) (rec models.ApplicationRecord, found bool, err error) {
	ctx, span := s.tracer.Start(ctx, "scholarship.Lookup", trace.WithAttributes(
		attribute.Int64("application.id", int64(id)),
	))
	defer func() { s.finish(span, "lookup", err) }()

	if id == 0 {
		return models.ApplicationRecord{}, false, nil
	}
	err = s.view(ctx, func(ctx context.Context, r ledger.Reader) error {
		var err error
		rec, found, err = loadRecord(ctx, r, id)
		return err
	})
	if err != nil || !found {
		return models.ApplicationRecord{}, false, err
	}
	return rec, true, nil
}

// GetStats returns the aggregate counters, all zero before the first submission.
func (s *Service) GetStats(ctx context.Context) (stats models.AggregateStats, err error) {
	ctx, span := s.tracer.Start(ctx, "scholarship.GetStats")
	defer func() { s.finish(span, "stats", err) }()

	err = s.view(ctx, func(ctx context.Context, r ledger.Reader) error {
		var err error
		stats, err = loadStats(ctx, r)
		return err
	})
	if err != nil {
		return models.AggregateStats{}, err
	}
	return stats, nil
}

// Ping reports whether the ledger backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) update(ctx context.Context, op string, fn func(ctx context.Context, tx ledger.Tx) error) error {
	start := time.Now()
	err := s.store.Update(ctx, fn)
	metrics.LedgerUpdateDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return classify(err)
}

func (s *Service) view(ctx context.Context, fn func(ctx context.Context, r ledger.Reader) error) error {
	return classify(s.store.View(ctx, fn))
}

// classify keeps domain errors intact and folds everything else into ErrStorage.
func classify(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return storageErr("ledger", err)
}

func (s *Service) finish(span trace.Span, op string, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(Code(err)))
		metrics.ScholarshipOperations.WithLabelValues(op, string(Code(err))).Inc()
		return
	}
	metrics.ScholarshipOperations.WithLabelValues(op, "ok").Inc()
}

// publish delivers an event after commit. Delivery failures never undo the commit.
func (s *Service) publish(ctx context.Context, t events.Type, rec models.ApplicationRecord) {
	if s.events == nil {
		return
	}
	ev := events.New(t, rec, s.clock.Now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish scholarship event", map[string]interface{}{
			"eventId":       ev.ID,
			"eventType":     string(ev.Type),
			"applicationId": rec.ID,
			"error":         err.Error(),
		})
	}
}
