package scholarship

import (
	"context"
	"fmt"

	"scholarship-workers/internal/ledger"
	"scholarship-workers/internal/models"
)

type counterState struct {
	LastID uint64 `json:"lastId"`
}

// allocateID increments the application counter and returns the new value.
// The first id handed out is 1; 0 stays reserved for the sentinel record.
func allocateID(ctx context.Context, tx ledger.Tx) (uint64, error) {
	c, _, err := ledger.GetJSON[counterState](ctx, tx, ledger.CounterKey)
	if err != nil {
		return 0, storageErr("read counter", err)
	}
	if c.LastID == ^uint64(0) {
		return 0, fmt.Errorf("%w: application counter exhausted", ErrInconsistentState)
	}
	c.LastID++
	if err := ledger.SetJSON(ctx, tx, ledger.CounterKey, c); err != nil {
		return 0, storageErr("write counter", err)
	}
	return c.LastID, nil
}

func loadRecord(ctx context.Context, r ledger.Reader, id uint64) (models.ApplicationRecord, bool, error) {
	rec, ok, err := ledger.GetJSON[models.ApplicationRecord](ctx, r, ledger.RecordKey(id))
	if err != nil {
		return models.ApplicationRecord{}, false, storageErr("read record", err)
	}
	return rec, ok, nil
}

func storeRecord(ctx context.Context, tx ledger.Tx, rec models.ApplicationRecord) error {
	if err := ledger.SetJSON(ctx, tx, ledger.RecordKey(rec.ID), rec); err != nil {
		return storageErr("write record", err)
	}
	return nil
}

func loadStats(ctx context.Context, r ledger.Reader) (models.AggregateStats, error) {
	stats, _, err := ledger.GetJSON[models.AggregateStats](ctx, r, ledger.StatsKey)
	if err != nil {
		return models.AggregateStats{}, storageErr("read stats", err)
	}
	return stats, nil
}

func storeStats(ctx context.Context, tx ledger.Tx, stats models.AggregateStats) error {
	if err := ledger.SetJSON(ctx, tx, ledger.StatsKey, stats); err != nil {
		return storageErr("write stats", err)
	}
	return nil
}

// recordSubmission counts a new pending application.
func recordSubmission(ctx context.Context, tx ledger.Tx) error {
	stats, err := loadStats(ctx, tx)
	if err != nil {
		return err
	}
	stats.TotalApplications++
	stats.PendingCount++
	return storeStats(ctx, tx, stats)
}

// recordApproval moves one application from pending to approved and adds amount
// to the disbursed total. A pending count of zero means the ledger is corrupt.
func recordApproval(ctx context.Context, tx ledger.Tx, amount uint64) error {
	stats, err := loadStats(ctx, tx)
	if err != nil {
		return err
	}
	if stats.PendingCount == 0 {
		return fmt.Errorf("%w: approval with no pending applications", ErrInconsistentState)
	}
	stats.ApprovedCount++
	stats.PendingCount--
	stats.TotalDisbursed += amount
	return storeStats(ctx, tx, stats)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
