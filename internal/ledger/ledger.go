// Package ledger is the transactional key-value host that scholarship state lives in.
//
// All entries of one deployment share a single namespace (an "instance") with a
// common time-to-live. Writes made inside Update are applied atomically when the
// callback returns nil and discarded otherwise.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Key names a ledger entry.
type Key string

const (
	CounterKey Key = "counter"
	StatsKey   Key = "stats"
)

// RecordKey returns the entry key for application record id.
func RecordKey(id uint64) Key {
	return Key("record:" + strconv.FormatUint(id, 10))
}

var (
	ErrConflict = errors.New("LEDGER_CONFLICT")
	ErrCodec    = errors.New("LEDGER_CODEC")
)

// TTLPolicy mirrors the host's "extend if below threshold" rule.
type TTLPolicy struct {
	Threshold time.Duration
	ExtendTo  time.Duration
}

// Enabled reports whether the policy asks for any extension at all.
func (p TTLPolicy) Enabled() bool {
	return p.ExtendTo > 0
}

// Reader gives read access to instance entries.
type Reader interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
}

// Tx is a read-write view used inside Update. Reads observe earlier writes of the same Tx.
type Tx interface {
	Reader
	Set(ctx context.Context, key Key, value []byte) error
	ExtendTTL(ctx context.Context, policy TTLPolicy) error
}

// Store runs serializable units of work against one ledger instance.
type Store interface {
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Clock supplies chain time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Used by tests and replays.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
