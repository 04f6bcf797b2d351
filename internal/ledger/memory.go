package ledger

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the instance in process memory. Update holds an exclusive lock for
// the whole callback, which makes every unit of work serializable.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[Key][]byte
	expiresAt time.Time
	clock     Clock
}

func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryStore{entries: make(map[Key][]byte), clock: clock}
}

type memoryTx struct {
	base   map[Key][]byte
	writes map[Key][]byte
	ttl    *TTLPolicy
}

func (t *memoryTx) Get(_ context.Context, key Key) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		return bytes.Clone(v), true, nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (t *memoryTx) Set(_ context.Context, key Key, value []byte) error {
	t.writes[key] = bytes.Clone(value)
	return nil
}

func (t *memoryTx) ExtendTTL(_ context.Context, policy TTLPolicy) error {
	t.ttl = &policy
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s.entries, writes: make(map[Key][]byte)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		s.entries[k] = v
	}
	if tx.ttl != nil && tx.ttl.Enabled() {
		now := s.clock.Now()
		if s.expiresAt.Sub(now) < tx.ttl.Threshold {
			s.expiresAt = now.Add(tx.ttl.ExtendTo)
		}
	}
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &memoryTx{base: s.entries})
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() error { return nil }

// ExpiresAt returns the instance expiry horizon; zero means never extended.
func (s *MemoryStore) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}
