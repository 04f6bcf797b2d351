package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultMaxTxRetries = 5

// RedisStore keeps the whole instance in one hash so a single EXPIRE governs its lifetime.
// Units of work use optimistic locking (WATCH/MULTI) and are retried on conflict.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxRetries int
}

type RedisOption func(*RedisStore)

func WithMaxTxRetries(n int) RedisOption {
	return func(s *RedisStore) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

func NewRedisStore(client *redis.Client, namespace string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:     client,
		key:        "ledger:" + namespace,
		maxRetries: defaultMaxTxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the redis key holding the instance hash.
func (s *RedisStore) Key() string { return s.key }

// redisTx serves reads from the hash as it stood right after WATCH. A concurrent
// writer therefore aborts EXEC instead of leaking into later reads.
type redisTx struct {
	rtx      *redis.Tx
	snapshot map[string]string
	writes   map[Key][]byte
	ttl      *TTLPolicy
}

func (t *redisTx) Get(_ context.Context, key Key) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	v, ok := t.snapshot[string(key)]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (t *redisTx) Set(_ context.Context, key Key, value []byte) error {
	t.writes[key] = value
	return nil
}

func (t *redisTx) ExtendTTL(_ context.Context, policy TTLPolicy) error {
	t.ttl = &policy
	return nil
}

func (s *RedisStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			snapshot, err := rtx.HGetAll(ctx, s.key).Result()
			if err != nil {
				return err
			}
			tx := &redisTx{rtx: rtx, snapshot: snapshot, writes: make(map[Key][]byte)}
			if err := fn(ctx, tx); err != nil {
				return err
			}
			return s.commit(ctx, tx)
		}, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s changed concurrently %d times", ErrConflict, s.key, s.maxRetries+1)
}

func (s *RedisStore) commit(ctx context.Context, tx *redisTx) error {
	extend := false
	if tx.ttl != nil && tx.ttl.Enabled() {
		// -2 (missing) and -1 (no expiry) both fall below any threshold
		remaining, err := tx.rtx.TTL(ctx, s.key).Result()
		if err != nil {
			return err
		}
		extend = remaining < tx.ttl.Threshold
	}
	if len(tx.writes) == 0 && !extend {
		return nil
	}

	_, err := tx.rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(tx.writes) > 0 {
			fields := make([]interface{}, 0, len(tx.writes)*2)
			for k, v := range tx.writes {
				fields = append(fields, string(k), v)
			}
			pipe.HSet(ctx, s.key, fields...)
		}
		if extend {
			pipe.Expire(ctx, s.key, tx.ttl.ExtendTo)
		}
		return nil
	})
	return err
}

func (s *RedisStore) View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error {
	return fn(ctx, redisReader{client: s.client, key: s.key})
}

type redisReader struct {
	client *redis.Client
	key    string
}

func (r redisReader) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	v, err := r.client.HGet(ctx, r.key, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client belongs to the caller.
func (s *RedisStore) Close() error { return nil }
