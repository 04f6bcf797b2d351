package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	createEntriesTable = `CREATE TABLE IF NOT EXISTS ledger_entries (
		namespace TEXT NOT NULL,
		key       TEXT NOT NULL,
		value     BYTEA NOT NULL,
		PRIMARY KEY (namespace, key)
	)`
	createInstancesTable = `CREATE TABLE IF NOT EXISTS ledger_instances (
		namespace  TEXT PRIMARY KEY,
		expires_at TIMESTAMPTZ NOT NULL
	)`

	lockInstanceQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`
	selectEntryQuery  = `SELECT value FROM ledger_entries WHERE namespace = $1 AND key = $2`
	upsertEntryQuery  = `INSERT INTO ledger_entries (namespace, key, value) VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value`
	extendInstanceQuery = `INSERT INTO ledger_instances (namespace, expires_at)
		VALUES ($1, NOW() + make_interval(secs => $2))
		ON CONFLICT (namespace) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE ledger_instances.expires_at < NOW() + make_interval(secs => $3)`
)

// PostgresStore persists entries in ledger_entries. Each Update runs in one SQL
// transaction holding a transaction-scoped advisory lock on the namespace.
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

func NewPostgresStore(db *sql.DB, namespace string) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace}
}

// Migrate creates the ledger tables when they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createEntriesTable, createInstancesTable} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}

type postgresTx struct {
	tx        *sql.Tx
	namespace string
}

func (t *postgresTx) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	return getEntry(ctx, t.tx, t.namespace, key)
}

func (t *postgresTx) Set(ctx context.Context, key Key, value []byte) error {
	_, err := t.tx.ExecContext(ctx, upsertEntryQuery, t.namespace, string(key), value)
	return err
}

func (t *postgresTx) ExtendTTL(ctx context.Context, policy TTLPolicy) error {
	if !policy.Enabled() {
		return nil
	}
	_, err := t.tx.ExecContext(ctx, extendInstanceQuery,
		t.namespace, policy.ExtendTo.Seconds(), policy.Threshold.Seconds())
	return err
}

func (s *PostgresStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx, lockInstanceQuery, s.namespace); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := fn(ctx, &postgresTx{tx: sqlTx, namespace: s.namespace}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

func (s *PostgresStore) View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error {
	return fn(ctx, postgresReader{db: s.db, namespace: s.namespace})
}

type postgresReader struct {
	db        *sql.DB
	namespace string
}

func (r postgresReader) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	return getEntry(ctx, r.db, r.namespace, key)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getEntry(ctx context.Context, q queryRower, namespace string, key Key) ([]byte, bool, error) {
	var value []byte
	err := q.QueryRowContext(ctx, selectEntryQuery, namespace, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresStore) Close() error { return nil }
