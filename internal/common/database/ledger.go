// internal/common/database/ledger.go
package database

import (
	"context"
	"fmt"

	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/ledger"
)

// Ledger is an opened ledger store together with the connection backing it.
type Ledger struct {
	Store   ledger.Store
	closers []func() error
}

// Close releases the store and its connection.
func (l *Ledger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenLedger connects the backend selected by cfg.Ledger.Backend.
func OpenLedger(ctx context.Context, cfg *config.Config, log logger.Logger) (*Ledger, error) {
	lc := cfg.Ledger
	log = log.With(map[string]interface{}{"backend": lc.Backend, "namespace": lc.Namespace})

	switch lc.Backend {
	case config.LedgerBackendMemory:
		log.Warn("using in-memory ledger; state is lost on restart", nil)
		store := ledger.NewMemoryStore(ledger.SystemClock{})
		return &Ledger{Store: store, closers: []func() error{store.Close}}, nil

	case config.LedgerBackendRedis:
		rdb := NewRedis(cfg.Database.Redis)
		if err := PingRedis(ctx, rdb); err != nil {
			rdb.Close()
			return nil, err
		}
		store := ledger.NewRedisStore(rdb, lc.Namespace, ledger.WithMaxTxRetries(lc.MaxTxRetries))
		log.Info("redis ledger ready", map[string]interface{}{"address": cfg.Database.Redis.Address, "key": store.Key()})
		return &Ledger{Store: store, closers: []func() error{store.Close, rdb.Close}}, nil

	case config.LedgerBackendPostgres:
		db, err := NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres ping failed: %w", err)
		}
		store := ledger.NewPostgresStore(db, lc.Namespace)
		if lc.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
			log.Info("ledger schema migrated", nil)
		}
		log.Info("postgres ledger ready", map[string]interface{}{"host": cfg.Database.Postgres.Host})
		return &Ledger{Store: store, closers: []func() error{store.Close, db.Close}}, nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", lc.Backend)
	}
}
