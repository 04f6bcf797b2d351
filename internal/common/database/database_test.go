package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/ledger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Client Tests
// ==========================

func TestNewRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := NewRedis(config.RedisConfig{Address: mr.Addr(), PoolSize: 4})
	defer rdb.Close()

	assert.NoError(t, PingRedis(context.Background(), rdb))

	mr.Close()
	assert.Error(t, PingRedis(context.Background(), rdb))
}

func TestNewPostgres_AppliesPoolSettings(t *testing.T) {
	db, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "scholarship", User: "u", Password: "p",
		SSLMode: "disable", MaxConnections: 7, MaxIdle: 2,
	})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestPingElasticsearch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"healthy", http.StatusOK, false},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Elastic-Product", "Elasticsearch")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
			require.NoError(t, err)

			err = PingElasticsearch(context.Background(), es)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ==========================
// Ledger Backend Selection
// ==========================

func TestOpenLedger_Memory(t *testing.T) {
	cfg := &config.Config{Ledger: config.LedgerConfig{Backend: config.LedgerBackendMemory, Namespace: "test"}}

	l, err := OpenLedger(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer l.Close()

	_, ok := l.Store.(*ledger.MemoryStore)
	assert.True(t, ok)
}

func TestOpenLedger_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Ledger:   config.LedgerConfig{Backend: config.LedgerBackendRedis, Namespace: "test", MaxTxRetries: 3},
		Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr(), PoolSize: 2}},
	}

	l, err := OpenLedger(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)

	store, ok := l.Store.(*ledger.RedisStore)
	require.True(t, ok)
	assert.Equal(t, "ledger:test", store.Key())
	assert.NoError(t, l.Store.Ping(context.Background()))
	assert.NoError(t, l.Close())
}

func TestOpenLedger_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		Ledger:   config.LedgerConfig{Backend: config.LedgerBackendRedis, Namespace: "test"},
		Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: addr}},
	}
	_, err := OpenLedger(context.Background(), cfg, logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestOpenLedger_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Ledger: config.LedgerConfig{Backend: "etcd"}}
	_, err := OpenLedger(context.Background(), cfg, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "etcd"))
}
