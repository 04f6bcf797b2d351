package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const minimalYAML = `
camunda:
  broker_address: localhost:26500
ledger:
  backend: memory
auth:
  mode: trusted
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Loading
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "scholarship-workers", cfg.App.Name)
	assert.Equal(t, LedgerBackendMemory, cfg.Ledger.Backend)
	assert.Equal(t, "scholarship", cfg.Ledger.Namespace)
	assert.Equal(t, 25000*time.Second, cfg.Ledger.TTLThreshold())
	assert.Equal(t, 25000*time.Second, cfg.Ledger.TTLExtendTo())
	assert.Equal(t, 5, cfg.Ledger.MaxTxRetries)
	assert.Equal(t, ApprovalPolicyOpen, cfg.Approval.Policy)
	assert.Equal(t, ":8080", cfg.API.Address)
	assert.Equal(t, float64(20), cfg.API.RateLimit.RequestsPerSecond)
	assert.Equal(t, "scholarship-events", cfg.Events.Elasticsearch.Index)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+`
workers:
  submit-scholarship-application:
    enabled: true
  approve-scholarship-application:
    enabled: false
    max_jobs_active: 2
`))
	require.NoError(t, err)

	submit := GetWorkerConfig(cfg, "submit-scholarship-application")
	assert.True(t, submit.Enabled)
	assert.Equal(t, 5, submit.MaxJobsActive)
	assert.Equal(t, 30000, submit.Timeout)

	assert.False(t, IsWorkerEnabled(cfg, "approve-scholarship-application"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "approve-scholarship-application").MaxJobsActive)

	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_KEYCLOAK_SECRET", "s3cret")
	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: localhost:26500
ledger:
  backend: memory
auth:
  mode: keycloak
  keycloak:
    url: http://keycloak:8080
    realm: scholarships
    client_secret: ${TEST_KEYCLOAK_SECRET}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Auth.Keycloak.ClientSecret)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "redis")
	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+`
database:
  redis:
    address: localhost:6379
`))
	require.NoError(t, err)
	assert.Equal(t, LedgerBackendRedis, cfg.Ledger.Backend)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"unknown backend", func(c *Config) { c.Ledger.Backend = "etcd" }, "ledger.backend"},
		{"redis without address", func(c *Config) { c.Ledger.Backend = LedgerBackendRedis }, "database.redis.address"},
		{"postgres without host", func(c *Config) { c.Ledger.Backend = LedgerBackendPostgres }, "database.postgres"},
		{"keycloak without url", func(c *Config) { c.Auth.Mode = AuthModeKeycloak }, "auth.keycloak"},
		{"unknown auth mode", func(c *Config) { c.Auth.Mode = "basic" }, "auth.mode"},
		{"authority without list", func(c *Config) { c.Approval.Policy = ApprovalPolicyAuthority }, "approval.authorities"},
		{"unknown policy", func(c *Config) { c.Approval.Policy = "committee" }, "approval.policy"},
		{"es sink without addresses", func(c *Config) { c.Events.Elasticsearch.Enabled = true }, "database.elasticsearch"},
		{"sns sink without topic", func(c *Config) { c.Events.SNS.Enabled = true }, "events.sns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Camunda.BrokerAddress = "localhost:26500"
			cfg.Ledger.Backend = LedgerBackendMemory
			cfg.Auth.Mode = AuthModeTrusted
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "ledger", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=ledger sslmode=disable", p.GetDSN())
}
