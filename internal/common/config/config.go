// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Ledger   LedgerConfig            `mapstructure:"ledger"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Auth     AuthConfig              `mapstructure:"auth"`
	Approval ApprovalConfig          `mapstructure:"approval"`
	Events   EventsConfig            `mapstructure:"events"`
	API      APIConfig               `mapstructure:"api"`
	Registry RegistryConfig          `mapstructure:"registry"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

const (
	LedgerBackendMemory   = "memory"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

// LedgerConfig selects where scholarship state lives and how long it is kept alive.
type LedgerConfig struct {
	Backend             string `mapstructure:"backend"`
	Namespace           string `mapstructure:"namespace"`
	TTLThresholdSeconds int    `mapstructure:"ttl_threshold_seconds"`
	TTLExtendToSeconds  int    `mapstructure:"ttl_extend_to_seconds"`
	MaxTxRetries        int    `mapstructure:"max_tx_retries"`
	AutoMigrate         bool   `mapstructure:"auto_migrate"`
}

func (l LedgerConfig) TTLThreshold() time.Duration {
	return time.Duration(l.TTLThresholdSeconds) * time.Second
}

func (l LedgerConfig) TTLExtendTo() time.Duration {
	return time.Duration(l.TTLExtendToSeconds) * time.Second
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

const (
	AuthModeKeycloak = "keycloak"
	AuthModeTrusted  = "trusted"
)

// AuthConfig decides how applicant and approver tokens are verified.
type AuthConfig struct {
	Mode     string `mapstructure:"mode"`
	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"keycloak"`
}

const (
	ApprovalPolicyOpen      = "open"
	ApprovalPolicyAuthority = "authority"
)

type ApprovalConfig struct {
	Policy      string   `mapstructure:"policy"`
	Authorities []string `mapstructure:"authorities"`
}

// EventsConfig lists the sinks that receive committed ledger events.
type EventsConfig struct {
	Log           bool `mapstructure:"log"`
	Elasticsearch struct {
		Enabled bool   `mapstructure:"enabled"`
		Index   string `mapstructure:"index"`
	} `mapstructure:"elasticsearch"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type APIConfig struct {
	Address   string `mapstructure:"address"`
	RateLimit struct {
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
		Burst             int     `mapstructure:"burst"`
		IdleTTLSeconds    int     `mapstructure:"idle_ttl_seconds"`
	} `mapstructure:"rate_limit"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
