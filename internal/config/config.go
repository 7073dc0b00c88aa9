// Package config provides configuration management for the paper library service.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Postgres sslmode values. Disable is for local development only.
const (
	SSLModeDisable    = "disable"
	SSLModeRequire    = "require"
	SSLModeVerifyCA   = "verify-ca"
	SSLModeVerifyFull = "verify-full"
)

// Blob store backends.
const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
)

// envPrefix is prepended to every environment variable the service reads.
const envPrefix = "PAPERLIB"

// Config holds all configuration for the paper library service.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth AuthConfig `mapstructure:"auth"`
	// Vault contains the key used to seal publisher credentials.
	Vault VaultConfig `mapstructure:"vault"`
	Temporal TemporalConfig `mapstructure:"temporal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	// LLM contains chat and summarization provider settings.
	LLM LLMConfig `mapstructure:"llm"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	Redis RedisConfig `mapstructure:"redis"`
	BlobStore BlobStoreConfig `mapstructure:"blob_store"`
	// PDF contains PDF upload and download limits.
	PDF PDFConfig `mapstructure:"pdf"`
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	Mail MailConfig `mapstructure:"mail"`
	// Maintenance contains scheduled cleanup settings for the worker.
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	HTTPPort int `mapstructure:"http_port"`
	MetricsPort int `mapstructure:"metrics_port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSAllowedOrigins lists the origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host string `mapstructure:"host"`
	Port int `mapstructure:"port"`
	User string `mapstructure:"user"`
	// Password is the database password (loaded from PAPERLIB_DATABASE_PASSWORD).
	Password string `mapstructure:"-"`
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca, verify-full, disable).
	SSLMode string `mapstructure:"ssl_mode"`
	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files (relative or absolute).
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup (default: false).
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	// JWTSecret signs HS256 tokens (loaded from PAPERLIB_AUTH_JWT_SECRET).
	JWTSecret string `mapstructure:"-"`
	// Issuer is written to and required in the iss claim.
	Issuer string `mapstructure:"issuer"`
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

// VaultConfig holds the publisher credential sealing key.
type VaultConfig struct {
	// Key is a base64-encoded 32-byte key (loaded from PAPERLIB_VAULT_KEY).
	Key string `mapstructure:"-"`
}

// TemporalConfig holds Temporal workflow configuration.
type TemporalConfig struct {
	// Enabled controls whether the API server dials Temporal for PDF acquisition.
	Enabled bool `mapstructure:"enabled"`
	HostPort string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	// TaskQueue is the task queue name for PDF acquisition workflows.
	TaskQueue string `mapstructure:"task_queue"`
	// MaxConcurrentDownloads bounds activities, and with them PDF downloads,
	// running at once on one worker.
	MaxConcurrentDownloads int `mapstructure:"max_concurrent_downloads"`
	// MaxConcurrentWorkflowTasks bounds workflow tasks running at once on one worker.
	MaxConcurrentWorkflowTasks int `mapstructure:"max_concurrent_workflow_tasks"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is a zerolog level name.
	Level string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	AddSource bool `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Path string `mapstructure:"path"`
}

// LLMConfig holds chat and summarization settings.
type LLMConfig struct {
	// Enabled toggles the chat and summary endpoints.
	Enabled bool `mapstructure:"enabled"`
	// Provider is the LLM provider (openai, anthropic).
	Provider string `mapstructure:"provider"`
	// Timeout is the timeout for a single LLM API call.
	Timeout time.Duration `mapstructure:"timeout"`
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps the completion length.
	MaxTokens int `mapstructure:"max_tokens"`
	// BreakerFailures is the consecutive failure count that opens the circuit.
	BreakerFailures uint32 `mapstructure:"breaker_failures"`
	// BreakerCooldown is how long the circuit stays open before probing.
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
	OpenAI ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
}

// ProviderConfig holds settings for a single LLM provider.
type ProviderConfig struct {
	// APIKey is loaded from PAPERLIB_LLM_<PROVIDER>_API_KEY.
	APIKey string `mapstructure:"-"`
	Model string `mapstructure:"model"`
	// BaseURL is the API base URL (for custom endpoints).
	BaseURL string `mapstructure:"base_url"`
}

// KafkaConfig holds domain event publisher settings.
type KafkaConfig struct {
	// Enabled controls whether Kafka publishing is active.
	Enabled bool `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	// Topic is the Kafka topic domain events are written to.
	Topic string `mapstructure:"topic"`
	// BatchSize is the maximum number of messages to batch before sending.
	BatchSize int `mapstructure:"batch_size"`
	// BatchTimeout is the maximum time to wait for a batch to fill before sending.
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	// WriteTimeout bounds a single publish.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig holds metadata cache settings.
type RedisConfig struct {
	// Enabled controls whether metadata lookups are cached.
	Enabled bool `mapstructure:"enabled"`
	Addr string `mapstructure:"addr"`
	// Password is loaded from PAPERLIB_REDIS_PASSWORD.
	Password string `mapstructure:"-"`
	DB int `mapstructure:"db"`
	// TTL is how long resolved metadata stays cached.
	TTL time.Duration `mapstructure:"ttl"`
}

// BlobStoreConfig holds PDF storage settings.
type BlobStoreConfig struct {
	// Backend is "local" or "s3".
	Backend string `mapstructure:"backend"`
	// LocalDir is the root directory for the local backend.
	LocalDir string `mapstructure:"local_dir"`
	// S3 contains S3-compatible object storage settings.
	S3 S3Config `mapstructure:"s3"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	// Bucket is the bucket PDFs are written to.
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	// Endpoint overrides the S3 endpoint (MinIO, R2, ...).
	Endpoint string `mapstructure:"endpoint"`
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool `mapstructure:"use_path_style"`
	// AccessKeyID is loaded from PAPERLIB_BLOB_STORE_S3_ACCESS_KEY_ID.
	AccessKeyID string `mapstructure:"-"`
	// SecretAccessKey is loaded from PAPERLIB_BLOB_STORE_S3_SECRET_ACCESS_KEY.
	SecretAccessKey string `mapstructure:"-"`
}

// PDFConfig holds PDF limits.
type PDFConfig struct {
	// MaxSizeBytes caps uploads and downloads.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	// DownloadTimeout bounds a single remote download.
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// PaperSourcesConfig holds configuration for all metadata source APIs.
type PaperSourcesConfig struct {
	SemanticScholar PaperSourceConfig `mapstructure:"semantic_scholar"`
	OpenAlex PaperSourceConfig `mapstructure:"openalex"`
	ArXiv PaperSourceConfig `mapstructure:"arxiv"`
	Unpaywall PaperSourceConfig `mapstructure:"unpaywall"`
	// ContactEmail is sent to APIs that ask for a polite-pool e-mail.
	ContactEmail string `mapstructure:"contact_email"`
}

// PaperSourceConfig holds configuration for a single metadata source API.
type PaperSourceConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// APIKey is loaded from PAPERLIB_PAPER_SOURCES_<SOURCE>_API_KEY.
	APIKey string `mapstructure:"-"`
	BaseURL string `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is requests per second, shared by all callers.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// MailConfig holds SMTP settings for acquisition notifications.
type MailConfig struct {
	// Enabled toggles e-mail notifications.
	Enabled bool `mapstructure:"enabled"`
	Host string `mapstructure:"host"`
	Port int `mapstructure:"port"`
	Username string `mapstructure:"username"`
	// Password is loaded from PAPERLIB_MAIL_PASSWORD.
	Password string `mapstructure:"-"`
	From string `mapstructure:"from"`
}

// MaintenanceConfig holds worker cleanup settings.
type MaintenanceConfig struct {
	// Enabled toggles the cron scheduler in the worker.
	Enabled bool `mapstructure:"enabled"`
	// DownloadLogSchedule is the cron spec for download log pruning.
	DownloadLogSchedule string `mapstructure:"download_log_schedule"`
	// DownloadLogRetention is how long download logs are kept.
	DownloadLogRetention time.Duration `mapstructure:"download_log_retention"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// VaultKey decodes the base64 vault key.
func (c *VaultConfig) VaultKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.Key)
	if err != nil {
		return nil, fmt.Errorf("vault key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("vault key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Load loads configuration from a .env file, environment variables and config files.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paper-library-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets use mapstructure:"-" so they can only come from the environment.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func secretEnv(name string) string {
	return os.Getenv(envPrefix + "_" + name)
}

// loadSecrets populates secret fields exclusively from environment variables.
func loadSecrets(cfg *Config) {
	cfg.Database.Password = secretEnv("DATABASE_PASSWORD")
	cfg.Auth.JWTSecret = secretEnv("AUTH_JWT_SECRET")
	cfg.Vault.Key = secretEnv("VAULT_KEY")
	cfg.Redis.Password = secretEnv("REDIS_PASSWORD")
	cfg.Mail.Password = secretEnv("MAIL_PASSWORD")

	cfg.LLM.OpenAI.APIKey = secretEnv("LLM_OPENAI_API_KEY")
	cfg.LLM.Anthropic.APIKey = secretEnv("LLM_ANTHROPIC_API_KEY")

	cfg.BlobStore.S3.AccessKeyID = secretEnv("BLOB_STORE_S3_ACCESS_KEY_ID")
	cfg.BlobStore.S3.SecretAccessKey = secretEnv("BLOB_STORE_S3_SECRET_ACCESS_KEY")

	cfg.PaperSources.SemanticScholar.APIKey = secretEnv("PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
	cfg.PaperSources.OpenAlex.APIKey = secretEnv("PAPER_SOURCES_OPENALEX_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "paperlib")
	v.SetDefault("database.name", "paper_library")
	// Use PAPERLIB_DATABASE_SSL_MODE=disable for local development.
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)

	// Auth defaults
	v.SetDefault("auth.issuer", "paper-library-service")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.bcrypt_cost", 12)

	// Temporal defaults
	v.SetDefault("temporal.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "paper-library")
	v.SetDefault("temporal.task_queue", "pdf-acquisition")
	v.SetDefault("temporal.max_concurrent_downloads", 20)
	v.SetDefault("temporal.max_concurrent_workflow_tasks", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// LLM defaults
	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.breaker_failures", 5)
	v.SetDefault("llm.breaker_cooldown", "30s")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("llm.anthropic.base_url", "https://api.anthropic.com")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "events.paper_library")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "10ms")
	v.SetDefault("kafka.write_timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "168h")

	// Blob store defaults
	v.SetDefault("blob_store.backend", BlobBackendLocal)
	v.SetDefault("blob_store.local_dir", "data/pdfs")
	v.SetDefault("blob_store.s3.bucket", "")
	v.SetDefault("blob_store.s3.region", "us-east-1")
	v.SetDefault("blob_store.s3.endpoint", "")
	v.SetDefault("blob_store.s3.use_path_style", false)

	// PDF defaults
	v.SetDefault("pdf.max_size_bytes", 50*1024*1024)
	v.SetDefault("pdf.download_timeout", "60s")

	// Paper sources defaults. API keys come from the environment (see loadSecrets).
	v.SetDefault("paper_sources.contact_email", "")
	v.SetDefault("paper_sources.semantic_scholar.enabled", true)
	v.SetDefault("paper_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.semantic_scholar.timeout", "15s")
	v.SetDefault("paper_sources.semantic_scholar.rate_limit", 1.0)

	v.SetDefault("paper_sources.openalex.enabled", true)
	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.timeout", "15s")
	v.SetDefault("paper_sources.openalex.rate_limit", 10.0)

	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("paper_sources.arxiv.timeout", "15s")
	v.SetDefault("paper_sources.arxiv.rate_limit", 0.33) // arXiv asks for one request every 3 seconds

	v.SetDefault("paper_sources.unpaywall.enabled", true)
	v.SetDefault("paper_sources.unpaywall.base_url", "https://api.unpaywall.org/v2")
	v.SetDefault("paper_sources.unpaywall.timeout", "15s")
	v.SetDefault("paper_sources.unpaywall.rate_limit", 5.0)

	// Mail defaults
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.from", "paper-library@localhost")

	// Maintenance defaults
	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.download_log_schedule", "0 3 * * *")
	v.SetDefault("maintenance.download_log_retention", "2160h")
}

// Validate reports every invalid setting at once, joined with errors.Join.
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}
	validPort := func(p int) bool { return p > 0 && p <= 65535 }

	check(validPort(c.Server.HTTPPort), "invalid HTTP port: %d", c.Server.HTTPPort)
	check(validPort(c.Server.MetricsPort), "invalid metrics port: %d", c.Server.MetricsPort)

	check(c.Database.Host != "", "database host is required")
	check(validPort(c.Database.Port), "invalid database port: %d", c.Database.Port)
	check(c.Database.Name != "", "database name is required")
	check(c.Database.MaxConns >= c.Database.MinConns,
		"max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		check(false, "invalid log level: %s", c.Logging.Level)
	}

	check(len(c.Auth.JWTSecret) >= 32, "%s_AUTH_JWT_SECRET must be at least 32 characters", envPrefix)
	check(c.Auth.TokenTTL > 0, "auth token_ttl must be positive")
	if _, err := c.Vault.VaultKey(); err != nil {
		check(false, "%s_VAULT_KEY: %w", envPrefix, err)
	}

	switch c.BlobStore.Backend {
	case BlobBackendLocal:
		check(c.BlobStore.LocalDir != "", "blob_store.local_dir is required for the local backend")
	case BlobBackendS3:
		check(c.BlobStore.S3.Bucket != "", "blob_store.s3.bucket is required for the s3 backend")
	default:
		check(false, "invalid blob store backend: %q", c.BlobStore.Backend)
	}

	check(c.Temporal.TaskQueue != "", "temporal task_queue is required")
	check(c.Temporal.MaxConcurrentDownloads > 0 && c.Temporal.MaxConcurrentWorkflowTasks > 0,
		"temporal worker concurrency limits must be positive")
	check(c.PDF.MaxSizeBytes > 0, "pdf max_size_bytes must be positive")
	check(!c.Kafka.Enabled || len(c.Kafka.Brokers) > 0, "kafka brokers are required when kafka is enabled")
	check(!c.Mail.Enabled || c.Mail.Host != "", "mail host is required when mail is enabled")

	if c.LLM.Enabled {
		switch strings.ToLower(c.LLM.Provider) {
		case "openai":
			check(c.LLM.OpenAI.APIKey != "", "LLM provider %q requires %s_LLM_OPENAI_API_KEY to be set", c.LLM.Provider, envPrefix)
		case "anthropic":
			check(c.LLM.Anthropic.APIKey != "", "LLM provider %q requires %s_LLM_ANTHROPIC_API_KEY to be set", c.LLM.Provider, envPrefix)
		default:
			check(false, "unsupported LLM provider: %q", c.LLM.Provider)
		}
	}

	return errors.Join(problems...)
}
