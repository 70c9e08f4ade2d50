// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Input       InputConfig
	Output      OutputConfig
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Server      ServerConfig
	Logging     LoggingConfig
}

// InputConfig holds raw dataset settings.
type InputConfig struct {
	// Dir is the directory holding the raw olist_*_dataset.csv files (default: dados_brutos)
	Dir string `env:"INPUT_DIR" default:"dados_brutos"`

	// TranslationSource is the category translation table name, without extension
	TranslationSource string `env:"TRANSLATION_SOURCE" default:"product_category_name_translation"`

	// MaxFileSize is the maximum accepted raw file size in bytes (default: 1GB)
	MaxFileSize int64 `env:"INPUT_MAX_FILE_SIZE" default:"1073741824"`
}

// OutputConfig holds cleaned dataset settings.
type OutputConfig struct {
	// Dir is the directory cleaned tables are written to (default: dados_limpos)
	Dir string `env:"OUTPUT_DIR" default:"dados_limpos"`

	// Compression is applied to file and object outputs: none, gzip or zstd (default: none)
	Compression string `env:"OUTPUT_COMPRESSION" default:"none"`
}

// DatabaseConfig holds optional PostgreSQL sink settings.
// The sink is disabled when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Schema receives the cleaned tables (default: olist)
	Schema string `env:"DB_SCHEMA" default:"olist"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// Enabled reports whether the PostgreSQL sink is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ObjectStoreConfig holds optional S3-compatible sink settings.
// The sink is disabled when Endpoint is empty.
type ObjectStoreConfig struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Bucket    string `env:"S3_BUCKET"`
	Prefix    string `env:"S3_PREFIX" default:"dados_limpos"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	UseSSL    bool   `env:"S3_USE_SSL" default:"true"`
}

// Enabled reports whether the object store sink is configured.
func (c ObjectStoreConfig) Enabled() bool {
	return c.Endpoint != ""
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including an active run (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RunTimeout is the maximum duration of one pipeline run (default: 30m)
	RunTimeout time.Duration `env:"RUN_TIMEOUT" default:"30m"`

	// TrustedProxies lists CIDRs whose X-Real-IP/X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys, when set, are required in X-API-Key to start a run
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
