package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultS3Endpoint is used when AWS_S3_ENDPOINT_URL is unset.
const DefaultS3Endpoint = "s3.amazonaws.com"

// StorageConfig describes the S3-compatible object store holding uploaded assets.
type StorageConfig struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT_URL" envDefault:"s3.amazonaws.com"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	UseSSL          bool   `env:"AWS_S3_USE_SSL" envDefault:"true"`
	PublicBucket    string `env:"AWS_PUBLIC_STORAGE_BUCKET_NAME"`
	PrivateBucket   string `env:"AWS_PRIVATE_STORAGE_BUCKET_NAME"`
}

// Configured reports whether both buckets are named. The endpoint falls back
// to AWS S3.
func (s StorageConfig) Configured() bool {
	return s.PublicBucket != "" && s.PrivateBucket != ""
}

// EndpointOrDefault returns Endpoint, or DefaultS3Endpoint when it is empty.
func (s StorageConfig) EndpointOrDefault() string {
	if s.Endpoint == "" {
		return DefaultS3Endpoint
	}
	return s.Endpoint
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host        string `env:"EMAIL_HOST"`
	Port        int    `env:"EMAIL_PORT" envDefault:"587"`
	Username    string `env:"EMAIL_HOST_USER"`
	Password    string `env:"EMAIL_HOST_PASSWORD"`
	FromAddress string `env:"EMAIL_FROM"`
	Encryption  string `env:"EMAIL_ENCRYPTION" envDefault:"starttls"` // "none", "ssl", "starttls"
}

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment           string `env:"TASKLANE_ENV" envDefault:"development"`
	HTTPPort              string `env:"TASKLANE_HTTP_PORT" envDefault:"8080"`
	DatabaseDSN           string `env:"TASKLANE_DB_DSN"`
	LogDir                string `env:"TASKLANE_LOG_DIR" envDefault:"data/logs"`
	JWTSecret             string `env:"TASKLANE_JWT_SECRET" envDefault:"change-me-in-production"`
	Debug                 bool   `env:"TASKLANE_DEBUG"`
	EmailDispatchSchedule string `env:"EMAIL_DISPATCH_SCHEDULE" envDefault:"@every 1m"`

	Storage StorageConfig
	SMTP    SMTPConfig
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = filepath.Join("data", "tasklane.db")
	}

	if !IsPostgresDSN(cfg.DatabaseDSN) {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseDSN), 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	return cfg, nil
}

// IsPostgresDSN reports whether dsn points at a Postgres server rather than a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
