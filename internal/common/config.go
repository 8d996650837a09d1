package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	SQLite     SQLiteConfig
	Extraction ExtractionConfig
	Rules      RulesConfig
	Pipeline   PipelineConfig
	Storage    StorageConfig
	Ingest     IngestConfig
	SMTP       SMTPConfig
}

// DatabaseConfig holds Postgres-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// SQLiteConfig holds the local-store configuration for the one-shot CLI.
type SQLiteConfig struct {
	Path string
}

// ExtractionConfig holds settings for the question-answering collaborator.
type ExtractionConfig struct {
	BaseURL     string
	Model       string
	APIToken    string
	Timeout     time.Duration
	Concurrency int // parallel per-field calls within one run; 1 = sequential
}

// RulesConfig holds tunable business rules for validation and decisions.
type RulesConfig struct {
	AmountThreshold float64
}

// PipelineConfig holds orchestrator timeouts and worker parallelism.
type PipelineConfig struct {
	WorkerSlots    int
	LoadTimeout    time.Duration
	ExtractTimeout time.Duration
	NotifyTimeout  time.Duration
}

// StorageConfig selects the blob store backing documents.
type StorageConfig struct {
	GCSBucket string // when set, use GCS; otherwise LocalDir
	LocalDir  string
}

// IngestConfig holds inbox-watcher settings for the daemon.
type IngestConfig struct {
	InboxDirs     []string
	MaxFileSizeMB int
}

// SMTPConfig holds outbound email settings. An empty Username means dev mode:
// notifications are logged, not sent.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "./docproc.db"),
		},
		Extraction: ExtractionConfig{
			BaseURL:     getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
			Model:       getEnv("HF_MODEL", "distilbert-base-cased-distilled-squad"),
			APIToken:    getEnv("HF_API_TOKEN", ""),
			Timeout:     getEnvAsDuration("HF_TIMEOUT", 45*time.Second),
			Concurrency: getEnvAsInt("HF_CONCURRENCY", 3),
		},
		Rules: RulesConfig{
			AmountThreshold: getEnvAsFloat64("AMOUNT_THRESHOLD", 10000.0),
		},
		Pipeline: PipelineConfig{
			WorkerSlots:    getEnvAsInt("WORKER_SLOTS", 4),
			LoadTimeout:    getEnvAsDuration("LOAD_TIMEOUT", 30*time.Second),
			ExtractTimeout: getEnvAsDuration("EXTRACT_TIMEOUT", 2*time.Minute),
			NotifyTimeout:  getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			GCSBucket: getEnv("GCS_BUCKET", ""),
			LocalDir:  getEnv("STORAGE_DIR", "./documents"),
		},
		Ingest: IngestConfig{
			InboxDirs:     splitEnvList(getEnv("INBOX_DIRS", "./inbox")),
			MaxFileSizeMB: getEnvAsInt("MAX_FILE_SIZE_MB", 50),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@docprocessor.com"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitEnvList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration for the daemon.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Extraction.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "HF_BASE_URL is required", ErrInvalidInput)
	}
	if c.Rules.AmountThreshold <= 0 {
		return NewAppError("CONFIG_ERROR", "AMOUNT_THRESHOLD must be positive", ErrInvalidInput)
	}
	if c.Pipeline.WorkerSlots <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKER_SLOTS must be positive", ErrInvalidInput)
	}
	return nil
}
