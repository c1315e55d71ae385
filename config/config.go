package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string `env:"HOST" env-default:"0.0.0.0"`
	Port string `env:"PORT" env-default:"8080"`

	// Logging settings
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`

	// Gemini settings
	GeminiAPIKey          string        `env:"GEMINI_API_KEY"`
	GeminiModel           string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	EmbeddingModel        string        `env:"GEMINI_EMBEDDING_MODEL" env-default:"text-embedding-004"`
	GenerationTemperature float32       `env:"GENERATION_TEMPERATURE" env-default:"0.4"`
	GenerationTimeout     time.Duration `env:"GENERATION_TIMEOUT" env-default:"120s"`

	// Concurrency settings
	MaxConcurrentGenerations int `env:"MAX_CONCURRENT_GENERATIONS" env-default:"4"`

	// Session settings
	SessionTTL             time.Duration `env:"SESSION_TTL" env-default:"2h"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" env-default:"10m"`
	MaxSessions            int           `env:"MAX_SESSIONS" env-default:"1000"`
	PermalinkScheme        string        `env:"PERMALINK_SCHEME" env-default:"legalmitra"`

	// API settings
	APIRateLimit  int           `env:"API_RATE_LIMIT" env-default:"100"`
	APIRateWindow time.Duration `env:"API_RATE_WINDOW" env-default:"60s"`

	// Reference library settings
	DatabaseURL         string `env:"DATABASE_URL"`
	ReferenceChunkLimit int    `env:"REFERENCE_CHUNK_LIMIT" env-default:"5"`
	MaxReferenceChars   int    `env:"MAX_REFERENCE_CHARS" env-default:"30000"`

	// Upload and export settings
	MaxUploadSize  int64  `env:"MAX_UPLOAD_SIZE" env-default:"10485760"`
	MaxUploadFiles int    `env:"MAX_UPLOAD_FILES" env-default:"5"`
	MaxPDFPages    int    `env:"MAX_PDF_PAGES" env-default:"30"`
	PDFFontPath    string `env:"PDF_FONT_PATH"`

	// Storage settings
	StorageType      string `env:"STORAGE_TYPE" env-default:"local"`
	StorageLocalPath string `env:"STORAGE_LOCAL_PATH" env-default:"./storage/files"`
	S3Bucket         string `env:"AWS_S3_BUCKET"`
	S3Region         string `env:"AWS_REGION" env-default:"us-east-1"`
	AWSAccessKey     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey     string `env:"AWS_SECRET_ACCESS_KEY"`
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	if c.MaxConcurrentGenerations < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENT_GENERATIONS must be at least 1"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.MaxSessions < 1 {
		errs = append(errs, errors.New("MAX_SESSIONS must be at least 1"))
	}
	if c.APIRateLimit < 0 {
		errs = append(errs, errors.New("API_RATE_LIMIT must not be negative"))
	}
	if c.APIRateLimit > 0 && c.APIRateWindow <= 0 {
		errs = append(errs, errors.New("API_RATE_WINDOW must be positive when rate limiting is enabled"))
	}
	if c.ReferenceChunkLimit < 1 {
		errs = append(errs, errors.New("REFERENCE_CHUNK_LIMIT must be at least 1"))
	}
	if c.MaxReferenceChars < 1 {
		errs = append(errs, errors.New("MAX_REFERENCE_CHARS must be at least 1"))
	}
	if c.MaxUploadSize < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be at least 1"))
	}
	if c.MaxUploadFiles < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_FILES must be at least 1"))
	}
	if c.MaxPDFPages < 1 {
		errs = append(errs, errors.New("MAX_PDF_PAGES must be at least 1"))
	}
	if c.PermalinkScheme == "" {
		errs = append(errs, errors.New("PERMALINK_SCHEME must not be empty"))
	}
	switch c.StorageType {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("AWS_S3_BUCKET is required for s3 storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE: %s", c.StorageType))
	}

	return errors.Join(errs...)
}

// ReferenceLibraryEnabled reports whether a vector-search database is configured.
func (c *Config) ReferenceLibraryEnabled() bool {
	return c.DatabaseURL != ""
}
