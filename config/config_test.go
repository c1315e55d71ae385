package config

import (
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "legalmitra", cfg.PermalinkScheme)
	assert.Equal(t, 30, cfg.MaxPDFPages)
	assert.Equal(t, "local", cfg.StorageType)
	assert.False(t, cfg.ReferenceLibraryEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GENERATION_TIMEOUT", "45s")
	t.Setenv("MAX_CONCURRENT_GENERATIONS", "2")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/library")

	var cfg Config
	require.NoError(t, cleanenv.ReadEnv(&cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 2, cfg.MaxConcurrentGenerations)
	assert.True(t, cfg.ReferenceLibraryEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		require.NoError(t, cleanenv.ReadEnv(&cfg))
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero timeout", func(c *Config) { c.GenerationTimeout = 0 }},
		{"no generation slots", func(c *Config) { c.MaxConcurrentGenerations = 0 }},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"s3 without bucket", func(c *Config) { c.StorageType = "s3"; c.S3Bucket = "" }},
		{"unknown storage", func(c *Config) { c.StorageType = "ftp" }},
		{"empty scheme", func(c *Config) { c.PermalinkScheme = "" }},
		{"rate limit without window", func(c *Config) { c.APIRateLimit = 10; c.APIRateWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
