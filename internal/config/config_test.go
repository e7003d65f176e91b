package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/outline"
)

var configEnv = []string{
	"PORT", "LOG_LEVEL", "DOCOUTLINE_API_KEY", "LLM_PROVIDER",
	"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "STORE_BACKEND", "PATHSTORE_URL",
	"S3_BUCKET", "AWS_REGION", "WORKER_COUNT", "JOB_TTL", "HEADER_MATCH",
	"DISCOVERED_HEADER_MATCH", "SUBSECTION_ROLLOVER", "CORS_ORIGINS",
	"INCLUDE_SECTION_TERMS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "none", cfg.LLMProvider)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, outline.MatchExact, cfg.Match())
	assert.Equal(t, outline.MatchSubstring, cfg.DiscoveredMatch())
	assert.Equal(t, outline.RolloverExtend, cfg.Rollover())
	assert.False(t, cfg.IncludeSectionTerms)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SUBSECTION_ROLLOVER", "body")
	t.Setenv("INCLUDE_SECTION_TERMS", "true")
	cfg := Load()

	assert.Equal(t, "gemini", cfg.LLMProvider, "provider follows the configured key")
	assert.Equal(t, 4, cfg.WorkerCount, "non-positive worker count falls back")
	assert.Equal(t, 90*time.Second, cfg.JobTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, outline.RolloverBody, cfg.Rollover())
	assert.True(t, cfg.IncludeSectionTerms)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			APIKey:                "k",
			LLMProvider:           "none",
			StoreBackend:          "memory",
			HeaderMatch:           "exact",
			DiscoveredHeaderMatch: "substring",
			SubsectionRollover:    "extend",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "DOCOUTLINE_API_KEY"},
		{"anthropic without key", func(c *Config) { c.LLMProvider = "anthropic" }, "ANTHROPIC_API_KEY"},
		{"gemini without key", func(c *Config) { c.LLMProvider = "gemini" }, "GEMINI_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "openai" }, "LLM_PROVIDER"},
		{"pathstore without url", func(c *Config) { c.StoreBackend = "pathstore" }, "PATHSTORE_URL"},
		{"s3 without bucket", func(c *Config) { c.StoreBackend = "s3"; c.AWSRegion = "us-east-1" }, "S3_BUCKET"},
		{"s3 without region", func(c *Config) { c.StoreBackend = "s3"; c.S3Bucket = "b" }, "AWS_REGION"},
		{"unknown store", func(c *Config) { c.StoreBackend = "redis" }, "STORE_BACKEND"},
		{"bad match", func(c *Config) { c.HeaderMatch = "fuzzy" }, "HEADER_MATCH"},
		{"bad rollover", func(c *Config) { c.SubsectionRollover = "wrap" }, "SUBSECTION_ROLLOVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", Config{LogLevel: "debug"}.SlogLevel().String())
	assert.Equal(t, "INFO", Config{LogLevel: "chatty"}.SlogLevel().String())
}
