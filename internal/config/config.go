package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docoutline/internal/outline"
)

type Config struct {
	Port     string
	LogLevel string

	// Auth
	APIKey string

	// Header discovery
	LLMProvider           string // anthropic, gemini, none
	AnthropicAPIKey       string
	AnthropicModel        string
	GeminiAPIKey          string
	GeminiModel           string
	DiscoveryChunkTokens  int
	DiscoveryChunkOverlap int
	MaxConcurrentDiscover int

	// Result storage
	StoreBackend    string // none, memory, pathstore, s3
	PathstoreURL    string
	PathstoreAPIKey string
	AWSRegion       string
	AWSAccessKey    string
	AWSSecretKey    string
	S3Bucket        string
	S3Endpoint      string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Outline defaults, overridable per request
	HeaderMatch           string
	DiscoveredHeaderMatch string
	SubsectionRollover    string
	IncludeSectionTerms   bool
	MergeAdjacentEmphasis bool

	CORSOrigins []string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:     envOr("PORT", "8090"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		LLMProvider:           strings.ToLower(os.Getenv("LLM_PROVIDER")),
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:        envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		DiscoveryChunkTokens:  envInt("DISCOVERY_CHUNK_TOKENS", 6000),
		DiscoveryChunkOverlap: envInt("DISCOVERY_CHUNK_OVERLAP", 200),
		MaxConcurrentDiscover: envInt("MAX_CONCURRENT_DISCOVER", 2),

		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", "memory")),
		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		AWSAccessKey:    os.Getenv("AWS_ACCESS_KEY"),
		AWSSecretKey:    os.Getenv("AWS_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		HeaderMatch:           envOr("HEADER_MATCH", "exact"),
		DiscoveredHeaderMatch: envOr("DISCOVERED_HEADER_MATCH", "substring"),
		SubsectionRollover:    envOr("SUBSECTION_ROLLOVER", "extend"),
		IncludeSectionTerms:   envBool("INCLUDE_SECTION_TERMS", false),
		MergeAdjacentEmphasis: envBool("MERGE_ADJACENT_EMPHASIS", false),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.LLMProvider == "" {
		switch {
		case cfg.AnthropicAPIKey != "":
			cfg.LLMProvider = "anthropic"
		case cfg.GeminiAPIKey != "":
			cfg.LLMProvider = "gemini"
		default:
			cfg.LLMProvider = "none"
		}
	}
	if cfg.DiscoveryChunkTokens <= 0 {
		cfg.DiscoveryChunkTokens = 6000
	}
	if cfg.DiscoveryChunkOverlap < 0 {
		cfg.DiscoveryChunkOverlap = 200
	}
	if cfg.MaxConcurrentDiscover <= 0 {
		cfg.MaxConcurrentDiscover = 2
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for LLM_PROVIDER=anthropic")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for LLM_PROVIDER=gemini")
		}
	case "none":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StoreBackend {
	case "none", "memory":
	case "pathstore":
		if c.PathstoreURL == "" {
			return fmt.Errorf("PATHSTORE_URL is required for STORE_BACKEND=pathstore")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for STORE_BACKEND=s3")
		}
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required for STORE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if _, err := outline.ParseMatchPolicy(c.HeaderMatch); err != nil {
		return fmt.Errorf("HEADER_MATCH: %w", err)
	}
	if _, err := outline.ParseMatchPolicy(c.DiscoveredHeaderMatch); err != nil {
		return fmt.Errorf("DISCOVERED_HEADER_MATCH: %w", err)
	}
	if _, err := outline.ParseRolloverPolicy(c.SubsectionRollover); err != nil {
		return fmt.Errorf("SUBSECTION_ROLLOVER: %w", err)
	}
	return nil
}

// Match returns the policy for caller-supplied headers.
func (c Config) Match() outline.MatchPolicy {
	p, _ := outline.ParseMatchPolicy(c.HeaderMatch)
	return p
}

// DiscoveredMatch returns the policy for LLM-discovered headers.
func (c Config) DiscoveredMatch() outline.MatchPolicy {
	p, err := outline.ParseMatchPolicy(c.DiscoveredHeaderMatch)
	if err != nil {
		return outline.MatchSubstring
	}
	return p
}

func (c Config) Rollover() outline.RolloverPolicy {
	p, _ := outline.ParseRolloverPolicy(c.SubsectionRollover)
	return p
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
