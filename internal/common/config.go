package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Annotate    AnnotateConfig    `toml:"annotate"`
	QA          QAConfig          `toml:"qa"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Claude      ClaudeConfig      `toml:"claude"`
	LLM         LLMConfig         `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Format     string   `toml:"format" validate:"oneof=text json"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// AnnotateConfig controls the difficult-word annotation pass and the
// definition service.
type AnnotateConfig struct {
	MinWordLength  int     `toml:"min_word_length" validate:"min=1"` // Tokens shorter than this are never difficult
	CacheFallbacks bool    `toml:"cache_fallbacks"`                  // Persist the fallback string when the explain call fails
	Model          string  `toml:"model"`                            // Model for explain calls (empty = provider default)
	MaxTokens      int     `toml:"max_tokens" validate:"min=1"`      // Max output length for one definition
	Temperature    float32 `toml:"temperature"`
}

// QAConfig controls page embedding and retrieval-augmented answering.
type QAConfig struct {
	ChunkWords  int     `toml:"chunk_words" validate:"min=50"` // Approximate per-chunk word budget
	TopK        int     `toml:"top_k" validate:"min=1"`        // Chunks included in the grounded prompt
	Model       string  `toml:"model"`                         // Model for grounded chat calls (empty = provider default)
	Temperature float32 `toml:"temperature"`
}

// MaintenanceConfig contains the scheduled storage maintenance settings.
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format (with seconds)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`         // Google Gemini API key
	Model          string  `toml:"model"`           // Model for chat/explain operations
	EmbedModel     string  `toml:"embed_model"`     // Model for embedding generation
	EmbedDimension int     `toml:"embed_dimension"` // Output dimensionality for embeddings
	RateLimit      string  `toml:"rate_limit"`      // Minimum interval between requests, duration string
	Timeout        string  `toml:"timeout"`         // Operation timeout as duration string
	Temperature    float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`    // Anthropic API key
	Model       string  `toml:"model"`      // Model for chat/explain operations
	MaxTokens   int     `toml:"max_tokens"` // Maximum tokens in response
	RateLimit   string  `toml:"rate_limit"` // Minimum interval between requests, duration string
	Timeout     string  `toml:"timeout"`    // Operation timeout as duration string
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here; only user-facing settings
// should be exposed in lexia.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Annotate: AnnotateConfig{
			MinWordLength:  4,    // Shorter tokens are never worth explaining
			CacheFallbacks: true, // Set false to retry failed lookups instead of caching the fallback
			Model:          "",
			MaxTokens:      60,
			Temperature:    0.2,
		},
		QA: QAConfig{
			ChunkWords:  400,
			TopK:        4,
			Model:       "",
			Temperature: 0.2,
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "0 0 */6 * * *", // Every 6 hours
		},
		Gemini: GeminiConfig{
			APIKey:         "",
			Model:          "gemini-3-flash-preview",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			RateLimit:      "4s", // 15 RPM free tier
			Timeout:        "2m",
			Temperature:    0.2,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1024,
			RateLimit:   "1s",
			Timeout:     "2m",
			Temperature: 0.2,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env.
// Later config files override earlier ones. Missing files are an error; an empty
// path list returns defaults plus env overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct validation tags
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LEXIA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("LEXIA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LEXIA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("LEXIA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("LEXIA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LEXIA_LOG_OUTPUT"); output != "" {
		parts := strings.Split(output, ",")
		outputs := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if key := os.Getenv("LEXIA_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("LEXIA_ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	if provider := os.Getenv("LEXIA_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
