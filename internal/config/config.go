package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSheets   = "sheets"
	BackendDatabase = "database"
)

// AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStub   = "stub"
)

const defaultSessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"

// Config holds application configuration loaded from the environment and an
// optional .env file
type Config struct {
	Env           string `mapstructure:"ENV"`
	Port          string `mapstructure:"PORT"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`

	StoreBackend      string        `mapstructure:"STORE_BACKEND"`
	SpreadsheetID     string        `mapstructure:"SPREADSHEET_ID"`
	SheetsCredentials string        `mapstructure:"SHEETS_CREDENTIALS"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	UserCacheTTL      time.Duration `mapstructure:"USER_CACHE_TTL"`

	AIProvider    string `mapstructure:"AI_PROVIDER"`
	GoogleAPIKey  string `mapstructure:"GOOGLE_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`

	TranscribeURL   string `mapstructure:"TRANSCRIBE_URL"`
	TranscribeToken string `mapstructure:"TRANSCRIBE_TOKEN"`

	SentimentScaleMax int    `mapstructure:"SENTIMENT_SCALE_MAX"`
	HistoryLimit      int    `mapstructure:"HISTORY_LIMIT"`
	AreasFile         string `mapstructure:"AREAS_FILE"`
}

var defaults = map[string]interface{}{
	"ENV":                 "development",
	"PORT":                "8080",
	"SESSION_SECRET":      "",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "text",
	"LOG_FILE":            "",
	"STORE_BACKEND":       BackendMemory,
	"SPREADSHEET_ID":      "",
	"SHEETS_CREDENTIALS":  "",
	"DATABASE_URL":        "",
	"REDIS_URL":           "",
	"USER_CACHE_TTL":      "5m",
	"AI_PROVIDER":         ProviderStub,
	"GOOGLE_API_KEY":      "",
	"GEMINI_MODEL":        "gemini-flash-latest",
	"OPENAI_API_KEY":      "",
	"OPENAI_BASE_URL":     "",
	"OPENAI_MODEL":        "",
	"TRANSCRIBE_URL":      "",
	"TRANSCRIBE_TOKEN":    "",
	"SENTIMENT_SCALE_MAX": 10,
	"HISTORY_LIMIT":       20,
	"AREAS_FILE":          "",
}

// Load reads configuration from environment variables, falling back to a
// .env file in dir when present
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv picks it up on Unmarshal
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = defaultSessionSecret
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the settings the selected backends depend on
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSheets:
		if c.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required for the sheets backend"))
		}
	case BackendDatabase:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the database backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.AIProvider {
	case ProviderStub:
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY is required for the gemini provider"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}

	if c.SentimentScaleMax < 2 {
		errs = append(errs, fmt.Errorf("SENTIMENT_SCALE_MAX must be at least 2, got %d", c.SentimentScaleMax))
	}
	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}

	return errors.Join(errs...)
}
