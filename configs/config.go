package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Auth      AuthConfig      `toml:"auth"`
	Providers ProvidersConfig `toml:"providers"`
	Jobs      JobsConfig      `toml:"jobs"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        string `toml:"port"`
	MetricsPort string `toml:"metrics_port"`
	Env         string `toml:"env"`
	LogLevel    string `toml:"log_level"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig holds Redis configuration. An empty URL disables caching.
type RedisConfig struct {
	URL        string `toml:"url"`
	QuoteTTL   string `toml:"quote_ttl"`
	HistoryTTL string `toml:"history_ttl"`
}

// GetQuoteTTL parses and returns the quote cache TTL
func (c *RedisConfig) GetQuoteTTL() time.Duration {
	return parseDuration(c.QuoteTTL, 5*time.Minute)
}

// GetHistoryTTL parses and returns the price history cache TTL
func (c *RedisConfig) GetHistoryTTL() time.Duration {
	return parseDuration(c.HistoryTTL, 24*time.Hour)
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"`
}

// GetTokenTTL parses and returns the token lifetime
func (c *AuthConfig) GetTokenTTL() time.Duration {
	return parseDuration(c.TokenTTL, 24*time.Hour)
}

// ProvidersConfig holds remote provider credentials. An empty key skips that provider.
type ProvidersConfig struct {
	AlphaVantageKey string `toml:"alpha_vantage_key"`
	FinnhubKey      string `toml:"finnhub_key"`
	NewsAPIKey      string `toml:"news_api_key"`
	GroqKey         string `toml:"groq_key"`
	GroqModel       string `toml:"groq_model"`
	GeminiKey       string `toml:"gemini_key"`
	GeminiModel     string `toml:"gemini_model"`
	Timeout         string `toml:"timeout"`
}

// GetTimeout parses and returns the per-provider timeout
func (c *ProvidersConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 5*time.Second)
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	QuoteWarmSchedule string `toml:"quote_warm_schedule"`
	SeedDemoUser      bool   `toml:"seed_demo_user"`
}

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			MetricsPort: "9090",
			Env:         EnvDevelopment,
			LogLevel:    "info",
		},
		Redis: RedisConfig{
			QuoteTTL:   "5m",
			HistoryTTL: "24h",
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Providers: ProvidersConfig{
			GroqModel:   "llama3-8b-8192",
			GeminiModel: "gemini-2.0-flash",
			Timeout:     "5s",
		},
		Jobs: JobsConfig{
			QuoteWarmSchedule: "*/5 * * * *",
		},
	}
}

// Load loads configuration: defaults, then the TOML file named by CONFIG_FILE, then environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.MetricsPort = getEnv("METRICS_PORT", c.Server.MetricsPort)
	c.Server.Env = getEnv("GO_ENV", c.Server.Env)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Providers.AlphaVantageKey = getEnv("ALPHA_VANTAGE_API_KEY", c.Providers.AlphaVantageKey)
	c.Providers.FinnhubKey = getEnv("FINNHUB_API_KEY", c.Providers.FinnhubKey)
	c.Providers.NewsAPIKey = getEnv("NEWS_API_KEY", c.Providers.NewsAPIKey)
	c.Providers.GroqKey = getEnv("GROQ_API_KEY", c.Providers.GroqKey)
	c.Providers.GroqModel = getEnv("GROQ_MODEL", c.Providers.GroqModel)
	c.Providers.GeminiKey = getEnv("GEMINI_API_KEY", c.Providers.GeminiKey)
	c.Providers.GeminiModel = getEnv("GEMINI_MODEL", c.Providers.GeminiModel)

	c.Providers.Timeout = getEnv("PROVIDER_TIMEOUT", c.Providers.Timeout)

	c.Redis.QuoteTTL = getEnv("QUOTE_CACHE_TTL", c.Redis.QuoteTTL)
	c.Redis.HistoryTTL = getEnv("HISTORY_CACHE_TTL", c.Redis.HistoryTTL)
	c.Auth.TokenTTL = getEnv("TOKEN_TTL", c.Auth.TokenTTL)

	c.Jobs.QuoteWarmSchedule = getEnv("QUOTE_WARM_SCHEDULE", c.Jobs.QuoteWarmSchedule)

	if v := os.Getenv("SEED_DEMO_USER"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEED_DEMO_USER %q: %w", v, err)
		}
		c.Jobs.SeedDemoUser = seed
	}

	return nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	for key, value := range map[string]string{
		"PROVIDER_TIMEOUT":  c.Providers.Timeout,
		"QUOTE_CACHE_TTL":   c.Redis.QuoteTTL,
		"HISTORY_CACHE_TTL": c.Redis.HistoryTTL,
		"TOKEN_TTL":         c.Auth.TokenTTL,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
		}
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// JWTSecretOrDefault returns the signing secret, with a development fallback
func (c *Config) JWTSecretOrDefault() string {
	if c.Auth.JWTSecret == "" {
		return "default-secret-change-in-production" // Fallback for development
	}
	return c.Auth.JWTSecret
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
