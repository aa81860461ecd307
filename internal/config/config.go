package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vipul43/blogforge/internal/apperr"
)

// LLM backends
const (
	LLMGemini     = "gemini"
	LLMOpenRouter = "openrouter"
	LLMOpenAI     = "openai"
	LLMTemplate   = "template"
)

// ProviderCredentials holds the OAuth client registration of one provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DatabaseURL string // optional
	RedisURL    string // optional

	OAuthStateTTL      time.Duration
	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int
	ShutdownTimeout    int // seconds

	Twitter  ProviderCredentials
	LinkedIn ProviderCredentials

	LLMProvider      string
	GeminiAPIKey     string
	GeminiModel      string
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
}

// Load reads configuration from environment variables and fails when any
// required value is missing.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		OAuthStateTTL:      time.Duration(getEnvInt("OAUTH_STATE_TTL_SECONDS", 600)) * time.Second,
		UpstreamTimeout:    time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,
		UpstreamMaxRetries: getEnvInt("UPSTREAM_MAX_RETRIES", 0),
		ShutdownTimeout:    getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 30),

		Twitter: ProviderCredentials{
			ClientID:     os.Getenv("TWITTER_CLIENT_ID"),
			ClientSecret: os.Getenv("TWITTER_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("TWITTER_REDIRECT_URI"),
		},
		LinkedIn: ProviderCredentials{
			ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("LINKEDIN_REDIRECT_URI"),
		},

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", LLMGemini)),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:  os.Getenv("OPENROUTER_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("TWITTER_CLIENT_ID", c.Twitter.ClientID)
	require("TWITTER_CLIENT_SECRET", c.Twitter.ClientSecret)
	require("TWITTER_REDIRECT_URI", c.Twitter.RedirectURI)
	require("LINKEDIN_CLIENT_ID", c.LinkedIn.ClientID)
	require("LINKEDIN_CLIENT_SECRET", c.LinkedIn.ClientSecret)
	require("LINKEDIN_REDIRECT_URI", c.LinkedIn.RedirectURI)

	switch c.LLMProvider {
	case LLMGemini:
		require("GEMINI_API_KEY", c.GeminiAPIKey)
	case LLMOpenRouter:
		require("OPENROUTER_API_KEY", c.OpenRouterAPIKey)
	case LLMOpenAI:
		require("OPENAI_API_KEY", c.OpenAIAPIKey)
	case LLMTemplate:
	default:
		return apperr.Configuration(fmt.Sprintf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}

	if len(missing) > 0 {
		return apperr.Configuration("missing required environment variables: " + strings.Join(missing, ", "))
	}
	if c.UpstreamMaxRetries < 0 {
		return apperr.Configuration("UPSTREAM_MAX_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
