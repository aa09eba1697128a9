// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AIConfig provides settings for the LLM classification collaborator.
type AIConfig interface {
	GetLLMProvider() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetOpenAIModel() string
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetClassifyTimeout() time.Duration
}

// SinkConfig provides settings for outbound lead sinks.
// An empty sink URL disables that sink rather than being an error.
type SinkConfig interface {
	GetCRMSinkURL() string
	GetSalesTrackerURL() string
	GetSinkTimeout() time.Duration
}

// SchedulerConfig provides settings for the follow-up task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
}

// WhatsAppConfig provides settings for the WhatsApp follow-up channel.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// Providers supported for the classification collaborator.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Env              string
	HTTPAddr         string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	LLMProvider      string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	ClassifyTimeout  time.Duration
	CRMSinkURL       string
	SalesTrackerURL  string
	SinkTimeout      time.Duration
	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueue       string
	WhatsAppURL      string
	WhatsAppKey      string
	WhatsAppDeviceID string
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClassifyTimeout:  mustDuration(getEnv("CLASSIFY_TIMEOUT", "15s")),
		CRMSinkURL:       getEnv("CRM_SINK_URL", ""),
		SalesTrackerURL:  getEnv("SALES_TRACKER_URL", ""),
		SinkTimeout:      mustDuration(getEnv("SINK_TIMEOUT", "10s")),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueue:       getEnv("ASYNQ_QUEUE", "default"),
		WhatsAppURL:      getEnv("WHATSAPP_API_URL", ""),
		WhatsAppKey:      getEnv("WHATSAPP_API_KEY", ""),
		WhatsAppDeviceID: getEnv("WHATSAPP_DEVICE_ID", ""),
	}

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is %q", ProviderOpenAI)
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER is %q", ProviderGemini)
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// HTTPConfig implementation

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// AIConfig implementation

func (c *Config) GetLLMProvider() string            { return c.LLMProvider }
func (c *Config) GetOpenAIAPIKey() string           { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string          { return c.OpenAIBaseURL }
func (c *Config) GetOpenAIModel() string            { return c.OpenAIModel }
func (c *Config) GetGeminiAPIKey() string           { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string            { return c.GeminiModel }
func (c *Config) GetClassifyTimeout() time.Duration { return c.ClassifyTimeout }

// SinkConfig implementation

func (c *Config) GetCRMSinkURL() string         { return c.CRMSinkURL }
func (c *Config) GetSalesTrackerURL() string    { return c.SalesTrackerURL }
func (c *Config) GetSinkTimeout() time.Duration { return c.SinkTimeout }

// SchedulerConfig implementation

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueue }

// WhatsAppConfig implementation

func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
