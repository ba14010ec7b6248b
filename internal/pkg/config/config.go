package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the value shipped in the sample .env file.
const PlaceholderAPIKey = "your_google_ai_api_key_here"

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8091"`
	ServiceName  string        `env:"SERVICE_NAME" envDefault:"triply"`
	MetricsAddr  string        `env:"METRICS_ADDR" envDefault:":9092"`
	OTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"otel-collector:4318"`
	EnablePprof  bool          `env:"ENABLE_PPROF" envDefault:"false"`
	PprofAddr    string        `env:"PPROF_ADDR" envDefault:"localhost:6060"`
	ItineraryTTL time.Duration `env:"ITINERARY_TTL" envDefault:"30m"`
}

type AIConfig struct {
	APIKey      string  `env:"GOOGLE_AI_API_KEY"`
	Model       string  `env:"AI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	Temperature float32 `env:"AI_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int32   `env:"AI_MAX_TOKENS" envDefault:"8192"`
}

// Configured reports whether a usable API key is present.
func (c AIConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

type GeocodingConfig struct {
	BaseURL     string        `env:"GEOCODING_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent   string        `env:"GEOCODING_USER_AGENT" envDefault:"Triply/1.0 (travel planning app)"`
	Language    string        `env:"GEOCODING_LANGUAGE" envDefault:"en"`
	FeatureType string        `env:"GEOCODING_FEATURE_TYPE" envDefault:"city"`
	Timeout     time.Duration `env:"GEOCODING_TIMEOUT" envDefault:"10s"`
	// RateLimit is requests per second across the process. Nominatim's
	// public instance allows one. Zero disables throttling.
	RateLimit float64 `env:"GEOCODING_RATE_LIMIT" envDefault:"1"`
}

type SearchConfig struct {
	DebounceDelay  time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	MinQueryLength int           `env:"SEARCH_MIN_QUERY_LENGTH" envDefault:"2"`
	MaxResults     int           `env:"SEARCH_MAX_RESULTS" envDefault:"10"`
}

type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Geocoding GeocodingConfig
	Search    SearchConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Search.MinQueryLength < 1 {
		return nil, fmt.Errorf("SEARCH_MIN_QUERY_LENGTH must be at least 1, got %d", cfg.Search.MinQueryLength)
	}
	if cfg.Search.MaxResults < 1 {
		return nil, fmt.Errorf("SEARCH_MAX_RESULTS must be at least 1, got %d", cfg.Search.MaxResults)
	}
	if cfg.Geocoding.RateLimit < 0 {
		return nil, fmt.Errorf("GEOCODING_RATE_LIMIT must not be negative, got %g", cfg.Geocoding.RateLimit)
	}
	if cfg.AI.MaxTokens < 1 {
		return nil, fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", cfg.AI.MaxTokens)
	}

	return cfg, nil
}
