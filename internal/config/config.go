package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port          string `env:"PORT" envDefault:"3000"`
	StaticDir     string `env:"BUTU_STATIC_DIR" envDefault:"./public"`
	AllowedOrigin string `env:"BUTU_ALLOWED_ORIGIN" envDefault:"*"`
	MaxBodyBytes  int64  `env:"BUTU_MAX_BODY_BYTES" envDefault:"16777216"`

	// Logging
	LogLevel  string `env:"BUTU_LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"BUTU_LOG_PRETTY" envDefault:"false"`

	// Assistant
	Persona string `env:"BUTU_PERSONA" envDefault:"Butu"`
	UseMock bool   `env:"BUTU_USE_MOCK" envDefault:"false"`

	Provider ProviderConfig `envPrefix:"OPENROUTER_"`
}

// ProviderConfig holds the upstream chat-completions settings.
type ProviderConfig struct {
	APIKey      string        `env:"API_KEY"`
	BaseURL     string        `env:"BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model       string        `env:"MODEL" envDefault:"openai/gpt-4o"`
	Temperature float64       `env:"TEMPERATURE" envDefault:"0.4"`
	MaxTokens   int64         `env:"MAX_TOKENS" envDefault:"500"`
	Referer     string        `env:"REFERER" envDefault:"http://localhost:3000"`
	Title       string        `env:"TITLE" envDefault:"Butu AI Vision Chatbot"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("BUTU_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("OPENROUTER_TEMPERATURE must be within [0,2], got %g", c.Provider.Temperature)
	}
	if c.Provider.MaxTokens <= 0 {
		return fmt.Errorf("OPENROUTER_MAX_TOKENS must be positive, got %d", c.Provider.MaxTokens)
	}
	return nil
}

// MockProvider reports whether the offline provider should be used.
func (c *Config) MockProvider() bool {
	return c.UseMock || c.Provider.APIKey == ""
}
