package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration, resolved from the
// environment (and optionally a .env file loaded by the caller).
type Config struct {
	// Database
	DatabasePath string `envconfig:"DATABASE_PATH" default:"virtual_company.db"`

	// Security
	SecretKey          string `envconfig:"SECRET_KEY" default:"change-this-secret-key-in-production"`
	TokenExpireMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`

	// LLM providers
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	GoogleAPIKey     string `envconfig:"GOOGLE_API_KEY"`
	DefaultModel     string `envconfig:"DEFAULT_MODEL" default:"gpt-3.5-turbo"`

	// Server
	Host    string `envconfig:"HOST" default:"0.0.0.0"`
	Port    int    `envconfig:"PORT" default:"8000"`
	PidPath string `envconfig:"PID_PATH"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogPath  string `envconfig:"LOG_PATH"`
}

// Load resolves the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
