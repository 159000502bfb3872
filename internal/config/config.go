// Package config loads server settings from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/robalobadob/arg-server/internal/generator"
)

// Config holds every setting the server reads.
type Config struct {
	Port     string `envconfig:"PORT" default:"5175"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Story generator
	GeneratorProvider string        `envconfig:"GENERATOR_PROVIDER" default:"gemini"`
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"90s"`

	// Storage. An empty DBPath disables the game archive; an empty RedisAddr
	// keeps sessions in memory.
	DBPath        string        `envconfig:"DB_PATH" default:"./data/arg.db"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// HTTP
	JWTSecret       string `envconfig:"JWT_SECRET" default:"dev_secret_change_me"`
	ClientOrigin    string `envconfig:"CLIENT_ORIGIN" default:"http://localhost:5173"`
	SecureCookies   bool   `envconfig:"SECURE_COOKIES" default:"false"`
	RedactSolutions bool   `envconfig:"REDACT_SOLUTIONS" default:"false"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.GenerationTimeout <= 0 {
		return nil, fmt.Errorf("load config: GENERATION_TIMEOUT must be positive, got %s", cfg.GenerationTimeout)
	}
	return &cfg, nil
}

// Generator returns the generator settings.
func (c *Config) Generator() generator.Config {
	return generator.Config{
		Provider:      c.GeneratorProvider,
		GeminiAPIKey:  c.GeminiAPIKey,
		GeminiModel:   c.GeminiModel,
		OpenAIAPIKey:  c.OpenAIAPIKey,
		OpenAIModel:   c.OpenAIModel,
		OpenAIBaseURL: c.OpenAIBaseURL,
	}
}
