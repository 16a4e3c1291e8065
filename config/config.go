package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config is read from the environment. Variable names match the ones the
// frontend deployment already sets, so no prefix is used.
type Config struct {
	Port        int    `envconfig:"PORT" default:"3001"`
	Environment string `envconfig:"NODE_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"nutribalance"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`

	OpenRouterAPIKey  string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel   string `envconfig:"OPENROUTER_MODEL" default:"openai/gpt-4o"`
	OpenRouterBaseURL string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`

	EdamamAppID   string `envconfig:"EDAMAM_APP_ID"`
	EdamamAppKey  string `envconfig:"EDAMAM_APP_KEY"`
	EdamamBaseURL string `envconfig:"EDAMAM_BASE_URL" default:"https://api.edamam.com"`

	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`

	RateLimitWindowMS    int `envconfig:"RATE_LIMIT_WINDOW_MS" default:"900000"`
	RateLimitMaxRequests int `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`

	AWSRegion      string `envconfig:"AWS_REGION"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	CloudFrontURL  string `envconfig:"CLOUDFRONT_URL"`
	SNSPlatformARN string `envconfig:"SNS_PLATFORM_ARN"`
	SESEmail       string `envconfig:"SES_EMAIL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	// ENVIRONMENT wins over NODE_ENV when both are set.
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	log.Debug().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Bool("database_url_present", cfg.DatabaseURL != "").
		Bool("openrouter_configured", cfg.OpenRouterAPIKey != "").
		Bool("edamam_configured", cfg.EdamamConfigured()).
		Str("aws_region", cfg.AWSRegion).
		Msg("configuration loaded")

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("SUPABASE_JWT_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.RateLimitWindowMS <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_MS must be positive, got %d", c.RateLimitWindowMS)
	}
	if c.RateLimitMaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive, got %d", c.RateLimitMaxRequests)
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from
// the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

func (c *Config) EdamamConfigured() bool { return c.EdamamAppID != "" && c.EdamamAppKey != "" }

func (c *Config) AWSConfigured() bool { return c.AWSRegion != "" }

func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
