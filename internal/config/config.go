package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	FatSecret   FatSecretConfig
	Performance PerformanceConfig
	Logging     LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Environment   string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort      string        `env:"HTTP_SERVER_PORT" envDefault:"8000"`
	GRPCPort      string        `env:"GRPC_SERVER_PORT" envDefault:"50051"`
	GRPCEnabled   bool          `env:"GRPC_ENABLED" envDefault:"true"`
	ServerTimeout time.Duration `env:"SERVER_TIMEOUT" envDefault:"15s"`
}

// FatSecretConfig holds FatSecret platform credentials and endpoints
type FatSecretConfig struct {
	ClientID     string `env:"FATSECRET_CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"FATSECRET_CLIENT_SECRET,required,notEmpty"`
	TokenURL     string `env:"FATSECRET_TOKEN_URL" envDefault:"https://oauth.fatsecret.com/connect/token"`
	SearchURL    string `env:"FATSECRET_SEARCH_URL" envDefault:"https://platform.fatsecret.com/rest/server.api"`
	Scope        string `env:"FATSECRET_SCOPE" envDefault:"basic"`
}

// PerformanceConfig holds upstream timeouts and token reuse settings
type PerformanceConfig struct {
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	TokenCacheEnabled bool          `env:"TOKEN_CACHE_ENABLED" envDefault:"false"`
	TokenExpirySkew   time.Duration `env:"TOKEN_EXPIRY_SKEW" envDefault:"30s"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// ConfigurationError reports configuration that prevents the service from starting.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

const defaultEnvFile = ".env"

// Load loads configuration from the given .env files and the process
// environment. Process variables take precedence over file entries. With no
// files given, a .env in the working directory is used when present.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			files = []string{defaultEnvFile}
		}
	}

	environment := map[string]string{}
	if len(files) > 0 {
		fileEnv, err := godotenv.Read(files...)
		if err != nil {
			return nil, &ConfigurationError{Err: fmt.Errorf("reading env files: %w", err)}
		}
		environment = fileEnv
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environment[k] = v
		}
	}

	config := &Config{}
	if err := env.ParseWithOptions(config, env.Options{Environment: environment}); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if strings.TrimSpace(c.FatSecret.ClientID) == "" || strings.TrimSpace(c.FatSecret.ClientSecret) == "" {
		return &ConfigurationError{Err: errors.New("FATSECRET_CLIENT_ID and FATSECRET_CLIENT_SECRET must be set")}
	}

	if c.Performance.UpstreamTimeout <= 0 {
		return &ConfigurationError{Err: errors.New("UPSTREAM_TIMEOUT must be positive")}
	}

	if c.Server.ServerTimeout <= 0 {
		return &ConfigurationError{Err: errors.New("SERVER_TIMEOUT must be positive")}
	}

	if c.Performance.TokenExpirySkew < 0 {
		return &ConfigurationError{Err: errors.New("TOKEN_EXPIRY_SKEW cannot be negative")}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return &ConfigurationError{Err: fmt.Errorf("unsupported LOG_FORMAT %q (valid: json, console)", c.Logging.Format)}
	}

	return nil
}

// HTTPAddr returns the listen address of the HTTP server
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%s", c.Server.HTTPPort)
}

// GRPCAddr returns the listen address of the gRPC server
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%s", c.Server.GRPCPort)
}
