package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// SecretsKey is the base64-encoded 32-byte AES key used to encrypt
	// database-instance connection strings at rest.
	SecretsKey string
	// TargetConnectTimeout bounds connection establishment to a target
	// database instance.
	TargetConnectTimeout time.Duration
	// MaxResultDocs caps how many documents a read query may return before
	// the result is truncated.
	MaxResultDocs int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		HTTPListenAddr:       getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", "access-api"),
		SecretsKey:           getEnv("SECRETS_KEY", ""),
		TargetConnectTimeout: getEnvDuration("TARGET_CONNECT_TIMEOUT", 10*time.Second),
		MaxResultDocs:        getEnvInt("MAX_RESULT_DOCS", 500),
	}

	return cfg, nil
}

// Validate checks that the settings required to run the API server are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SecretsKey == "" {
		return fmt.Errorf("SECRETS_KEY is required")
	}
	if _, err := c.DecodedSecretsKey(); err != nil {
		return err
	}
	if c.MaxResultDocs <= 0 {
		return fmt.Errorf("MAX_RESULT_DOCS must be positive")
	}
	return nil
}

// DecodedSecretsKey returns the raw AES key bytes.
func (c *Config) DecodedSecretsKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.SecretsKey)
	if err != nil {
		return nil, fmt.Errorf("SECRETS_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("SECRETS_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
