package config

import (
	"encoding/base64"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("TARGET_CONNECT_TIMEOUT")
	os.Unsetenv("MAX_RESULT_DOCS")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "access-api", cfg.ServiceName)
	assert.Equal(t, 10*time.Second, cfg.TargetConnectTimeout)
	assert.Equal(t, 500, cfg.MaxResultDocs)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://core:5432/accessdb")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SECRETS_KEY", testKey())
	t.Setenv("TARGET_CONNECT_TIMEOUT", "3s")
	t.Setenv("MAX_RESULT_DOCS", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://core:5432/accessdb", cfg.DatabaseURL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.TargetConnectTimeout)
	assert.Equal(t, 42, cfg.MaxResultDocs)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{SecretsKey: testKey(), MaxResultDocs: 10}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_MissingSecretsKey(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/db", MaxResultDocs: 10}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRETS_KEY")
}

func TestValidate_BadSecretsKey(t *testing.T) {
	cfg := &Config{
		DatabaseURL:   "postgres://localhost/db",
		SecretsKey:    base64.StdEncoding.EncodeToString([]byte("short")),
		MaxResultDocs: 10,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestValidate_OK(t *testing.T) {
	cfg := &Config{
		DatabaseURL:   "postgres://localhost/db",
		SecretsKey:    testKey(),
		MaxResultDocs: 10,
	}
	require.NoError(t, cfg.Validate())

	key, err := cfg.DecodedSecretsKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
