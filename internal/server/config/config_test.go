package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8080", c.HTTPAddress)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, time.Hour, c.TokenValidityDuration)
	assert.Equal(t, uint32(64*1024), c.Argon2MemoryKiB)
	assert.Equal(t, 15*time.Minute, c.ImageURLValidityDuration)

	c.SecretKey = strongSecret
	assert.NoError(t, c.Validate())
}

func TestValidate_SecretKey(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr string
	}{
		{"placeholder", DefaultSecretKey, "built-in placeholder"},
		{"too short", "short-secret", "at least 32 bytes"},
		{"one byte short", strongSecret[:MinSecretKeyLen-1], "at least 32 bytes"},
		{"minimum length", strongSecret, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			c.SecretKey = tt.secret

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RejectsPlaceholderSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", DefaultSecretKey)

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in placeholder")
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.SecretKey = ""
	c.TokenValidityDuration = 0

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret key is empty")
	assert.Contains(t, err.Error(), "token validity must be positive")
}

func TestParseFlags(t *testing.T) {
	c := defaults()
	args := []string{
		"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-t", "5", "-l", "debug",
		"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		"-c", "ignored.json",
	}
	require.NoError(t, parseFlags(c, args))

	want := defaults()
	want.HTTPAddress = "127.0.0.1:9090"
	want.DatabaseDSN = "db"
	want.SecretKey = "secret"
	want.TokenValidityDuration = 5 * time.Minute
	want.LogLevel = "debug"
	want.S3RootUser = "user"
	want.S3RootPassword = "password"
	want.S3Bucket = "bucket"
	want.S3Region = "us-west-1"
	want.S3BaseEndpoint = "http://endpoint"

	assert.Empty(t, cmp.Diff(want, c))
}

func TestParseFlags_KeepsSubMinuteTTLWithoutFlag(t *testing.T) {
	c := defaults()
	c.TokenValidityDuration = 30 * time.Second
	require.NoError(t, parseFlags(c, []string{"-a", ":1"}))
	assert.Equal(t, 30*time.Second, c.TokenValidityDuration)
}

func TestParseJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_address":            "www.example:9000",
		"secret_key":              "my_secret_key",
		"token_validity_duration": "30m",
		"argon2_threads":          2,
		"s3_bucket":               "bucket",
	})

	c := defaults()
	require.NoError(t, parseJSON(c, []string{"-config", path}))

	assert.Equal(t, "www.example:9000", c.HTTPAddress)
	assert.Equal(t, "my_secret_key", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.TokenValidityDuration)
	assert.Equal(t, uint8(2), c.Argon2Threads)
	assert.Equal(t, "bucket", c.S3Bucket)
	// keys absent from the file keep their previous value
	assert.Equal(t, defaults().DatabaseDSN, c.DatabaseDSN)
}

func TestParseJSON_NoFile(t *testing.T) {
	c := defaults()
	require.NoError(t, parseJSON(c, nil))
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestParseJSON_Invalid(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	assert.Error(t, parseJSON(defaults(), []string{"-c", bad}))
	assert.Error(t, parseJSON(defaults(), []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("TOKEN_TTL", "90s")
	t.Setenv("AUTH_RATE_LIMIT", "0")

	c := defaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, 90*time.Second, c.TokenValidityDuration)
	assert.Equal(t, 0, c.AuthRateLimit)
	assert.Equal(t, ":8080", c.HTTPAddress)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"secret_key":   "from-json",
		"http_address": ":7000",
		"database_dsn": "json-dsn",
	})
	t.Setenv("SECRET_KEY", strongSecret)
	t.Setenv("HTTP_ADDRESS", ":7001")

	c, err := Load([]string{"-c", path, "-a", ":7002"})
	require.NoError(t, err)

	assert.Equal(t, "json-dsn", c.DatabaseDSN)
	assert.Equal(t, strongSecret, c.SecretKey)
	assert.Equal(t, ":7002", c.HTTPAddress)
}

func TestLoad_RejectsEmptySecret(t *testing.T) {
	_, err := Load([]string{"-s", ""})
	require.Error(t, err)
}
