package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr":    "www.example:9000",
		"database_dsn":     "costmate-dsn",
		"nats_url":         "nats://example:4222",
		"s3_access_key":    "user",
		"s3_secret_key":    "password",
		"s3_bucket":        "bucket",
		"s3_region":        "region",
		"s3_base_endpoint": "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJSON(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddr)
		assert.Equal(t, "costmate-dsn", cfg.DatabaseDSN)
		assert.Equal(t, "nats://example:4222", cfg.NatsURL)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddr:   "defaults:1234",
			DatabaseDSN:    "keep-dsn",
			NatsURL:        "keep-nats",
			S3AccessKey:    "keep-user",
			S3SecretKey:    "keep-password",
			S3Bucket:       "keep-bucket",
			S3Region:       "keep-region",
			S3BaseEndpoint: "keep-endpoint",
		}
		parseJSON(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, "keep-dsn", cfg.DatabaseDSN)
		assert.Equal(t, "keep-nats", cfg.NatsURL)
		assert.Equal(t, "keep-bucket", cfg.S3Bucket)
	})

	t.Run("empty json fields leave defaults untouched", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"database_dsn": "only-dsn",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJSON(cfg)

		assert.Equal(t, "only-dsn", cfg.DatabaseDSN)
		assert.Equal(t, ":8080", cfg.EndpointAddr)
		assert.Equal(t, "costmate", cfg.S3Bucket)
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJSON(cfg) })
	})
}
