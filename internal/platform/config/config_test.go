package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "user_db.json", cfg.Store.Path)
	assert.Equal(t, "identity_records", cfg.Store.SnapshotName)
	assert.Equal(t, "biogate", cfg.Redis.KeyPrefix)
	assert.Equal(t, 5*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.AdminAPIToken)
	assert.Equal(t, 10000, cfg.AuditCapacity)
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"BIOGATE_ADDR":     ":9090",
		"STORE_BACKEND":    " Redis ",
		"REDIS_URL":        "redis://localhost:6379/0",
		"REDIS_KEY_PREFIX": "gate",
		"CAPTURE_TIMEOUT":  "250ms",
		"ADMIN_API_TOKEN":  "s3cret",
		"LOG_FORMAT":       "TEXT",
		"AUDIT_CAPACITY":   "500",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "gate", cfg.Redis.KeyPrefix)
	assert.Equal(t, 250*time.Millisecond, cfg.CaptureTimeout)
	assert.Equal(t, "s3cret", cfg.AdminAPIToken)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 500, cfg.AuditCapacity)
}

func TestFromMapValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "mongo"}, wantErr: "unknown STORE_BACKEND"},
		{name: "postgres without url", env: map[string]string{"STORE_BACKEND": "postgres"}, wantErr: "DATABASE_URL is required"},
		{name: "redis without url", env: map[string]string{"STORE_BACKEND": "redis"}, wantErr: "REDIS_URL is required"},
		{name: "sqlite without path", env: map[string]string{"STORE_BACKEND": "sqlite", "STORE_PATH": " "}, wantErr: "STORE_PATH is required"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "unknown LOG_FORMAT"},
		{name: "negative timeout", env: map[string]string{"CAPTURE_TIMEOUT": "-1s"}, wantErr: "CAPTURE_TIMEOUT"},
		{name: "zero audit capacity", env: map[string]string{"AUDIT_CAPACITY": "0"}, wantErr: "AUDIT_CAPACITY"},
		{name: "unparseable timeout", env: map[string]string{"CAPTURE_TIMEOUT": "soon"}, wantErr: "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
