package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReader_Defaults(t *testing.T) {
	t.Setenv("ENV", EnvLocal)

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.Equal(t, "todo", cfg.Mongo.Database)
	assert.Equal(t, "todos", cfg.Mongo.Collection)
	assert.Equal(t, "todos", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.NATS.URL)
}

func TestEnvReader_Overrides(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,https://todo.example.com")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://todo.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
}

func TestEnvReader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown env", env: map[string]string{"ENV": "staging"}},
		{name: "unknown driver", env: map[string]string{"ENV": EnvDev, "STORE_DRIVER": "sqlite"}},
		{name: "origin without scheme", env: map[string]string{"ENV": EnvDev, "CORS_ALLOWED_ORIGINS": "localhost:5173"}},
		{name: "one bad origin", env: map[string]string{"ENV": EnvDev, "CORS_ALLOWED_ORIGINS": "http://localhost:5173,example.com"}},
		{name: "wildcard subdomain", env: map[string]string{"ENV": EnvDev, "CORS_ALLOWED_ORIGINS": "https://*.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewEnvReader().Read()
			assert.Error(t, err)
		})
	}
}
