package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "APP_ENV", "STORE_BACKEND", "DATABASE_DRIVER", "DATABASE_URL",
		"JWT_SECRET", "TOKEN_TTL", "GOOGLE_CLIENT_ID", "AUTH_TEST_MODE",
		"CORS_ALLOWED_ORIGINS", "CORS_ALLOW_CREDENTIALS", "LOGIN_RATE_PER_MINUTE",
		"LOGIN_RATE_BURST", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":   "secret",
		"DATABASE_URL": "postgres://localhost/diary",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, BackendGorm, cfg.StoreBackend)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 20, cfg.LoginRatePerMinute)
	assert.Equal(t, 5, cfg.LoginRateBurst)
	assert.False(t, cfg.AuthTestMode)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_ParsesLists(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":           "secret",
		"STORE_BACKEND":        "memory",
		"CORS_ALLOWED_ORIGINS": " http://a.test , ,http://b.test",
		"TOKEN_TTL":            "24h",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing secret",
			env:  map[string]string{"STORE_BACKEND": "memory"},
			want: "JWT_SECRET",
		},
		{
			name: "missing database url",
			env:  map[string]string{"JWT_SECRET": "s"},
			want: "DATABASE_URL",
		},
		{
			name: "unknown backend",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "mongo"},
			want: "STORE_BACKEND",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "x", "DATABASE_DRIVER": "mysql"},
			want: "DATABASE_DRIVER",
		},
		{
			name: "test mode in production",
			env: map[string]string{
				"JWT_SECRET": "s", "STORE_BACKEND": "memory",
				"APP_ENV": "production", "AUTH_TEST_MODE": "true",
			},
			want: "AUTH_TEST_MODE",
		},
		{
			name: "bad ttl",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory", "TOKEN_TTL": "soon"},
			want: "TOKEN_TTL",
		},
		{
			name: "bad rate",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_BACKEND": "memory", "LOGIN_RATE_BURST": "-1"},
			want: "LOGIN_RATE_BURST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
