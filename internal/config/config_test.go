package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, c.Env)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "app.db", c.DB.Path)
	assert.Equal(t, DevJWTSecret, c.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, RevocationNone, c.Auth.Revocation)
	assert.Equal(t, DevSessionSecret, c.Session.Secret)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yml := `
port: "9090"
log:
  level: debug
db:
  path: /tmp/from-file.db
auth:
  token_ttl: 2h
  revocation: SQLite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	t.Setenv("DATABASE_URL", "/data/env.db")
	t.Setenv("JWTSECRET", "from-env")

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "/data/env.db", c.DB.Path, "env overrides file")
	assert.Equal(t, "from-env", c.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, RevocationSQLite, c.Auth.Revocation)
}

func TestLoad_BrokenFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("port: [unclosed"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:     EnvProduction,
			Auth:    AuthConfig{JWTSecret: "jwt-prod", TokenTTL: time.Hour, Revocation: RevocationNone},
			Session: SessionConfig{Secret: "session-prod"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"dev jwt secret in production", func(c *Config) { c.Auth.JWTSecret = DevJWTSecret }, "JWTSECRET must be set"},
		{"dev session secret in production", func(c *Config) { c.Session.Secret = DevSessionSecret }, "SESSION_SECRET must be set"},
		{"dev secrets fine in development", func(c *Config) {
			c.Env = EnvDevelopment
			c.Auth.JWTSecret = DevJWTSecret
			c.Session.Secret = DevSessionSecret
		}, ""},
		{"shared secret", func(c *Config) { c.Session.Secret = c.Auth.JWTSecret }, "must differ"},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }, "is empty"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "token_ttl"},
		{"unknown revocation", func(c *Config) { c.Auth.Revocation = "memcached" }, "not one of"},
		{"redis without url", func(c *Config) { c.Auth.Revocation = RevocationRedis }, "redis.url"},
		{"redis with url", func(c *Config) {
			c.Auth.Revocation = RevocationRedis
			c.Redis.URL = "redis://localhost:6379/0"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
