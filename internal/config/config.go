// Package config loads runtime settings from configs/config.yml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	RevocationNone   = "none"
	RevocationSQLite = "sqlite"
	RevocationRedis  = "redis"

	// Development defaults. Validate rejects them in production.
	DevJWTSecret     = "dev-jwt-secret-change-me"
	DevSessionSecret = "dev-session-secret-change-me"
)

type Config struct {
	Env     string        `mapstructure:"env"`
	Port    string        `mapstructure:"port"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	Revocation    string        `mapstructure:"revocation"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type SessionConfig struct {
	Secret       string `mapstructure:"secret"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"env":                   "APP_ENV",
	"port":                  "PORT",
	"log.level":             "LOG_LEVEL",
	"db.path":               "DATABASE_URL",
	"auth.jwt_secret":       "JWTSECRET",
	"auth.revocation":       "TOKEN_REVOCATION",
	"session.secret":        "SESSION_SECRET",
	"session.secure_cookie": "SECURE_COOKIE",
	"redis.url":             "REDIS_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.revocation", RevocationNone)
	v.SetDefault("auth.purge_interval", time.Hour)
	v.SetDefault("session.secret", DevSessionSecret)
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from dir when present, applies environment overrides
// and validates the result.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Auth.Revocation = strings.ToLower(strings.TrimSpace(cfg.Auth.Revocation))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Validate checks settings that would make the server unsafe or unable to start.
func (c *Config) Validate() error {
	var problems []string

	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (JWTSECRET) is empty")
	}
	if c.Session.Secret == "" {
		problems = append(problems, "session.secret (SESSION_SECRET) is empty")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be positive")
	}
	switch c.Auth.Revocation {
	case RevocationNone, RevocationSQLite:
	case RevocationRedis:
		if c.Redis.URL == "" {
			problems = append(problems, "redis.url (REDIS_URL) is required for redis revocation")
		}
	default:
		problems = append(problems, fmt.Sprintf("auth.revocation %q is not one of none, sqlite, redis", c.Auth.Revocation))
	}

	if c.IsProduction() {
		if c.Auth.JWTSecret == DevJWTSecret {
			problems = append(problems, "JWTSECRET must be set in production")
		}
		if c.Session.Secret == DevSessionSecret {
			problems = append(problems, "SESSION_SECRET must be set in production")
		}
		if c.Auth.JWTSecret != "" && c.Auth.JWTSecret == c.Session.Secret {
			problems = append(problems, "JWTSECRET and SESSION_SECRET must differ")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
