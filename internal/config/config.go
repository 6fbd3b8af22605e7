// Package config loads the server configuration from the environment.
//
// SOURCES, in order of precedence:
//  1. real environment variables
//  2. a .env file in the working directory, if there is one
//  3. the defaults below
//
// Load validates the result, so a bad value stops the server at startup
// instead of surfacing as a confusing failure later.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// MinJWTSecretLength matches what auth.NewTokenService enforces.
const MinJWTSecretLength = 16

// Config is the full server configuration.
type Config struct {
	Port        int
	Environment string
	LogLevel    slog.Level

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration
	SQLitePath    string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	CORSOrigins []string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env (optional) and the environment into a Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 3001)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "yellowipe")
	v.SetDefault("MONGODB_TIMEOUT", "10s")
	v.SetDefault("SQLITE_PATH", "data/yellowipe.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetInt("PORT"),
		Environment:   strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		StoreDriver:   strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),
		MongoTimeout:  v.GetDuration("MONGODB_TIMEOUT"),
		SQLitePath:    v.GetString("SQLITE_PATH"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTTTL:        v.GetDuration("JWT_TTL"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
	}

	level, err := parseLevel(v.GetString("LOG_LEVEL"), cfg.Environment)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGODB_DATABASE is required when STORE_DRIVER=mongo"))
		}
		if c.MongoTimeout <= 0 {
			errs = append(errs, errors.New("MONGODB_TIMEOUT must be a positive duration"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverSQLite, c.StoreDriver))
	}

	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be a positive duration"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// parseLevel reads LOG_LEVEL; empty means debug in development and info
// everywhere else.
func parseLevel(raw, env string) (slog.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "development" {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
