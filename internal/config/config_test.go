package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "STORE_DRIVER", "MONGODB_URI",
	"MONGODB_DATABASE", "MONGODB_TIMEOUT", "SQLITE_PATH", "JWT_SECRET",
	"JWT_TTL", "BCRYPT_COST", "CORS_ORIGINS",
}

// cleanEnv blanks every key Load reads. Viper treats an empty variable as
// unset, so the defaults apply.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "0123456789abcdef") // the one required value
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "yellowipe", cfg.MongoDatabase)
	assert.Equal(t, 10*time.Second, cfg.MongoTimeout)
	assert.Equal(t, "data/yellowipe.db", cfg.SQLitePath)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/y.db")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel, "production defaults to info")
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/y.db", cfg.SQLitePath)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_LogLevel(t *testing.T) {
	cleanEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"short secret", "JWT_SECRET", "short"},
		{"unknown driver", "STORE_DRIVER", "postgres"},
		{"port out of range", "PORT", "70000"},
		{"bcrypt cost too low", "BCRYPT_COST", "2"},
		{"negative ttl", "JWT_TTL", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	cleanEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
