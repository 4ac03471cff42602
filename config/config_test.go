package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "APP_ENV", "DB_HOST", "REDIS_DB", "KAFKA_BROKERS", "HTTP_CLIENT_TIMEOUT",
		"RATE_LIMIT", "CORS_ALLOWED_ORIGINS", "DEFAULT_TIMEZONE", "DEFAULT_LANGUAGE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:4173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "UTC", cfg.DefaultTimezone)
	assert.Equal(t, "en", cfg.DefaultLanguage)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://expo.example.com")
	t.Setenv("DEFAULT_TIMEZONE", "Europe/Istanbul")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, []string{"https://expo.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "Europe/Istanbul", cfg.DefaultTimezone)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "-5s")

	cfg := Load()
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout)
}
