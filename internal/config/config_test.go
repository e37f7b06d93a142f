package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(viper.New())

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "data/orderflow.db", cfg.DBPath)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Nil(t, cfg.KafkaBrokers)
	assert.Equal(t, "order.placed", cfg.KafkaTopic)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("http-addr", ":9999")
	v.Set("redis-addr", "localhost:6379")
	v.Set("kafka-brokers", "broker1:9092, broker2:9092 ,")
	v.Set("idempotency-ttl", "1h")
	v.Set("log-level", "debug")

	cfg := Load(v)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
