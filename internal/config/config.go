// Package config loads the orderd runtime configuration from flags, an
// optional config file, and ORDERFLOW_-prefixed environment variables.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration for orderd.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	DBPath      string

	// RedisAddr selects the idempotency store. Empty means the in-process
	// guard, which is only safe for single-node development.
	RedisAddr      string
	IdempotencyTTL time.Duration

	// KafkaBrokers enables the order event side channel when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// IdentityEndpoint is the provider's userinfo URL. Empty switches the
	// service to the static dev verifier.
	IdentityEndpoint string

	LogLevel slog.Level
}

// Load resolves configuration from the given viper instance, filling in
// defaults for anything unset.
func Load(v *viper.Viper) Config {
	v.SetDefault("http-addr", ":8080")
	v.SetDefault("metrics-addr", ":9100")
	v.SetDefault("db-path", "data/orderflow.db")
	v.SetDefault("idempotency-ttl", 24*time.Hour)
	v.SetDefault("kafka-topic", "order.placed")
	v.SetDefault("log-level", "info")

	return Config{
		HTTPAddr:         v.GetString("http-addr"),
		MetricsAddr:      v.GetString("metrics-addr"),
		DBPath:           v.GetString("db-path"),
		RedisAddr:        v.GetString("redis-addr"),
		IdempotencyTTL:   v.GetDuration("idempotency-ttl"),
		KafkaBrokers:     splitList(v.GetString("kafka-brokers")),
		KafkaTopic:       v.GetString("kafka-topic"),
		IdentityEndpoint: v.GetString("identity-endpoint"),
		LogLevel:         parseLevel(v.GetString("log-level")),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
