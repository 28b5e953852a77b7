// Package config builds the application configuration from an optional YAML
// file overlaid with environment variables, so main stays lean and deploys
// can use either mechanism.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Points   PointsConfig   `yaml:"points"`
}

// ServerConfig governs HTTP server behaviour.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PostgresConfig describes connectivity to the relational store. An empty URL
// selects the in-memory stores (dev mode).
type PostgresConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig describes the reward-catalog cache. An empty URL disables it.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// KafkaConfig describes the audit event sink. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig holds token issuing and verification settings.
type AuthConfig struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// PointsConfig names the award policy applied when a collection is processed.
// Policy is "flat" (every processed residue is worth FlatAward) or "weight"
// (round(weight * WeightFactor), falling back to FlatAward for unit-only
// residues).
type PointsConfig struct {
	Policy       string `yaml:"policy"`
	FlatAward    int    `yaml:"flat_award"`
	WeightFactor int    `yaml:"weight_factor"`
}

// Defaults returns the development configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 10,
		},
		Redis: RedisConfig{
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic: "recircle.audit",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			JWTSigningKey: "dev-secret-key-change-in-production",
			TokenTTL:      24 * time.Hour,
		},
		Points: PointsConfig{
			Policy:       "flat",
			FlatAward:    10,
			WeightFactor: 10,
		},
	}
}

// Load builds the config from defaults, an optional YAML file named by
// RECIRCLE_CONFIG, and environment variable overrides, in that order.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("RECIRCLE_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "RECIRCLE_ADDR")
	setDuration(&cfg.Server.ShutdownTimeout, "RECIRCLE_SHUTDOWN_TIMEOUT")
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setInt(&cfg.Postgres.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setDuration(&cfg.Redis.CacheTTL, "REDIS_CACHE_TTL")
	setString(&cfg.Kafka.Topic, "KAFKA_AUDIT_TOPIC")
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Auth.JWTSigningKey, "JWT_SIGNING_KEY")
	setDuration(&cfg.Auth.TokenTTL, "JWT_TOKEN_TTL")
	setString(&cfg.Points.Policy, "POINTS_AWARD_POLICY")
	setInt(&cfg.Points.FlatAward, "POINTS_FLAT_AWARD")
	setInt(&cfg.Points.WeightFactor, "POINTS_WEIGHT_FACTOR")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
