package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// DatabaseURL is a postgres:// URL or an SQLite DSN.
	DatabaseURL string `envconfig:"DATABASE_URL" default:"polypore.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`

	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"20s"`
	SweepEnabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`

	TimelineDefaultDays int `envconfig:"TIMELINE_DEFAULT_DAYS" default:"90"`
	TxMaxRetries        int `envconfig:"TX_MAX_RETRIES" default:"3"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"polypore.reservations"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"polypore.reservations"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv decodes and validates the process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.CORSAllowedOrigins = trimAll(cfg.CORSAllowedOrigins)
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s sweep=%t/%v amqp=%t kafka=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.SweepEnabled, cfg.SweepInterval, cfg.AMQPURL != "", len(cfg.KafkaBrokers) > 0)
	return &cfg, nil
}

func (c *Config) IsProdLike() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be > 0")
	}
	if cfg.TimelineDefaultDays < 1 || cfg.TimelineDefaultDays > 365 {
		return fmt.Errorf("TIMELINE_DEFAULT_DAYS must be between 1 and 365")
	}
	if cfg.TxMaxRetries < 1 {
		return fmt.Errorf("TX_MAX_RETRIES must be >= 1")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if len(cfg.KafkaBrokers) > 0 && strings.TrimSpace(cfg.KafkaTopic) == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}

	if cfg.IsProdLike() && isEmptyOrDefault(cfg.JWTSecret, DefaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
