package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/efreitasn/matchingengine/internal/domain"
)

// Config holds all runtime configuration for the matching engine.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	WorkerCount           int           `env:"WORKER_COUNT" envDefault:"10"`
	WorkerQueueSize       int           `env:"WORKER_QUEUE_SIZE" envDefault:"1024"`
	PriceScale            uint8         `env:"PRICE_SCALE" envDefault:"2"`
	ExecutorShutdownGrace time.Duration `env:"EXECUTOR_SHUTDOWN_GRACE" envDefault:"1m"`
	BrokerShutdownGrace   time.Duration `env:"BROKER_SHUTDOWN_GRACE" envDefault:"1m"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"matching-engine.events"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file in the working directory, applies defaults and
// validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	// A missing .env file is not an error; real env vars take precedence.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d, must be between 1 and 65535", c.Port)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("invalid WORKER_COUNT: %d, must be at least 1", c.WorkerCount)
	}
	if c.WorkerQueueSize < 1 {
		return fmt.Errorf("invalid WORKER_QUEUE_SIZE: %d, must be at least 1", c.WorkerQueueSize)
	}
	if c.PriceScale > domain.MaxPriceScale {
		return fmt.Errorf("invalid PRICE_SCALE: %d, must be at most %d", c.PriceScale, domain.MaxPriceScale)
	}
	return nil
}

// KafkaEnabled reports whether events should be written to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
