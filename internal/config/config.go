package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"dms/internal/logger"
	"dms/internal/store"
)

// Config is the process configuration.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseDriver string
	DatabaseDSN    string
	MaxOpenConns   int
	StoreTimeout   time.Duration
	BcryptCost     int
	RabbitMQURL    string
	EventsExchange string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper reads configuration through v, applying defaults for every key.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", store.DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=dms port=5432 sslmode=disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "directory.events")
	v.AutomaticEnv()

	cfg := Config{
		Port:           v.GetString("APP_PORT"),
		Env:            strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		MaxOpenConns:   v.GetInt("DATABASE_MAX_OPEN_CONNS"),
		StoreTimeout:   v.GetDuration("STORE_TIMEOUT"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		EventsExchange: v.GetString("EVENTS_EXCHANGE"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = logger.DefaultLevel(cfg.Env)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the process cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case store.DriverPostgres, store.DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", store.DriverPostgres, store.DriverSQLite, c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.StoreTimeout < 0 {
		return fmt.Errorf("STORE_TIMEOUT must not be negative")
	}
	return nil
}

// Store returns the store settings.
func (c Config) Store() store.Config {
	return store.Config{
		Driver:       c.DatabaseDriver,
		DSN:          c.DatabaseDSN,
		MaxOpenConns: c.MaxOpenConns,
		Timeout:      c.StoreTimeout,
	}
}

// Logger returns the logger settings.
func (c Config) Logger() logger.Config {
	return logger.Config{Env: c.Env, Level: c.LogLevel, Service: "dms"}
}
