// Package config loads process configuration from the environment and the
// optional unit catalog file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/villa-booking/internal/database"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/repository"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// App is the full process configuration.
type App struct {
	Env      string `envconfig:"ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"memory"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName      string `envconfig:"DB_NAME" default:"villa"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RabbitURL           string `envconfig:"RABBIT_URL"`
	ReservationExchange string `envconfig:"RESERVATION_EXCHANGE" default:"villa.reservations"`
	OutboxBuffer        int    `envconfig:"OUTBOX_BUFFER" default:"256"`

	LocalCurrency       string        `envconfig:"LOCAL_CURRENCY" default:"ARS"`
	DefaultExchangeRate float64       `envconfig:"DEFAULT_EXCHANGE_RATE" default:"1000"`
	RateSourceURL       string        `envconfig:"RATE_SOURCE_URL" default:"https://open.er-api.com/v6/latest/USD"`
	RateRefresh         time.Duration `envconfig:"RATE_REFRESH_INTERVAL" default:"1h"`

	UnitsFile    string `envconfig:"UNITS_FILE"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env if present and then the environment.
func Load() (App, error) {
	_ = godotenv.Load(".env")

	var c App
	if err := envconfig.Process("", &c); err != nil {
		return App{}, fmt.Errorf("process env: %w", err)
	}
	if err := c.validate(); err != nil {
		return App{}, err
	}
	return c, nil
}

func (c App) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.DefaultExchangeRate <= 0 {
		return fmt.Errorf("config: DEFAULT_EXCHANGE_RATE must be positive")
	}
	if c.RateRefresh <= 0 {
		return fmt.Errorf("config: RATE_REFRESH_INTERVAL must be positive")
	}
	if c.OutboxBuffer <= 0 {
		return fmt.Errorf("config: OUTBOX_BUFFER must be positive")
	}
	return nil
}

// Database returns the Postgres settings.
func (c App) Database() database.Config {
	return database.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
		MaxConns: c.DBMaxConns,
	}
}

// Redis returns the rate cache settings.
func (c App) Redis() repository.RedisConfig {
	return repository.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: 4,
	}
}

type unitsFile struct {
	Units []model.Unit `yaml:"units"`
}

// LoadUnits reads a YAML unit catalog. Environment references like ${VAR}
// are expanded before parsing.
func LoadUnits(path string) ([]model.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units file: %w", err)
	}
	var f unitsFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse units file: %w", err)
	}
	if len(f.Units) == 0 {
		return nil, fmt.Errorf("units file %s defines no units", path)
	}
	return f.Units, nil
}
