// Package config loads the configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/envelope-zero/ledger/internal/money"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slices"
)

// Config is the configuration of the ledger service.
type Config struct {
	// HTTP
	APIURL           url.URL  `env:"API_URL,required"`
	Port             string   `env:"PORT" envDefault:"8080"`
	GinMode          string   `env:"GIN_MODE" envDefault:"release"`
	LogFormat        string   `env:"LOG_FORMAT"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:" "`
	EnablePprof      bool     `env:"ENABLE_PPROF"`

	// Database
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"data/ledger.db?_pragma=busy_timeout(5000)"`

	// Ledger
	Currency         string        `env:"LEDGER_CURRENCY" envDefault:"EUR"`
	DefaultEnvelopes []string      `env:"LEDGER_DEFAULT_ENVELOPES" envDefault:"Food,Rent,Savings" envSeparator:","`
	NotifyURI        string        `env:"LEDGER_NOTIFY_URI" envDefault:"ledger://envelopes"`
	ReplayInterval   time.Duration `env:"LEDGER_REPLAY_INTERVAL" envDefault:"1h"`

	// Notifications
	AMQPURL      string   `env:"AMQP_URL"`
	AMQPExchange string   `env:"AMQP_EXCHANGE" envDefault:"ledger"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"ledger-changes"`
	RedisAddr    string   `env:"REDIS_ADDR"`
	RedisChannel string   `env:"REDIS_CHANNEL" envDefault:"ledger-changes"`

	// Tracing
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Drivers lists the supported database drivers.
var Drivers = []string{"sqlite", "mysql"}

// Load reads the given .env files, if they exist, and then parses the
// configuration from the environment. Variables already set in the
// environment take precedence over the files.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.Validate()
}

// LedgerCurrency returns the parsed ledger currency.
func (c Config) LedgerCurrency() (money.Currency, error) {
	return money.ParseCurrency(c.Currency)
}

// Validate validates the configuration and returns an error if invalid
func (c Config) Validate() error {
	var errs []string

	if c.APIURL.Scheme != "http" && c.APIURL.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid API_URL '%s': scheme must be 'http' or 'https'", c.APIURL.String()))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(Drivers, c.DBDriver) {
		errs = append(errs, fmt.Sprintf("invalid database driver '%s': must be one of %v", c.DBDriver, Drivers))
	}

	if c.DBDSN == "" {
		errs = append(errs, "database DSN cannot be empty")
	}

	if _, err := c.LedgerCurrency(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.ReplayInterval < 0 {
		errs = append(errs, fmt.Sprintf("invalid replay interval %v: must not be negative", c.ReplayInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, "Kafka topic cannot be empty when Kafka brokers are provided")
	}

	if c.RedisAddr != "" && c.RedisChannel == "" {
		errs = append(errs, "Redis channel cannot be empty when Redis address is provided")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
