package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config is the process configuration. It is loaded once at startup and
// handed to constructors; nothing reads viper after Load returns.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Billing  BillingConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string // sqlite file
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig carries the signing secret and hashing cost. The secret is fixed
// for the lifetime of the process.
type AuthConfig struct {
	SecretKey     string
	TokenValidity time.Duration
	BcryptCost    int
}

// BillingConfig holds the defaults applied to new accounts and clients.
type BillingConfig struct {
	DefaultTaxRate   decimal.Decimal
	DefaultCurrency  string
	InvoicePrefix    string
	PaymentTermsDays int
	DefaultCountry   string
}

type LogConfig struct {
	Level       string
	Development bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	minSecretLength = 16
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", []string{"https://*", "http://*"})

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "minidebet")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "minidebet.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.token_validity_hours", 24)
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)

	v.SetDefault("billing.default_tax_rate", "19")
	v.SetDefault("billing.default_currency", "EUR")
	v.SetDefault("billing.invoice_prefix", "INV")
	v.SetDefault("billing.payment_terms_days", 14)
	v.SetDefault("billing.default_country", "DE")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the optional config file at path and the environment. Environment
// variables use upper case with underscores, e.g. AUTH_SECRET_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	taxRate, err := decimal.NewFromString(v.GetString("billing.default_tax_rate"))
	if err != nil {
		return nil, fmt.Errorf("billing.default_tax_rate: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			SecretKey:     v.GetString("auth.secret_key"),
			TokenValidity: time.Duration(v.GetInt("auth.token_validity_hours")) * time.Hour,
			BcryptCost:    v.GetInt("auth.bcrypt_cost"),
		},
		Billing: BillingConfig{
			DefaultTaxRate:   taxRate,
			DefaultCurrency:  strings.ToUpper(v.GetString("billing.default_currency")),
			InvoicePrefix:    v.GetString("billing.invoice_prefix"),
			PaymentTermsDays: v.GetInt("billing.payment_terms_days"),
			DefaultCountry:   strings.ToUpper(v.GetString("billing.default_country")),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the core cannot run without.
func (c *Config) Validate() error {
	if len(c.Auth.SecretKey) < minSecretLength {
		return fmt.Errorf("auth.secret_key must be at least %d characters", minSecretLength)
	}
	if c.Auth.TokenValidity <= 0 {
		return errors.New("auth.token_validity_hours must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Billing.DefaultTaxRate.IsNegative() {
		return errors.New("billing.default_tax_rate must not be negative")
	}
	if len(c.Billing.DefaultCurrency) != 3 {
		return errors.New("billing.default_currency must be a 3 letter ISO code")
	}
	if c.Billing.InvoicePrefix == "" {
		return errors.New("billing.invoice_prefix must not be empty")
	}
	if c.Billing.PaymentTermsDays < 0 {
		return errors.New("billing.payment_terms_days must not be negative")
	}
	return nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || strings.Contains(err.Error(), "no such file or directory")
}
