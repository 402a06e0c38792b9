package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	PayPal      PayPalConfig   `mapstructure:"paypal"`
	Forecast    ForecastConfig `mapstructure:"forecast"`
	Payment     PaymentConfig  `mapstructure:"payment"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PayPalConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id" json:"-" yaml:"-"`
	ClientSecret string `mapstructure:"client_secret" json:"-" yaml:"-"`
	Timeout      int    `mapstructure:"timeout"`
	EmailSubject string `mapstructure:"email_subject"`
	Note         string `mapstructure:"note"`
}

type ForecastConfig struct {
	DatasetPath string `mapstructure:"dataset_path"`
	TargetYear  int    `mapstructure:"target_year"`
}

type PaymentConfig struct {
	Currency            string  `mapstructure:"currency"`
	ExchangeRateLKR     float64 `mapstructure:"exchange_rate_lkr"`
	CallTimeout         string  `mapstructure:"call_timeout"`
	WithDirectoryLookup bool    `mapstructure:"with_directory_lookup"`
	WithNotification    bool    `mapstructure:"with_notification"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind credential environment variables
	if err := viper.BindEnv("paypal.client_id", "PAYPAL_CLIENT_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind PAYPAL_CLIENT_ID environment variable: %w", err)
	}
	if err := viper.BindEnv("paypal.client_secret", "PAYPAL_CLIENT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind PAYPAL_CLIENT_SECRET environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	environment := strings.ToLower(config.Environment)

	// Require PayPal credentials outside development
	if environment != "development" && (config.PayPal.ClientID == "" || config.PayPal.ClientSecret == "") {
		return nil, errors.New("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET environment variables are required in non-development environments")
	}

	// Validate collaborator call timeout duration
	if config.Payment.CallTimeout != "" {
		if _, err := time.ParseDuration(config.Payment.CallTimeout); err != nil {
			return nil, fmt.Errorf("invalid payment call timeout duration: %w", err)
		}
	}

	if config.Payment.ExchangeRateLKR <= 0 {
		return nil, fmt.Errorf("payment exchange rate must be positive, got %v", config.Payment.ExchangeRateLKR)
	}

	if config.Forecast.TargetYear <= 0 {
		return nil, fmt.Errorf("forecast target year must be positive, got %d", config.Forecast.TargetYear)
	}

	config.Environment = environment

	return &config, nil
}

// CallTimeoutDuration returns the parsed collaborator call timeout.
func (p PaymentConfig) CallTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(p.CallTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "farm_to_keells")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)

	// Redis
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// PayPal
	viper.SetDefault("paypal.base_url", "https://api-m.sandbox.paypal.com")
	viper.SetDefault("paypal.client_id", "")
	viper.SetDefault("paypal.client_secret", "")
	viper.SetDefault("paypal.timeout", 30)
	viper.SetDefault("paypal.email_subject", "You have a payment from Farm to Keels!")
	viper.SetDefault("paypal.note", "Thank you for your produce!")

	// Forecast
	viper.SetDefault("forecast.dataset_path", "data/farm_to_keels_demand_2022_2024.csv")
	viper.SetDefault("forecast.target_year", 2025)

	// Payment
	viper.SetDefault("payment.currency", "USD")
	viper.SetDefault("payment.exchange_rate_lkr", 300.0)
	viper.SetDefault("payment.call_timeout", "15s")
	viper.SetDefault("payment.with_directory_lookup", true)
	viper.SetDefault("payment.with_notification", true)
}
