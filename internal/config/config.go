package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	Order    OrderConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type LogConfig struct {
	Level string
}

type OrderConfig struct {
	TaxRate           float64
	ServiceChargeRate float64
	KitchenPrinterURL string
}

type PaymentConfig struct {
	GatewayTimeout   time.Duration
	MaxRetryAttempts int
	CallbackBaseURL  string
	StatusPollAfter  time.Duration
	StaleAfter       time.Duration
	SweepInterval    time.Duration
}

// Load reads configuration from the environment, optionally overlaid with a
// config file when path is non-empty and present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "comanda")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "comanda")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("RABBITMQ_ENABLED", false)
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", 5672)
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("RABBITMQ_VHOST", "/")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ORDER_TAX_RATE", 0.16)
	v.SetDefault("ORDER_SERVICE_CHARGE_RATE", 0.10)
	v.SetDefault("ORDER_KITCHEN_PRINTER_URL", "")
	v.SetDefault("PAYMENT_GATEWAY_TIMEOUT", "15s")
	v.SetDefault("PAYMENT_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("PAYMENT_CALLBACK_BASE_URL", "http://localhost:8080")
	v.SetDefault("PAYMENT_STATUS_POLL_AFTER", "30s")
	v.SetDefault("PAYMENT_STALE_AFTER", "5m")
	v.SetDefault("PAYMENT_SWEEP_INTERVAL", "1m")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  v.GetBool("RABBITMQ_ENABLED"),
			Host:     v.GetString("RABBITMQ_HOST"),
			Port:     v.GetInt("RABBITMQ_PORT"),
			User:     v.GetString("RABBITMQ_USER"),
			Password: v.GetString("RABBITMQ_PASSWORD"),
			VHost:    v.GetString("RABBITMQ_VHOST"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Order: OrderConfig{
			TaxRate:           v.GetFloat64("ORDER_TAX_RATE"),
			ServiceChargeRate: v.GetFloat64("ORDER_SERVICE_CHARGE_RATE"),
			KitchenPrinterURL: v.GetString("ORDER_KITCHEN_PRINTER_URL"),
		},
		Payment: PaymentConfig{
			GatewayTimeout:   v.GetDuration("PAYMENT_GATEWAY_TIMEOUT"),
			MaxRetryAttempts: v.GetInt("PAYMENT_MAX_RETRY_ATTEMPTS"),
			CallbackBaseURL:  v.GetString("PAYMENT_CALLBACK_BASE_URL"),
			StatusPollAfter:  v.GetDuration("PAYMENT_STATUS_POLL_AFTER"),
			StaleAfter:       v.GetDuration("PAYMENT_STALE_AFTER"),
			SweepInterval:    v.GetDuration("PAYMENT_SWEEP_INTERVAL"),
		},
	}

	return cfg, nil
}
