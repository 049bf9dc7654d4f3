package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	MongoURI          string `mapstructure:"MONGO_URI"`
	MongoDBName       string `mapstructure:"MONGO_DB_NAME"`
	MongoTransactions bool   `mapstructure:"MONGO_TRANSACTIONS"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CartCacheTTL  time.Duration `mapstructure:"CART_CACHE_TTL"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	// OutboxInterval is how often pending order events are relayed.
	OutboxInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	TaxPrice      float64 `mapstructure:"TAX_PRICE"`
	ShippingPrice float64 `mapstructure:"SHIPPING_PRICE"`
	Currency      string  `mapstructure:"CURRENCY"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeSuccessURL    string `mapstructure:"STRIPE_SUCCESS_URL"`
	StripeCancelURL     string `mapstructure:"STRIPE_CANCEL_URL"`

	BreakerFailures    uint32        `mapstructure:"PAYMENT_BREAKER_FAILURES"`
	BreakerOpenTimeout time.Duration `mapstructure:"PAYMENT_BREAKER_TIMEOUT"`
}

var defaults = map[string]any{
	"APP_ENV":          "development",
	"LOG_LEVEL":        "info",
	"HTTP_PORT":        "8080",
	"REQUEST_TIMEOUT":  "30s",
	"SHUTDOWN_TIMEOUT": "10s",

	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DB_NAME":      "shopdb",
	"MONGO_TRANSACTIONS": false,

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"CART_CACHE_TTL": "15m",

	"KAFKA_BROKERS":     "localhost:9092",
	"KAFKA_ORDER_TOPIC": "order-events",

	"OUTBOX_POLL_INTERVAL": "1s",

	"JWT_SECRET": "",

	"TAX_PRICE":      20.0,
	"SHIPPING_PRICE": 10.0,
	"CURRENCY":       "egp",

	"STRIPE_SECRET_KEY":     "",
	"STRIPE_WEBHOOK_SECRET": "",
	"STRIPE_SUCCESS_URL":    "http://localhost:8080/stripe/online/success",
	"STRIPE_CANCEL_URL":     "http://localhost:8080/stripe/online/cancel",

	"PAYMENT_BREAKER_FAILURES": 5,
	"PAYMENT_BREAKER_TIMEOUT":  "30s",
}

// Load reads an optional .env file, then the process environment.
// Environment variables win over .env values.
func Load(envFiles ...string) (*Config, error) {
	// a missing .env is fine, the environment may be set by the orchestrator
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Brokers splits the comma separated KAFKA_BROKERS value.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *Config) validate() error {
	if c.TaxPrice < 0 || c.ShippingPrice < 0 {
		return fmt.Errorf("tax and shipping prices must not be negative")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}
