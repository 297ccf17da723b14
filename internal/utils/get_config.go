package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	AppPort     string `yaml:"APP_PORT" env:"APP_PORT"`
	AppTimeZone string `yaml:"APP_TIMEZONE" env:"APP_TIMEZONE"`
	LogFile     string `yaml:"LOG_FILE" env:"LOG_FILE"`
	RateLimit   int    `yaml:"RATE_LIMIT" env:"RATE_LIMIT"`

	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER" env:"DB_DRIVER"` // postgres or sqlite
	DBUser     string `yaml:"DB_USER" env:"DB_USER"`
	DBName     string `yaml:"DB_NAME" env:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD" env:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT" env:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST" env:"DB_HOST"`
	DBPath     string `yaml:"DB_PATH" env:"DB_PATH"`

	// JWT configuration
	JWTSecret string `yaml:"JWT_SECRET" env:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL" env:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST" env:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT" env:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME" env:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL" env:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD" env:"SMTP_AUTH_PASSWORD"`

	// Payment configuration
	PaymentProvider     string `yaml:"PAYMENT_PROVIDER" env:"PAYMENT_PROVIDER"` // stripe or midtrans
	BaseCurrency        string `yaml:"BASE_CURRENCY" env:"BASE_CURRENCY"`
	StripeSecretKey     string `yaml:"STRIPE_SECRET_KEY" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `yaml:"STRIPE_WEBHOOK_SECRET" env:"STRIPE_WEBHOOK_SECRET"`
	ClientKey           string `yaml:"CLIENT_KEY" env:"CLIENT_KEY"`
	ServerKey           string `yaml:"SERVER_KEY" env:"SERVER_KEY"`
	IsProd              bool   `yaml:"IsProd" env:"IS_PROD"`

	// Currency display configuration
	DisplayCurrency  string  `yaml:"DISPLAY_CURRENCY" env:"DISPLAY_CURRENCY"`
	ExchangeRateURL  string  `yaml:"EXCHANGE_RATE_URL" env:"EXCHANGE_RATE_URL"`
	FallbackRate     float64 `yaml:"FALLBACK_RATE" env:"FALLBACK_RATE"`
	ExchangeRateTTLS int     `yaml:"EXCHANGE_RATE_TTL_SECONDS" env:"EXCHANGE_RATE_TTL_SECONDS"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET" env:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION" env:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY" env:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY" env:"AWS_SECRET_KEY"`

	// Cache and events
	RedisAddr      string `yaml:"REDIS_ADDR" env:"REDIS_ADDR"`
	RedisPassword  string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	EventsBackend  string `yaml:"EVENTS_BACKEND" env:"EVENTS_BACKEND"` // kafka, nats or none
	KafkaBrokers   string `yaml:"KAFKA_BROKERS" env:"KAFKA_BROKERS"`
	NATSURL        string `yaml:"NATS_URL" env:"NATS_URL"`
	AdminEmail     string `yaml:"ADMIN_EMAIL" env:"ADMIN_EMAIL"`
	AdminPassword  string `yaml:"ADMIN_PASSWORD" env:"ADMIN_PASSWORD"`
	NotifyByEmail  bool   `yaml:"NOTIFY_BY_EMAIL" env:"NOTIFY_BY_EMAIL"`
	ConfigFilePath string `yaml:"-" env:"CONFIG_PATH"`
}

var (
	config     Config
	configOnce sync.Once
)

func defaultConfig() Config {
	return Config{
		AppPort:          "8080",
		AppTimeZone:      "Asia/Kolkata",
		LogFile:          "./logs/app.log",
		RateLimit:        20,
		DBDriver:         "postgres",
		DBPort:           "5432",
		DBPath:           "medfund.db",
		PaymentProvider:  "stripe",
		BaseCurrency:     "USD",
		DisplayCurrency:  "INR",
		ExchangeRateURL:  "https://open.er-api.com/v6/latest/USD",
		FallbackRate:     83,
		ExchangeRateTTLS: 3600,
		EventsBackend:    "none",
		ConfigFilePath:   "config.yaml",
	}
}

// LoadConfig reads config.yaml (or CONFIG_PATH), then lets a .env file and the
// process environment override individual keys. It only runs once.
func LoadConfig() {
	configOnce.Do(func() {
		cfg, err := ReadConfig(os.Getenv("CONFIG_PATH"))
		if err != nil {
			log.Printf("Error loading config: %s\n", err)
		}
		config = cfg
	})
}

// ReadConfig builds a Config from defaults, the yaml file at path and the
// environment. A missing file is not an error.
func ReadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = cfg.ConfigFilePath
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error reading .env file: %s\n", err)
	}

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
		log.Printf("No config file at %s, using defaults and environment\n", path)
	default:
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigFilePath = path
	return cfg, nil
}

// Get returns the loaded configuration.
func Get() Config {
	LoadConfig()
	return config
}

// SetConfig replaces the loaded configuration. Used by commands that build the
// config themselves and by tests.
func SetConfig(cfg Config) {
	configOnce.Do(func() {})
	config = cfg
}

func getBoolString(b bool) string {
	return strconv.FormatBool(b)
}

func GetConfig(key string) string {
	LoadConfig()
	switch key {
	case "APP_PORT":
		return config.AppPort
	case "APP_TIMEZONE":
		return config.AppTimeZone
	case "DB_DRIVER":
		return config.DBDriver
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_PATH":
		return config.DBPath
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "PAYMENT_PROVIDER":
		return config.PaymentProvider
	case "BASE_CURRENCY":
		return config.BaseCurrency
	case "STRIPE_SECRET_KEY":
		return config.StripeSecretKey
	case "STRIPE_WEBHOOK_SECRET":
		return config.StripeWebhookSecret
	case "CLIENT_KEY":
		return config.ClientKey
	case "SERVER_KEY":
		return config.ServerKey
	case "IsProd":
		return getBoolString(config.IsProd)
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "REDIS_ADDR":
		return config.RedisAddr
	case "EVENTS_BACKEND":
		return config.EventsBackend
	case "KAFKA_BROKERS":
		return config.KafkaBrokers
	case "NATS_URL":
		return config.NATSURL
	default:
		return ""
	}
}
