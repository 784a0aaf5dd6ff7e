package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderStripe   = "stripe"
	ProviderRazorpay = "razorpay"

	RedirectModeWebhook = "webhook"
	RedirectModeTrust   = "trust"
)

// Config holds all configuration for the application
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	SecretKey   string
	JWTSecret   string
	LogLevel    string
	LogDir      string

	Payment PaymentConfig
	SMTP    SMTPConfig
}

// PaymentConfig selects and configures the payment processor
type PaymentConfig struct {
	Provider              string
	RedirectMode          string
	Timeout               time.Duration
	MaxRetries            uint64
	StripeSecretKey       string
	StripeWebhookSecret   string
	StripePublishableKey  string
	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string
}

// SMTPConfig configures kitchen notifications. Disabled when Host is empty.
type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	KitchenEmail string
}

// Enabled reports whether kitchen notification mail can be sent
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.KitchenEmail != ""
}

// LoadConfig loads configuration from the environment, reading .env first when present
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("PAYMENT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_TIMEOUT: %w", err)
	}
	retries, err := strconv.ParseUint(getEnv("PAYMENT_MAX_RETRIES", "2"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_MAX_RETRIES: %w", err)
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", "sqlite:///tmp/restaurant.db"),
		SecretKey:   getEnv("SECRET_KEY", "your_secret_key_here"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogDir:      os.Getenv("LOG_DIR"),
		Payment: PaymentConfig{
			Provider:              strings.ToLower(getEnv("PAYMENT_PROVIDER", ProviderStripe)),
			RedirectMode:          strings.ToLower(getEnv("PAYMENT_REDIRECT_MODE", RedirectModeWebhook)),
			Timeout:               timeout,
			MaxRetries:            retries,
			StripeSecretKey:       os.Getenv("STRIPE_SECRET_KEY"),
			StripeWebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
			StripePublishableKey:  os.Getenv("STRIPE_PUBLISHABLE_KEY"),
			RazorpayKey:           os.Getenv("RAZORPAY_KEY"),
			RazorpaySecret:        os.Getenv("RAZORPAY_SECRET"),
			RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:         os.Getenv("SMTP_HOST"),
			Port:         smtpPort,
			Username:     os.Getenv("SMTP_USERNAME"),
			Password:     os.Getenv("SMTP_PASSWORD"),
			From:         getEnv("SMTP_FROM", os.Getenv("SMTP_USERNAME")),
			KitchenEmail: os.Getenv("KITCHEN_EMAIL"),
		},
	}
	if config.JWTSecret == "" {
		config.JWTSecret = config.SecretKey
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that would otherwise fail on the first request
func (c *Config) Validate() error {
	switch c.Payment.Provider {
	case ProviderStripe, ProviderRazorpay:
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payment.Provider)
	}
	switch c.Payment.RedirectMode {
	case RedirectModeWebhook, RedirectModeTrust:
	default:
		return fmt.Errorf("unknown PAYMENT_REDIRECT_MODE %q", c.Payment.RedirectMode)
	}
	if c.Payment.Timeout <= 0 {
		return errors.New("PAYMENT_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether cookies should be marked secure
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
