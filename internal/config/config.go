package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort          string
	FrontendURL         string
	BrainAPIURL         string
	BrainAPITimeout     time.Duration
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	SessionCookieMaxAge int

	StripeSecretKey       string
	StripeWebhookSecret   string
	StripePricePro        string
	StripePriceEnterprise string
	CheckoutSuccessURL    string
	CheckoutCancelURL     string

	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		BrainAPIURL:         getEnv("BRAIN_API_URL", ""),
		BrainAPITimeout:     time.Duration(getEnvInt("BRAIN_API_TIMEOUT_SECONDS", 30)) * time.Second,
		RateLimitRequests:   getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:     time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "aserras_session"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", true),
		SessionCookieMaxAge: getEnvInt("SESSION_COOKIE_MAX_AGE", 60*60*24*7),

		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePricePro:        getEnv("STRIPE_PRICE_PRO", "price_test_pro"),
		StripePriceEnterprise: getEnv("STRIPE_PRICE_ENTERPRISE", "price_test_enterprise"),
		CheckoutSuccessURL:    getEnv("CHECKOUT_SUCCESS_URL", "https://aserras.com/dashboard?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:     getEnv("CHECKOUT_CANCEL_URL", "https://aserras.com/pricing?canceled=true"),

		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.BrainAPIURL == "" {
		return nil, fmt.Errorf("BRAIN_API_URL is required")
	}
	cfg.BrainAPIURL = strings.TrimRight(cfg.BrainAPIURL, "/")

	if cfg.RateLimitRequests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}

	return cfg, nil
}

// StripePriceForPlan returns the configured Stripe price ID for a plan,
// or the empty string when the plan has no price mapping.
func (c *Config) StripePriceForPlan(plan string) string {
	switch strings.ToLower(plan) {
	case "pro":
		return c.StripePricePro
	case "enterprise":
		return c.StripePriceEnterprise
	default:
		return ""
	}
}

// HasStripeSecret reports whether a Stripe secret key has been provided.
func (c *Config) HasStripeSecret() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
