package commands

import (
	"fmt"
	"os"

	"github.com/aserras/webfront/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// resolvedConfig is the YAML shape printed by the show command. Secrets are
// redacted, never echoed.
type resolvedConfig struct {
	ServerPort        string `yaml:"server_port"`
	FrontendURL       string `yaml:"frontend_url"`
	BrainAPIURL       string `yaml:"brain_api_url"`
	BrainAPITimeout   string `yaml:"brain_api_timeout"`
	RateLimitRequests int    `yaml:"rate_limit_requests"`
	RateLimitWindow   string `yaml:"rate_limit_window"`
	SessionCookieName string `yaml:"session_cookie_name"`
	StripeSecretKey   string `yaml:"stripe_secret_key"`
	WebhookSecret     string `yaml:"stripe_webhook_secret"`
	PricePro          string `yaml:"stripe_price_pro"`
	PriceEnterprise   string `yaml:"stripe_price_enterprise"`
	EnableHSTS        bool   `yaml:"enable_hsts"`
	OTELEnabled       bool   `yaml:"otel_enabled"`
	OTELEndpoint      string `yaml:"otel_endpoint,omitempty"`
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Long:  "Print the configuration as resolved from the environment, with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := resolvedConfig{
				ServerPort:        cfg.ServerPort,
				FrontendURL:       cfg.FrontendURL,
				BrainAPIURL:       cfg.BrainAPIURL,
				BrainAPITimeout:   cfg.BrainAPITimeout.String(),
				RateLimitRequests: cfg.RateLimitRequests,
				RateLimitWindow:   cfg.RateLimitWindow.String(),
				SessionCookieName: cfg.SessionCookieName,
				StripeSecretKey:   redact(cfg.StripeSecretKey),
				WebhookSecret:     redact(cfg.StripeWebhookSecret),
				PricePro:          cfg.StripePricePro,
				PriceEnterprise:   cfg.StripePriceEnterprise,
				EnableHSTS:        cfg.EnableHSTS,
				OTELEnabled:       cfg.OTELEnabled,
				OTELEndpoint:      cfg.OTELEndpoint,
			}

			encoder := yaml.NewEncoder(os.Stdout)
			encoder.SetIndent(2)
			defer func() {
				_ = encoder.Close()
			}()
			return encoder.Encode(out)
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}
