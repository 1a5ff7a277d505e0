package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/aserras/webfront/internal/config"
	"github.com/aserras/webfront/internal/services/brain"
	"github.com/aserras/webfront/internal/validation"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var timeoutSeconds int
	var plan string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check connectivity and configuration",
		Long:  "Check that the Brain backend is reachable and report which Stripe settings are present",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("Brain API URL: %s\n", cfg.BrainAPIURL)

			client := brain.New(cfg.BrainAPIURL, time.Duration(timeoutSeconds)*time.Second)
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
			defer cancel()

			if err := client.Health(ctx); err != nil {
				fmt.Printf("Brain health check: FAILED (%v)\n", err)
			} else {
				fmt.Println("Brain health check: OK")
			}

			fmt.Println()
			fmt.Printf("Stripe secret key:     %s\n", present(cfg.HasStripeSecret()))
			fmt.Printf("Stripe webhook secret: %s\n", present(cfg.StripeWebhookSecret != ""))
			fmt.Printf("Price (pro):           %s\n", present(cfg.StripePriceForPlan("pro") != ""))
			fmt.Printf("Price (enterprise):    %s\n", present(cfg.StripePriceForPlan("enterprise") != ""))

			if plan != "" {
				fmt.Println()
				if err := validation.ValidatePlan(plan); err != nil {
					return err
				}
				priceID := cfg.StripePriceForPlan(plan)
				if priceID == "" {
					return fmt.Errorf("no Stripe price configured for plan %q", plan)
				}
				fmt.Printf("Plan %s resolves to price: %s\n", plan, priceID)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 10, "Health check timeout in seconds")
	cmd.Flags().StringVar(&plan, "plan", "", "Resolve the Stripe price for a plan (pro or enterprise)")

	return cmd
}

func present(ok bool) string {
	if ok {
		return "configured"
	}
	return "MISSING"
}
