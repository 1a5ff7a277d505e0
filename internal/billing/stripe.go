package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

var (
	// ErrUnknownPlan indicates a plan with no configured Stripe price
	ErrUnknownPlan = errors.New("unknown plan identifier")
	// ErrMalformedWebhook indicates a webhook payload that failed signature
	// verification or could not be decoded
	ErrMalformedWebhook = errors.New("webhook payload could not be verified")
)

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey       string
	WebhookSecret   string
	PricePro        string
	PriceEnterprise string
	SuccessURL      string
	CancelURL       string
}

// Service handles Stripe checkout and webhook processing. All ledger
// mutations flow through HandleWebhook after signature verification.
type Service struct {
	config *StripeConfig
	ledger *Ledger
	logger *zap.Logger
}

// NewService creates a billing service and sets the global Stripe API key.
func NewService(config *StripeConfig, ledger *Ledger, logger *zap.Logger) *Service {
	stripe.Key = config.SecretKey

	return &Service{
		config: config,
		ledger: ledger,
		logger: logger,
	}
}

// Ledger returns the subscription ledger backing this service.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// PriceForPlan resolves the configured Stripe price ID for a plan.
func (s *Service) PriceForPlan(plan Plan) (string, error) {
	switch NormalizePlan(string(plan)) {
	case PlanPro:
		if s.config.PricePro != "" {
			return s.config.PricePro, nil
		}
	case PlanEnterprise:
		if s.config.PriceEnterprise != "" {
			return s.config.PriceEnterprise, nil
		}
	}
	return "", ErrUnknownPlan
}

// CreateCheckoutSession creates a Stripe checkout session for the plan and
// returns its URL. The plan and email ride along as metadata on both the
// session and the subscription so webhook events can be resolved back to
// a user.
func (s *Service) CreateCheckoutSession(email string, plan Plan) (string, error) {
	priceID, err := s.PriceForPlan(plan)
	if err != nil {
		return "", err
	}

	email = normalizeEmail(email)
	metadata := map[string]string{
		"plan":  string(NormalizePlan(string(plan))),
		"email": email,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(s.config.SuccessURL),
		CancelURL:     stripe.String(s.config.CancelURL),
		CustomerEmail: stripe.String(email),
		Metadata:      metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	if sess.URL == "" {
		return "", fmt.Errorf("stripe did not return a checkout URL")
	}

	s.logger.Info("checkout_session_created",
		zap.String("plan", string(plan)),
	)
	return sess.URL, nil
}

// HandleWebhook verifies and applies a Stripe webhook event. A signature
// verification failure returns ErrMalformedWebhook and leaves the ledger
// untouched; callers still acknowledge the delivery so the provider does
// not retry a payload that can never verify.
func (s *Service) HandleWebhook(payload []byte, signature string) error {
	if s.config.WebhookSecret == "" {
		return ErrMalformedWebhook
	}

	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	ev := parseStripeEvent(event)
	s.logger.Info("stripe_webhook_received",
		zap.String("event_type", string(event.Type)),
	)

	s.ledger.Apply(ev)
	return nil
}

// parseStripeEvent extracts the ledger-relevant fields from a verified
// Stripe event. Fields that cannot be resolved stay empty; the ledger
// ignores events without an email.
func parseStripeEvent(event stripe.Event) Event {
	ev := Event{Kind: KindOf(string(event.Type))}

	switch ev.Kind {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return ev
		}
		ev.Email = sess.Metadata["email"]
		if ev.Email == "" && sess.CustomerDetails != nil {
			ev.Email = sess.CustomerDetails.Email
		}
		if ev.Email == "" {
			ev.Email = sess.CustomerEmail
		}
		ev.Plan = NormalizePlan(sess.Metadata["plan"])

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return ev
		}
		ev.Email = sub.Metadata["email"]
		ev.Plan = NormalizePlan(sub.Metadata["plan"])
		ev.Status = string(sub.Status)

	case EventUnknown:
	}

	return ev
}
