package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(&StripeConfig{
		SecretKey:       "sk_test_123",
		WebhookSecret:   testWebhookSecret,
		PricePro:        "price_pro",
		PriceEnterprise: "price_ent",
		SuccessURL:      "https://aserras.com/dashboard",
		CancelURL:       "https://aserras.com/pricing",
	}, NewLedger(), zap.NewNop())
}

// signPayload produces a Stripe-Signature header value the webhook
// verifier accepts for the given payload.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, dataObject string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test","type":%q,"api_version":%q,"data":{"object":%s}}`,
		eventType, stripe.APIVersion, dataObject,
	))
}

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	payload := eventPayload("checkout.session.completed",
		`{"metadata":{"email":"user@example.com","plan":"pro"}}`)

	if err := svc.HandleWebhook(payload, signPayload(payload, testWebhookSecret)); err != nil {
		t.Fatalf("HandleWebhook() returned error: %v", err)
	}
	if got := svc.Ledger().PlanFor("user@example.com"); got != PlanPro {
		t.Errorf("PlanFor() = %q, want %q", got, PlanPro)
	}
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	payload := eventPayload("checkout.session.completed",
		`{"metadata":{"email":"user@example.com","plan":"pro"}}`)

	err := svc.HandleWebhook(payload, "t=1,v1=deadbeef")
	if !errors.Is(err, ErrMalformedWebhook) {
		t.Fatalf("Expected ErrMalformedWebhook, got %v", err)
	}
	if got := svc.Ledger().PlanFor("user@example.com"); got != PlanFree {
		t.Errorf("Ledger mutated despite bad signature: plan = %q", got)
	}
}

func TestHandleWebhook_NoSecretConfigured(t *testing.T) {
	t.Parallel()
	svc := NewService(&StripeConfig{}, NewLedger(), zap.NewNop())

	payload := eventPayload("checkout.session.completed", `{}`)
	if err := svc.HandleWebhook(payload, "t=1,v1=sig"); !errors.Is(err, ErrMalformedWebhook) {
		t.Errorf("Expected ErrMalformedWebhook without secret, got %v", err)
	}
}

func TestHandleWebhook_SubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	activate := eventPayload("customer.subscription.updated",
		`{"status":"active","metadata":{"email":"x@example.com","plan":"pro"}}`)
	if err := svc.HandleWebhook(activate, signPayload(activate, testWebhookSecret)); err != nil {
		t.Fatalf("HandleWebhook(activate) returned error: %v", err)
	}
	if got := svc.Ledger().PlanFor("x@example.com"); got != PlanPro {
		t.Fatalf("PlanFor() after activation = %q, want %q", got, PlanPro)
	}

	lapse := eventPayload("customer.subscription.updated",
		`{"status":"past_due","metadata":{"email":"x@example.com"}}`)
	if err := svc.HandleWebhook(lapse, signPayload(lapse, testWebhookSecret)); err != nil {
		t.Fatalf("HandleWebhook(lapse) returned error: %v", err)
	}
	if got := svc.Ledger().PlanFor("x@example.com"); got != PlanFree {
		t.Errorf("PlanFor() after past_due = %q, want %q", got, PlanFree)
	}
}

func TestHandleWebhook_SubscriptionDeleted(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	svc.Ledger().Set("a@example.com", PlanPro)

	payload := eventPayload("customer.subscription.deleted",
		`{"status":"canceled","metadata":{"email":"a@example.com"}}`)
	if err := svc.HandleWebhook(payload, signPayload(payload, testWebhookSecret)); err != nil {
		t.Fatalf("HandleWebhook() returned error: %v", err)
	}
	if got := svc.Ledger().PlanFor("a@example.com"); got != PlanFree {
		t.Errorf("PlanFor() = %q, want %q", got, PlanFree)
	}
}

func TestHandleWebhook_IgnoresUnknownEventTypes(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	svc.Ledger().Set("u@example.com", PlanPro)

	payload := eventPayload("invoice.paid", `{"metadata":{"email":"u@example.com"}}`)
	if err := svc.HandleWebhook(payload, signPayload(payload, testWebhookSecret)); err != nil {
		t.Fatalf("HandleWebhook() returned error: %v", err)
	}
	if got := svc.Ledger().PlanFor("u@example.com"); got != PlanPro {
		t.Errorf("PlanFor() = %q, want unchanged %q", got, PlanPro)
	}
}

func TestParseStripeEvent_CheckoutEmailFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		object    string
		wantEmail string
	}{
		{
			name:      "metadata email",
			object:    `{"metadata":{"email":"meta@example.com","plan":"pro"},"customer_details":{"email":"details@example.com"},"customer_email":"plain@example.com"}`,
			wantEmail: "meta@example.com",
		},
		{
			name:      "customer details fallback",
			object:    `{"metadata":{"plan":"pro"},"customer_details":{"email":"details@example.com"},"customer_email":"plain@example.com"}`,
			wantEmail: "details@example.com",
		},
		{
			name:      "customer email fallback",
			object:    `{"metadata":{"plan":"pro"},"customer_email":"plain@example.com"}`,
			wantEmail: "plain@example.com",
		},
		{
			name:      "no email",
			object:    `{"metadata":{"plan":"pro"}}`,
			wantEmail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var event stripe.Event
			payload := eventPayload("checkout.session.completed", tt.object)
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("Failed to unmarshal event: %v", err)
			}
			ev := parseStripeEvent(event)
			if ev.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", ev.Email, tt.wantEmail)
			}
			if ev.Kind != EventCheckoutCompleted {
				t.Errorf("Kind = %v, want EventCheckoutCompleted", ev.Kind)
			}
		})
	}
}

func TestPriceForPlan(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	tests := []struct {
		plan    Plan
		want    string
		wantErr bool
	}{
		{PlanPro, "price_pro", false},
		{Plan("PRO"), "price_pro", false},
		{PlanEnterprise, "price_ent", false},
		{PlanFree, "", true},
		{Plan("unknown"), "", true},
	}

	for _, tt := range tests {
		got, err := svc.PriceForPlan(tt.plan)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownPlan) {
				t.Errorf("PriceForPlan(%q) error = %v, want ErrUnknownPlan", tt.plan, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("PriceForPlan(%q) returned error: %v", tt.plan, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PriceForPlan(%q) = %q, want %q", tt.plan, got, tt.want)
		}
	}
}
