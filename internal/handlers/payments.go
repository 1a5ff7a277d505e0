package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/aserras/webfront/internal/billing"
	"github.com/aserras/webfront/internal/request"
	"github.com/aserras/webfront/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MaxWebhookBodySize caps webhook payload reads.
const MaxWebhookBodySize = 1 << 20

// PaymentsHandler exposes checkout, webhook ingestion and subscription
// status lookup.
type PaymentsHandler struct {
	billing *billing.Service
	logger  *zap.Logger
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(billingService *billing.Service, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{billing: billingService, logger: logger}
}

// RegisterRoutes registers payment routes on the given router.
// The router should already have the /payments prefix.
func (h *PaymentsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/create-checkout-session", h.CreateCheckoutSession).Methods("POST")
	r.HandleFunc("/webhook", h.Webhook).Methods("POST")
	r.HandleFunc("/subscription-status", h.SubscriptionStatus).Methods("GET")
}

// CheckoutRequest represents a checkout session request
type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,plan"`
}

// CreateCheckoutSession starts a Stripe checkout for a paid plan. The
// caller's email comes from their session token; without a resolvable
// email the checkout is refused, since the completed-checkout event could
// never be tied back to a user.
func (h *PaymentsHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	token := request.TokenFromContext(r)
	if token == "" {
		respondDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	email, err := billing.EmailFromToken(token)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if req.Plan == "" {
		respondDetail(w, http.StatusBadRequest, "plan is required")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusNotFound, "unknown plan")
		return
	}

	url, err := h.billing.CreateCheckoutSession(email, billing.Plan(req.Plan))
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			respondDetail(w, http.StatusNotFound, "unknown plan")
			return
		}
		h.logger.Error("checkout_session_failed", zap.Error(err))
		respondDetail(w, http.StatusBadGateway, "could not start checkout")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// Webhook ingests Stripe webhook deliveries. Replies 200 regardless of
// whether the payload verified; an unverifiable payload will never verify
// on retry, and Stripe disables endpoints that keep failing.
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, MaxWebhookBodySize))
	if err != nil {
		h.logger.Warn("webhook_body_read_failed", zap.Error(err))
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.billing.HandleWebhook(payload, r.Header.Get("Stripe-Signature")); err != nil {
		h.logger.Warn("webhook_rejected", zap.Error(err))
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubscriptionStatus reports the caller's current plan from the ledger.
// Identity comes from an unverified token decode; this endpoint only reads
// previously recorded state and grants nothing.
func (h *PaymentsHandler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	token := request.TokenFromContext(r)
	if token == "" {
		respondDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	email, err := billing.EmailFromToken(token)
	if err != nil {
		respondDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"plan": string(h.billing.Ledger().PlanFor(email)),
	})
}
