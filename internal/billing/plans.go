package billing

import "strings"

// Plan is a named subscription tier.
type Plan string

const (
	// PlanFree is the default tier for users without an active subscription
	PlanFree Plan = "free"
	// PlanPro is the paid individual tier
	PlanPro Plan = "pro"
	// PlanEnterprise is the paid organization tier
	PlanEnterprise Plan = "enterprise"
)

// NormalizePlan lowercases a plan identifier.
func NormalizePlan(plan string) Plan {
	return Plan(strings.ToLower(strings.TrimSpace(plan)))
}

// EventKind identifies the billing provider events the ledger reacts to.
type EventKind int

const (
	// EventUnknown covers every event type the ledger ignores
	EventUnknown EventKind = iota
	// EventCheckoutCompleted is a completed checkout session
	EventCheckoutCompleted
	// EventSubscriptionUpdated is a subscription status change
	EventSubscriptionUpdated
	// EventSubscriptionDeleted is a subscription removal
	EventSubscriptionDeleted
)

// KindOf maps a provider event type string onto an EventKind.
func KindOf(eventType string) EventKind {
	switch eventType {
	case "checkout.session.completed":
		return EventCheckoutCompleted
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	default:
		return EventUnknown
	}
}

// lapsedStatuses are the subscription statuses that revert a user to the
// default plan on a subscription update.
var lapsedStatuses = map[string]bool{
	"canceled":           true,
	"incomplete":         true,
	"incomplete_expired": true,
	"past_due":           true,
	"unpaid":             true,
}

// StatusLapsed reports whether a subscription status means the paid plan
// is no longer in effect.
func StatusLapsed(status string) bool {
	return lapsedStatuses[status]
}
