package billing

import (
	"strings"
	"sync"
)

// Ledger is the in-process record of user subscription plans, keyed by
// normalized email. It is mutated only through verified webhook events;
// the read path never writes. Entries are overwritten, never deleted: a
// cancellation writes the default plan back.
//
// Events are applied in arrival order with last-write-wins semantics.
// A redelivered stale event can therefore overwrite a newer state; event
// timestamps are deliberately not consulted.
type Ledger struct {
	mu    sync.Mutex
	plans map[string]Plan
}

// Event is a provider-agnostic billing event after metadata extraction.
type Event struct {
	Kind   EventKind
	Email  string
	Plan   Plan
	Status string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{plans: make(map[string]Plan)}
}

// Set records the plan for an email.
func (l *Ledger) Set(email string, plan Plan) {
	key := normalizeEmail(email)
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plans[key] = NormalizePlan(string(plan))
}

// PlanFor returns the recorded plan for an email, or PlanFree when the
// email has never been seen.
func (l *Ledger) PlanFor(email string) Plan {
	key := normalizeEmail(email)
	l.mu.Lock()
	defer l.mu.Unlock()
	if plan, ok := l.plans[key]; ok {
		return plan
	}
	return PlanFree
}

// Apply mutates the ledger according to the event transition table.
// Events without a resolvable email, and unrecognized event kinds, are
// ignored without error: webhook delivery must not be retried just
// because metadata was incomplete.
func (l *Ledger) Apply(ev Event) {
	if normalizeEmail(ev.Email) == "" {
		return
	}

	switch ev.Kind {
	case EventCheckoutCompleted:
		if ev.Plan != "" {
			l.Set(ev.Email, ev.Plan)
		}
	case EventSubscriptionUpdated:
		if ev.Status == "active" && ev.Plan != "" {
			l.Set(ev.Email, ev.Plan)
		} else if StatusLapsed(ev.Status) {
			l.Set(ev.Email, PlanFree)
		}
	case EventSubscriptionDeleted:
		l.Set(ev.Email, PlanFree)
	case EventUnknown:
		// no-op
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
