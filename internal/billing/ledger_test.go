package billing

import (
	"sync"
	"testing"
)

func TestLedger_DefaultPlan(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	if got := ledger.PlanFor("never-seen@example.com"); got != PlanFree {
		t.Errorf("PlanFor(unknown) = %q, want %q", got, PlanFree)
	}
}

func TestLedger_SetAndLookup(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	ledger.Set("user@example.com", PlanPro)
	if got := ledger.PlanFor("user@example.com"); got != PlanPro {
		t.Errorf("PlanFor() = %q, want %q", got, PlanPro)
	}
}

func TestLedger_NormalizesEmails(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	ledger.Set("  User@Example.COM ", PlanPro)
	if got := ledger.PlanFor("user@example.com"); got != PlanPro {
		t.Errorf("PlanFor(lowercase) = %q, want %q", got, PlanPro)
	}
	if got := ledger.PlanFor("USER@EXAMPLE.COM"); got != PlanPro {
		t.Errorf("PlanFor(uppercase) = %q, want %q", got, PlanPro)
	}
}

func TestLedger_CheckoutCompletedIdempotent(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	ev := Event{Kind: EventCheckoutCompleted, Email: "user@example.com", Plan: PlanPro}

	ledger.Apply(ev)
	ledger.Apply(ev)

	if got := ledger.PlanFor("user@example.com"); got != PlanPro {
		t.Errorf("PlanFor() after replay = %q, want %q", got, PlanPro)
	}

	ledger.mu.Lock()
	entries := len(ledger.plans)
	ledger.mu.Unlock()
	if entries != 1 {
		t.Errorf("Expected exactly one ledger entry, got %d", entries)
	}
}

func TestLedger_SubscriptionDeletedRevertsToFree(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	ledger.Set("a@example.com", PlanPro)

	ledger.Apply(Event{Kind: EventSubscriptionDeleted, Email: "a@example.com"})

	if got := ledger.PlanFor("a@example.com"); got != PlanFree {
		t.Errorf("PlanFor() after deletion = %q, want %q", got, PlanFree)
	}
}

func TestLedger_SubscriptionUpdatedTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status string
		plan   Plan
		want   Plan
	}{
		{"active with plan", "active", PlanEnterprise, PlanEnterprise},
		{"canceled", "canceled", "", PlanFree},
		{"incomplete", "incomplete", "", PlanFree},
		{"incomplete_expired", "incomplete_expired", "", PlanFree},
		{"past_due", "past_due", "", PlanFree},
		{"unpaid", "unpaid", "", PlanFree},
		{"trialing is ignored", "trialing", "", PlanPro},
		{"active without plan is ignored", "active", "", PlanPro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ledger := NewLedger()
			ledger.Set("u@example.com", PlanPro)

			ledger.Apply(Event{
				Kind:   EventSubscriptionUpdated,
				Email:  "u@example.com",
				Plan:   tt.plan,
				Status: tt.status,
			})

			if got := ledger.PlanFor("u@example.com"); got != tt.want {
				t.Errorf("PlanFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLedger_IgnoresEventsWithoutEmail(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()

	ledger.Apply(Event{Kind: EventCheckoutCompleted, Plan: PlanPro})
	ledger.Apply(Event{Kind: EventSubscriptionDeleted, Email: "   "})

	ledger.mu.Lock()
	entries := len(ledger.plans)
	ledger.mu.Unlock()
	if entries != 0 {
		t.Errorf("Expected empty ledger, got %d entries", entries)
	}
}

func TestLedger_IgnoresUnknownEvents(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()
	ledger.Set("u@example.com", PlanPro)

	ledger.Apply(Event{Kind: EventUnknown, Email: "u@example.com", Plan: PlanEnterprise})

	if got := ledger.PlanFor("u@example.com"); got != PlanPro {
		t.Errorf("PlanFor() = %q, want unchanged %q", got, PlanPro)
	}
}

func TestLedger_UpgradeThenLapse(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()

	ledger.Apply(Event{Kind: EventCheckoutCompleted, Email: "x@example.com", Plan: PlanPro})
	if got := ledger.PlanFor("x@example.com"); got != PlanPro {
		t.Fatalf("PlanFor() after checkout = %q, want %q", got, PlanPro)
	}

	ledger.Apply(Event{Kind: EventSubscriptionUpdated, Email: "x@example.com", Status: "past_due"})
	if got := ledger.PlanFor("x@example.com"); got != PlanFree {
		t.Errorf("PlanFor() after past_due = %q, want %q", got, PlanFree)
	}
}

func TestLedger_LastWriteWins(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()

	// A stale cancellation applied after a newer activation reverts the
	// plan; the ledger does not order events by timestamp.
	ledger.Apply(Event{Kind: EventSubscriptionUpdated, Email: "u@example.com", Plan: PlanPro, Status: "active"})
	ledger.Apply(Event{Kind: EventSubscriptionUpdated, Email: "u@example.com", Status: "canceled"})

	if got := ledger.PlanFor("u@example.com"); got != PlanFree {
		t.Errorf("PlanFor() = %q, want %q", got, PlanFree)
	}
}

func TestLedger_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	ledger := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ledger.Apply(Event{Kind: EventCheckoutCompleted, Email: "c@example.com", Plan: PlanPro})
		}()
		go func() {
			defer wg.Done()
			_ = ledger.PlanFor("c@example.com")
		}()
	}
	wg.Wait()

	if got := ledger.PlanFor("c@example.com"); got != PlanPro {
		t.Errorf("PlanFor() = %q, want %q", got, PlanPro)
	}
}
