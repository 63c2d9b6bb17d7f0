package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/phone"
	"github.com/relayline/sms-assistant/internal/queue"
	"github.com/relayline/sms-assistant/internal/repository"
)

// Billing event kinds delivered by the provider webhook after
// signature verification.
const (
	EventSubCreated       = "subscription_created"
	EventSubUpdated       = "subscription_updated"
	EventSubDeleted       = "subscription_deleted"
	EventTrialWillEnd     = "trial_will_end"
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

// BillingEvent is the normalized shape of a verified provider webhook.
type BillingEvent struct {
	Kind           string
	CustomerID     string
	SubscriptionID string
	Status         string
	MetadataPhone  string // explicit phone set in subscription metadata
	CustomerPhone  string // phone on the billing customer record
	TrialEnd       *time.Time
}

// Billing reconciles provider lifecycle events into profile mutations
// and ledger transitions. It owns the billing fields of the profile
// but never touches whitelist rows directly: all membership changes go
// through the Ledger's add/remove contract, preserving single-writer
// discipline per table. Every received event is appended to the
// stripe_events audit log regardless of outcome.
type Billing struct {
	Profiles  ProfileStore
	Events    StripeEventStore
	Ledger    *Ledger
	Publisher AuditPublisher
}

// HandleEvent processes one event and returns a short outcome label
// for the webhook response. It never returns an error upward: failures
// are logged, audited and answered with a terminal outcome so the
// webhook is always acknowledged.
func (b *Billing) HandleEvent(ctx context.Context, ev BillingEvent) string {
	key := b.resolvePhone(ctx, ev)
	if key == "" {
		// Never guess: log the event with an explicit detail and stop.
		b.audit(ctx, ev, "", "no phone found")
		return "no_phone"
	}

	outcome := "ok"
	switch ev.Kind {
	case EventSubCreated:
		if _, err := b.Profiles.CreateIfAbsent(ctx, key); err != nil {
			outcome = b.fail(key, "ensure profile", err)
			break
		}
		status := ev.Status
		if status == "" {
			status = model.SubActive
		}
		if err := b.Profiles.Update(ctx, key, model.ProfileUpdate{
			BillingCustomerID:  &ev.CustomerID,
			SubscriptionStatus: &status,
			SubscriptionID:     &ev.SubscriptionID,
			TrialEnd:           ev.TrialEnd,
		}); err != nil {
			outcome = b.fail(key, "update profile", err)
			break
		}
		b.Ledger.Add(ctx, key, model.SourceStripeSub, true)

	case EventSubUpdated:
		if _, err := b.Profiles.CreateIfAbsent(ctx, key); err != nil {
			outcome = b.fail(key, "ensure profile", err)
			break
		}
		if err := b.Profiles.Update(ctx, key, model.ProfileUpdate{
			SubscriptionStatus: &ev.Status,
			SubscriptionID:     &ev.SubscriptionID,
		}); err != nil {
			outcome = b.fail(key, "update profile", err)
			break
		}
		switch ev.Status {
		case model.SubActive:
			b.Ledger.Add(ctx, key, model.SourceStripeSub, false)
		case model.SubCanceled, model.SubUnpaid, model.SubPastDue:
			b.Ledger.Remove(ctx, key, model.SourceStripeSub, true)
		}

	case EventSubDeleted:
		status := model.SubCanceled
		if err := b.Profiles.Update(ctx, key, model.ProfileUpdate{
			SubscriptionStatus:  &status,
			ClearSubscriptionID: true,
		}); err != nil {
			outcome = b.fail(key, "update profile", err)
			break
		}
		b.Ledger.Remove(ctx, key, model.SourceStripeSub, true)

	case EventTrialWillEnd:
		// One-off notice, no ledger mutation, bypasses quota.
		b.Ledger.sendSystem(ctx, key, msgTrialEnding)

	case EventPaymentFailed:
		b.Ledger.sendSystem(ctx, key, msgPaymentFailed)

	case EventPaymentSucceeded:
		status := model.SubActive
		if _, err := b.Profiles.CreateIfAbsent(ctx, key); err != nil {
			outcome = b.fail(key, "ensure profile", err)
			break
		}
		if err := b.Profiles.Update(ctx, key, model.ProfileUpdate{
			SubscriptionStatus: &status,
		}); err != nil {
			outcome = b.fail(key, "update profile", err)
			break
		}
		b.Ledger.Add(ctx, key, model.SourceStripePayment, false)

	default:
		outcome = "unknown_kind"
	}

	b.audit(ctx, ev, key, outcome)
	return outcome
}

// resolvePhone follows the fixed resolution order: explicit metadata
// phone, then the billing customer's phone field, then a profile
// lookup by stored billing customer id.
func (b *Billing) resolvePhone(ctx context.Context, ev BillingEvent) string {
	if key := phone.Normalize(ev.MetadataPhone); key != "" {
		return key
	}
	if key := phone.Normalize(ev.CustomerPhone); key != "" {
		return key
	}
	if ev.CustomerID == "" {
		return ""
	}
	prof, err := b.Profiles.FindByCustomerID(ctx, ev.CustomerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("billing: customer lookup failed for %s: %v", ev.CustomerID, err)
		}
		return ""
	}
	return prof.Phone
}

func (b *Billing) fail(key, op string, err error) string {
	log.Printf("billing: %s failed for %s: %v", op, key, err)
	return "error"
}

// audit writes the stripe_events row and fans the outcome out to the
// broker. Both are best-effort.
func (b *Billing) audit(ctx context.Context, ev BillingEvent, key, outcome string) {
	if err := b.Events.Append(ctx, ev.Kind, ev.CustomerID, key, outcome); err != nil {
		log.Printf("billing: audit append failed for kind=%s customer=%s: %v", ev.Kind, ev.CustomerID, err)
	}
	if b.Publisher != nil {
		_ = b.Publisher.PublishBillingProcessed(ctx, queue.BillingProcessedEvent{
			Kind:        ev.Kind,
			CustomerID:  ev.CustomerID,
			Phone:       key,
			Outcome:     outcome,
			ProcessedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
