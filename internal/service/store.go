// Package service implements the user lifecycle and access-control
// core: the whitelist ledger, the onboarding state machine, the usage
// quota tracker, the billing event reconciler and the inbound message
// router.  Services hold their collaborators as explicit handles and
// coordinate exclusively through the persistent store; there is no
// shared in-process mutable state, so any number of webhook workers
// can run the same service values concurrently.
package service

import (
	"context"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/queue"
)

// ProfileStore is the slice of storage the profile-owning services
// need.  The MySQL repository implements it; tests use in-memory
// fakes.  The services never branch on the backing engine.
type ProfileStore interface {
	Get(ctx context.Context, phone string) (*model.UserProfile, error)
	FindByCustomerID(ctx context.Context, customerID string) (*model.UserProfile, error)
	CreateIfAbsent(ctx context.Context, phone string) (*model.UserProfile, error)
	Update(ctx context.Context, phone string, u model.ProfileUpdate) error
	AppendOnboardingStep(ctx context.Context, phone string, step int, value string) error
}

// WhitelistStore owns whitelist rows and their event log. Activate and
// Deactivate are conditional single-statement transitions that report
// whether this call changed state, which is what keeps the ledger
// idempotent under racing webhook workers.
type WhitelistStore interface {
	Get(ctx context.Context, phone string) (*model.WhitelistEntry, error)
	Activate(ctx context.Context, phone, source string) (bool, error)
	Deactivate(ctx context.Context, phone string) (bool, error)
	AppendEvent(ctx context.Context, phone, action, source string) error
	Stats(ctx context.Context) (model.WhitelistStats, error)
}

// UsageStore owns the rolling 30-day usage windows.
type UsageStore interface {
	Increment(ctx context.Context, phone string, now time.Time) (*model.MonthlyUsage, error)
	MarkWarned(ctx context.Context, phone string, periodStart time.Time) error
	MarkExceeded(ctx context.Context, phone string, periodStart time.Time) error
}

// MessageStore owns the conversation transcript and its side logs.
type MessageStore interface {
	InsertInbound(ctx context.Context, phone, body string) error
	InsertAssistant(ctx context.Context, phone, body string, responseMs int64) error
	AppendDelivery(ctx context.Context, phone, status, providerMessageID string) error
	AppendAnalytics(ctx context.Context, phone, intent string, responseMs int64) error
}

// StripeEventStore appends billing webhook audit rows.
type StripeEventStore interface {
	Append(ctx context.Context, kind, customerID, phone, detail string) error
}

// AuditPublisher fans whitelist and billing outcomes out to the
// message broker. Publishing is best-effort; a nil publisher or a
// failed publish never fails the mutation it describes.
type AuditPublisher interface {
	PublishWhitelistChanged(ctx context.Context, event queue.WhitelistChangedEvent) error
	PublishBillingProcessed(ctx context.Context, event queue.BillingProcessedEvent) error
}

// WhitelistCache absorbs per-message IsActive lookups. Implementations
// must degrade to misses when the cache backend is unavailable.
type WhitelistCache interface {
	GetActive(ctx context.Context, phone string) (bool, bool)
	SetActive(ctx context.Context, phone string, active bool)
	Invalidate(ctx context.Context, phone string)
}
