package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/relayline/sms-assistant/internal/gateway"
	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/phone"
	"github.com/relayline/sms-assistant/internal/queue"
	"github.com/relayline/sms-assistant/internal/repository"
)

// Ledger owns whitelist membership. Every add/remove is a logged
// transition against a row that is never deleted, and both operations
// are idempotent: callers (the billing reconciler, the SMS router)
// invoke them defensively on every message, so a repeat call with the
// same arguments must not duplicate welcome messages or event rows.
type Ledger struct {
	Whitelist WhitelistStore
	Profiles  ProfileStore
	Messages  MessageStore
	Gateway   gateway.Gateway
	Cache     WhitelistCache
	Publisher AuditPublisher
}

// IsActive reports whether the phone may use the service. A store
// failure degrades to false (treat as not whitelisted) rather than
// failing the request.
func (l *Ledger) IsActive(ctx context.Context, rawPhone string) bool {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return false
	}
	if l.Cache != nil {
		if active, ok := l.Cache.GetActive(ctx, key); ok {
			return active
		}
	}
	entry, err := l.Whitelist.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("ledger: whitelist lookup failed for %s: %v", key, err)
		}
		return false
	}
	if l.Cache != nil {
		l.Cache.SetActive(ctx, key, entry.IsActive)
	}
	return entry.IsActive
}

// Add makes the phone active. It returns true when the phone ends up
// active, whether or not this call caused the transition. On a real
// transition it appends one whitelist event, ensures a profile exists
// at the awaiting-name step, invalidates the cache, publishes an audit
// event, and — only when sendWelcome is set — delivers the onboarding
// name prompt as a system message.
func (l *Ledger) Add(ctx context.Context, rawPhone, source string, sendWelcome bool) bool {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return false
	}
	changed, err := l.Whitelist.Activate(ctx, key, source)
	if err != nil {
		log.Printf("ledger: activate failed for %s: %v", key, err)
		return false
	}
	if !changed {
		// Already active: success without mutation or duplicate event.
		return true
	}
	if l.Cache != nil {
		l.Cache.Invalidate(ctx, key)
	}
	if err := l.Whitelist.AppendEvent(ctx, key, model.ActionAdded, source); err != nil {
		log.Printf("ledger: append event failed for %s: %v", key, err)
	}
	if _, err := l.Profiles.CreateIfAbsent(ctx, key); err != nil {
		log.Printf("ledger: ensure profile failed for %s: %v", key, err)
	}
	l.publish(ctx, key, model.ActionAdded, source)
	if sendWelcome {
		l.sendSystem(ctx, key, msgNamePrompt)
	}
	return true
}

// Remove flips an active entry to inactive. It returns false when the
// phone was not active (nothing to do). On a real transition it
// appends one whitelist event and optionally delivers a cancellation
// notice.
func (l *Ledger) Remove(ctx context.Context, rawPhone, source string, sendGoodbye bool) bool {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return false
	}
	changed, err := l.Whitelist.Deactivate(ctx, key)
	if err != nil {
		log.Printf("ledger: deactivate failed for %s: %v", key, err)
		return false
	}
	if !changed {
		return false
	}
	if l.Cache != nil {
		l.Cache.Invalidate(ctx, key)
	}
	if err := l.Whitelist.AppendEvent(ctx, key, model.ActionRemoved, source); err != nil {
		log.Printf("ledger: append event failed for %s: %v", key, err)
	}
	l.publish(ctx, key, model.ActionRemoved, source)
	if sendGoodbye {
		l.sendSystem(ctx, key, msgGoodbye)
	}
	return true
}

// Stats returns aggregate membership counts.
func (l *Ledger) Stats(ctx context.Context) (model.WhitelistStats, error) {
	return l.Whitelist.Stats(ctx)
}

// sendSystem persists and delivers a system-originated message.  The
// transcript row is written before the external call so a slow or
// failed delivery never leaves the store partially committed, and the
// row carries zero response time since it is not a query answer.
// System messages bypass quota counting entirely.
func (l *Ledger) sendSystem(ctx context.Context, key, text string) {
	if err := l.Messages.InsertAssistant(ctx, key, text, 0); err != nil {
		log.Printf("ledger: persist system message failed for %s: %v", key, err)
	}
	res, err := l.Gateway.Deliver(ctx, key, text)
	status := res.Status
	if err != nil {
		log.Printf("ledger: deliver failed for %s: %v", key, err)
		status = "failed"
	}
	if err := l.Messages.AppendDelivery(ctx, key, status, res.ProviderMessageID); err != nil {
		log.Printf("ledger: delivery log failed for %s: %v", key, err)
	}
}

func (l *Ledger) publish(ctx context.Context, key, action, source string) {
	if l.Publisher == nil {
		return
	}
	_ = l.Publisher.PublishWhitelistChanged(ctx, queue.WhitelistChangedEvent{
		Phone:     key,
		Action:    action,
		Source:    source,
		ChangedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
