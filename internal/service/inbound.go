package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/relayline/sms-assistant/internal/gateway"
	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/phone"
	"github.com/relayline/sms-assistant/internal/repository"
	"github.com/relayline/sms-assistant/internal/resolver"
)

// Inbound routes one user text: command handling, whitelist/profile
// reconciliation, subscription gating, onboarding continuation, or
// hand-off to the query resolver. Each webhook request gets its own
// call; all coordination between concurrent calls happens through the
// store.
type Inbound struct {
	Profiles   ProfileStore
	Messages   MessageStore
	Ledger     *Ledger
	Onboarding *Onboarding
	Quota      *Quota
	Resolver   resolver.Resolver
	Gateway    gateway.Gateway
}

// Result reports what the router did with a message.
type Result struct {
	Outcome string `json:"outcome"`
	Reply   string `json:"reply,omitempty"`
}

// Stop and start command sets. Matching is exact after trimming and
// upper-casing.
var (
	stopCommands  = map[string]bool{"STOP": true, "QUIT": true, "UNSUBSCRIBE": true}
	startCommands = map[string]bool{"START": true, "SUBSCRIBE": true, "RESUME": true}
)

// Handle processes one inbound text end to end. It never returns an
// error: every failure path converts into a safe outcome with a
// user-visible fallback, so the webhook is always answered.
func (i *Inbound) Handle(ctx context.Context, rawPhone, text string) Result {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return Result{Outcome: "invalid_phone"}
	}
	body := strings.TrimSpace(text)
	if body == "" {
		return Result{Outcome: "empty"}
	}

	// Filter before persistence: rejected texts never reach the store.
	if ok, reason := CheckContent(body); !ok {
		return Result{Outcome: "filtered_" + reason}
	}
	if err := i.Messages.InsertInbound(ctx, key, body); err != nil {
		log.Printf("inbound: persist message failed for %s: %v", key, err)
	}

	cmd := strings.ToUpper(body)
	if stopCommands[cmd] {
		// Soft unsubscribe: send the notice but leave the whitelist
		// untouched; carrier-level opt-out handles the hard block.
		i.send(ctx, key, msgUnsubscribed)
		return Result{Outcome: "command_stop", Reply: msgUnsubscribed}
	}
	if startCommands[cmd] {
		i.Ledger.Add(ctx, key, model.SourceSystem, false)
		reply := msgNamePrompt
		if prof := i.profile(ctx, key); prof != nil && prof.OnboardingCompleted {
			reply = msgWelcomeBack
		}
		i.send(ctx, key, reply)
		return Result{Outcome: "command_start", Reply: reply}
	}

	// Whitelist/profile reconciliation for ordinary texts.
	prof := i.profile(ctx, key)
	if !i.Ledger.IsActive(ctx, key) {
		if prof == nil {
			// Brand new number: profile + silent whitelist add, then
			// the first onboarding prompt.
			i.Ledger.Add(ctx, key, model.SourceSystem, false)
			i.send(ctx, key, msgNamePrompt)
			return Result{Outcome: "new_user", Reply: msgNamePrompt}
		}
		// Completed or partial profile without membership: heal by
		// silently whitelisting and continuing.
		i.Ledger.Add(ctx, key, model.SourceSystem, false)
		if !i.Ledger.IsActive(ctx, key) {
			i.send(ctx, key, msgTextStart)
			return Result{Outcome: "not_whitelisted", Reply: msgTextStart}
		}
	}
	if prof == nil {
		if prof = i.profile(ctx, key); prof == nil {
			i.send(ctx, key, msgFallback)
			return Result{Outcome: "error", Reply: msgFallback}
		}
	}

	// Subscription gate: inactive and trialing pass, terminal billing
	// states are rejected with a notice.
	switch prof.SubscriptionStatus {
	case model.SubCanceled, model.SubPastDue, model.SubUnpaid:
		i.send(ctx, key, msgInactiveSub)
		return Result{Outcome: "subscription_inactive", Reply: msgInactiveSub}
	}

	if !prof.OnboardingCompleted {
		reply := i.Onboarding.Advance(ctx, key, body)
		i.send(ctx, key, reply)
		return Result{Outcome: "onboarding", Reply: reply}
	}

	return i.answer(ctx, key, body, prof)
}

// answer delegates to the query resolver and delivers the result. The
// reply is persisted before the gateway call so a slow or failed
// delivery never leaves the transcript partially committed. Only a
// genuine answer increments the usage quota; the error fallback does
// not.
func (i *Inbound) answer(ctx context.Context, key, body string, prof *model.UserProfile) Result {
	pc := resolver.Personalization{}
	if prof.FirstName != nil && prof.Location != nil {
		pc = resolver.Personalization{
			Personalized: true,
			FirstName:    *prof.FirstName,
			Location:     *prof.Location,
		}
	}

	started := time.Now()
	reply, intent, err := i.Resolver.Resolve(ctx, key, body, pc)
	elapsed := time.Since(started).Milliseconds()
	if err != nil {
		log.Printf("inbound: resolve failed for %s: %v", key, err)
		if err := i.Messages.InsertAssistant(ctx, key, msgFallback, 0); err != nil {
			log.Printf("inbound: persist fallback failed for %s: %v", key, err)
		}
		i.deliver(ctx, key, msgFallback)
		return Result{Outcome: "resolver_error", Reply: msgFallback}
	}

	if err := i.Messages.InsertAssistant(ctx, key, reply, elapsed); err != nil {
		log.Printf("inbound: persist reply failed for %s: %v", key, err)
	}
	i.deliver(ctx, key, reply)
	if err := i.Messages.AppendAnalytics(ctx, key, intent, elapsed); err != nil {
		log.Printf("inbound: analytics append failed for %s: %v", key, err)
	}

	if _, notice, err := i.Quota.RecordOutgoing(ctx, key); err != nil {
		log.Printf("inbound: quota record failed for %s: %v", key, err)
	} else if notice != "" {
		// Advisory threshold crossing: one extra system notice, which
		// itself bypasses quota counting.
		i.send(ctx, key, notice)
	}
	return Result{Outcome: "answered", Reply: reply}
}

// profile returns the profile or nil when none exists yet. Store
// failures degrade to nil with a log entry.
func (i *Inbound) profile(ctx context.Context, key string) *model.UserProfile {
	prof, err := i.Profiles.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("inbound: profile lookup failed for %s: %v", key, err)
		}
		return nil
	}
	return prof
}

// send persists and delivers a system-originated message with zero
// response time. These bypass quota counting.
func (i *Inbound) send(ctx context.Context, key, text string) {
	if err := i.Messages.InsertAssistant(ctx, key, text, 0); err != nil {
		log.Printf("inbound: persist system message failed for %s: %v", key, err)
	}
	i.deliver(ctx, key, text)
}

// deliver pushes a text through the gateway and records the attempt.
func (i *Inbound) deliver(ctx context.Context, key, text string) {
	res, err := i.Gateway.Deliver(ctx, key, text)
	status := res.Status
	if err != nil {
		log.Printf("inbound: deliver failed for %s: %v", key, err)
		status = "failed"
	}
	if err := i.Messages.AppendDelivery(ctx, key, status, res.ProviderMessageID); err != nil {
		log.Printf("inbound: delivery log failed for %s: %v", key, err)
	}
}
