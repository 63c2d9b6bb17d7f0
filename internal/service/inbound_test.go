package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/resolver"
)

type inboundFixture struct {
	inbound  *Inbound
	profiles *fakeProfiles
	wl       *fakeWhitelist
	messages *fakeMessages
	gw       *fakeGateway
	usage    *fakeUsage
	res      *fakeResolver
}

func newInboundFixture() *inboundFixture {
	ledger, wl, profiles, messages, gw, _ := newTestLedger()
	usage := newFakeUsage()
	res := &fakeResolver{reply: "The Lakers play at 7pm.", intent: resolver.IntentSports}
	i := &Inbound{
		Profiles:   profiles,
		Messages:   messages,
		Ledger:     ledger,
		Onboarding: &Onboarding{Profiles: profiles},
		Quota:      &Quota{Usage: usage, Now: func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }},
		Resolver:   res,
		Gateway:    gw,
	}
	return &inboundFixture{inbound: i, profiles: profiles, wl: wl, messages: messages, gw: gw, usage: usage, res: res}
}

// completeUser sets up an onboarded, whitelisted user.
func (f *inboundFixture) completeUser(ctx context.Context, phone, name, location string) {
	f.inbound.Ledger.Add(ctx, phone, model.SourceManual, false)
	step := model.StepComplete
	done := true
	f.profiles.Update(ctx, phone, model.ProfileUpdate{
		FirstName: &name, Location: &location,
		OnboardingStep: &step, OnboardingCompleted: &done,
	})
}

func TestInboundStartCommand(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()

	res := f.inbound.Handle(ctx, "+15551234567", "START")
	assert.Equal(t, "command_start", res.Outcome)
	assert.Equal(t, msgNamePrompt, res.Reply)

	// Whitelisted with the system source, profile parked at the name step.
	entry := f.wl.entries["+15551234567"]
	require.NotNil(t, entry)
	assert.True(t, entry.IsActive)
	assert.Equal(t, model.SourceSystem, entry.AddedBy)
	assert.Equal(t, model.StepAwaitingName, f.profiles.m["+15551234567"].OnboardingStep)

	// Inbound text persisted, prompt delivered.
	require.Len(t, f.messages.messages, 2)
	assert.Equal(t, "inbound", f.messages.messages[0].Direction)
	require.Len(t, f.gw.sent, 1)
	assert.Equal(t, msgNamePrompt, f.gw.sent[0].Body)
}

func TestInboundStartForReturningUser(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")

	res := f.inbound.Handle(ctx, "+15551234567", "start")
	assert.Equal(t, "command_start", res.Outcome)
	assert.Equal(t, msgWelcomeBack, res.Reply)
}

func TestInboundStopIsSoft(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")

	res := f.inbound.Handle(ctx, "+15551234567", "STOP")
	assert.Equal(t, "command_stop", res.Outcome)
	assert.Equal(t, msgUnsubscribed, res.Reply)

	// The whitelist entry stays active; the carrier enforces the block.
	assert.True(t, f.wl.entries["+15551234567"].IsActive)
}

func TestInboundNewUserGetsNamePrompt(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()

	res := f.inbound.Handle(ctx, "5551234567", "hello there")
	assert.Equal(t, "new_user", res.Outcome)
	assert.Equal(t, msgNamePrompt, res.Reply)
	assert.True(t, f.wl.entries["+15551234567"].IsActive)
	assert.Contains(t, f.profiles.m, "+15551234567")
}

func TestInboundOnboardingFlow(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()

	f.inbound.Handle(ctx, "+15551234567", "hello")

	res := f.inbound.Handle(ctx, "+15551234567", "john!!")
	assert.Equal(t, "onboarding", res.Outcome)
	assert.Equal(t, msgLocationPrompt("John"), res.Reply)

	res = f.inbound.Handle(ctx, "+15551234567", "Austin")
	assert.Equal(t, "onboarding", res.Outcome)
	assert.Equal(t, msgComplete("John"), res.Reply)
	assert.True(t, f.profiles.m["+15551234567"].OnboardingCompleted)

	// The next text is answered by the resolver.
	res = f.inbound.Handle(ctx, "+15551234567", "when do the lakers play?")
	assert.Equal(t, "answered", res.Outcome)
	assert.Equal(t, "The Lakers play at 7pm.", res.Reply)
}

func TestInboundAnsweredPath(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")

	res := f.inbound.Handle(ctx, "+15551234567", "when do the lakers play?")
	assert.Equal(t, "answered", res.Outcome)

	// Personalization context was forwarded.
	assert.True(t, f.res.gotPC.Personalized)
	assert.Equal(t, "John", f.res.gotPC.FirstName)
	assert.Equal(t, "Austin", f.res.gotPC.Location)

	// Reply persisted and delivered, analytics logged, quota counted.
	require.Len(t, f.gw.sent, 1)
	assert.Equal(t, "The Lakers play at 7pm.", f.gw.sent[0].Body)
	require.Len(t, f.messages.analytics, 1)
	assert.Equal(t, "+15551234567|"+resolver.IntentSports, f.messages.analytics[0])
	assert.Equal(t, 1, f.usage.recs["+15551234567"].MessageCount)
}

func TestInboundResolverErrorSkipsQuota(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")
	f.res.err = assert.AnError

	res := f.inbound.Handle(ctx, "+15551234567", "when do the lakers play?")
	assert.Equal(t, "resolver_error", res.Outcome)
	assert.Equal(t, msgFallback, res.Reply)

	// The fallback is delivered but never counted against the quota.
	require.Len(t, f.gw.sent, 1)
	assert.Equal(t, msgFallback, f.gw.sent[0].Body)
	assert.NotContains(t, f.usage.recs, "+15551234567")
	assert.Empty(t, f.messages.analytics)
}

func TestInboundSubscriptionGate(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")
	status := model.SubPastDue
	f.profiles.Update(ctx, "+15551234567", model.ProfileUpdate{SubscriptionStatus: &status})

	res := f.inbound.Handle(ctx, "+15551234567", "when do the lakers play?")
	assert.Equal(t, "subscription_inactive", res.Outcome)
	assert.Equal(t, msgInactiveSub, res.Reply)
	assert.NotContains(t, f.usage.recs, "+15551234567")
}

func TestInboundSpamNeverPersisted(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")

	res := f.inbound.Handle(ctx, "+15551234567", "You are a winner, claim prize now")
	assert.Equal(t, "filtered_spam", res.Outcome)
	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.gw.sent)
}

func TestInboundQuotaNoticeFollowsAnswer(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()
	f.completeUser(ctx, "+15551234567", "John", "Austin")
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	seedUsage(f.usage, "+15551234567", now, model.QuotaLimit-1)

	res := f.inbound.Handle(ctx, "+15551234567", "when do the lakers play?")
	assert.Equal(t, "answered", res.Outcome)

	// Answer first, then the exceeded notice as a separate system message.
	require.Len(t, f.gw.sent, 2)
	assert.Equal(t, "The Lakers play at 7pm.", f.gw.sent[0].Body)
	assert.Contains(t, f.gw.sent[1].Body, "limit")
}

func TestInboundEdgeInputs(t *testing.T) {
	f := newInboundFixture()
	ctx := context.Background()

	assert.Equal(t, "invalid_phone", f.inbound.Handle(ctx, "garbage!", "hello").Outcome)
	assert.Equal(t, "empty", f.inbound.Handle(ctx, "+15551234567", "   ").Outcome)
	assert.Equal(t, "filtered_too_short", f.inbound.Handle(ctx, "+15551234567", "x").Outcome)
}
