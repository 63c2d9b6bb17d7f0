package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/sms-assistant/internal/model"
)

func newTestBilling() (*Billing, *fakeWhitelist, *fakeProfiles, *fakeGateway, *fakeStripeEvents, *fakePublisher) {
	ledger, wl, profiles, _, gw, pub := newTestLedger()
	events := &fakeStripeEvents{}
	b := &Billing{
		Profiles:  profiles,
		Events:    events,
		Ledger:    ledger,
		Publisher: pub,
	}
	return b, wl, profiles, gw, events, pub
}

func TestBillingSubscriptionCreated(t *testing.T) {
	b, wl, profiles, gw, events, pub := newTestBilling()
	ctx := context.Background()

	trialEnd := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	outcome := b.HandleEvent(ctx, BillingEvent{
		Kind:           EventSubCreated,
		CustomerID:     "cus_123",
		SubscriptionID: "sub_456",
		Status:         model.SubTrialing,
		MetadataPhone:  "+15551234567",
		TrialEnd:       &trialEnd,
	})
	assert.Equal(t, "ok", outcome)

	prof := profiles.m["+15551234567"]
	require.NotNil(t, prof)
	require.NotNil(t, prof.BillingCustomerID)
	assert.Equal(t, "cus_123", *prof.BillingCustomerID)
	assert.Equal(t, model.SubTrialing, prof.SubscriptionStatus)
	require.NotNil(t, prof.SubscriptionID)
	assert.Equal(t, "sub_456", *prof.SubscriptionID)
	require.NotNil(t, prof.TrialEnd)
	assert.True(t, prof.TrialEnd.Equal(trialEnd))

	// Subscription creation whitelists the number and sends the welcome.
	assert.True(t, wl.entries["+15551234567"].IsActive)
	assert.Equal(t, model.SourceStripeSub, wl.entries["+15551234567"].AddedBy)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, msgNamePrompt, gw.sent[0].Body)

	require.Len(t, events.rows, 1)
	require.Len(t, pub.billing, 1)
	assert.Equal(t, EventSubCreated, pub.billing[0].Kind)
}

func TestBillingCancelRemovesAndGoodbyeOnce(t *testing.T) {
	b, wl, profiles, gw, events, _ := newTestBilling()
	ctx := context.Background()

	b.HandleEvent(ctx, BillingEvent{
		Kind: EventSubCreated, CustomerID: "cus_123", SubscriptionID: "sub_456",
		Status: model.SubActive, MetadataPhone: "+15551234567",
	})
	gw.sent = nil

	ev := BillingEvent{
		Kind: EventSubUpdated, CustomerID: "cus_123", SubscriptionID: "sub_456",
		Status: model.SubCanceled, MetadataPhone: "+15551234567",
	}
	assert.Equal(t, "ok", b.HandleEvent(ctx, ev))
	assert.Equal(t, model.SubCanceled, profiles.m["+15551234567"].SubscriptionStatus)
	assert.False(t, wl.entries["+15551234567"].IsActive)
	require.Len(t, gw.sent, 1)
	assert.Equal(t, msgGoodbye, gw.sent[0].Body)

	// Replay of the same cancellation: audited, but no second goodbye
	// and no extra whitelist event.
	before := len(wl.events)
	assert.Equal(t, "ok", b.HandleEvent(ctx, ev))
	assert.Len(t, gw.sent, 1)
	assert.Len(t, wl.events, before)
	assert.Len(t, events.rows, 3)
}

func TestBillingSubscriptionDeleted(t *testing.T) {
	b, wl, profiles, _, _, _ := newTestBilling()
	ctx := context.Background()

	b.HandleEvent(ctx, BillingEvent{
		Kind: EventSubCreated, CustomerID: "cus_123", SubscriptionID: "sub_456",
		Status: model.SubActive, MetadataPhone: "+15551234567",
	})
	b.HandleEvent(ctx, BillingEvent{
		Kind: EventSubDeleted, CustomerID: "cus_123", MetadataPhone: "+15551234567",
	})

	prof := profiles.m["+15551234567"]
	assert.Equal(t, model.SubCanceled, prof.SubscriptionStatus)
	assert.Nil(t, prof.SubscriptionID)
	assert.False(t, wl.entries["+15551234567"].IsActive)
}

func TestBillingPhoneResolutionOrder(t *testing.T) {
	b, _, profiles, _, events, _ := newTestBilling()
	ctx := context.Background()

	// Falls back to the customer record phone when metadata is empty.
	outcome := b.HandleEvent(ctx, BillingEvent{
		Kind: EventSubCreated, CustomerID: "cus_a", Status: model.SubActive,
		CustomerPhone: "5550001111",
	})
	assert.Equal(t, "ok", outcome)
	assert.Contains(t, profiles.m, "+15550001111")

	// Falls back to a stored customer id when both phones are empty.
	outcome = b.HandleEvent(ctx, BillingEvent{
		Kind: EventPaymentSucceeded, CustomerID: "cus_a",
	})
	assert.Equal(t, "ok", outcome)
	assert.Equal(t, model.SubActive, profiles.m["+15550001111"].SubscriptionStatus)

	// No phone anywhere: audited, nothing mutated.
	outcome = b.HandleEvent(ctx, BillingEvent{Kind: EventSubCreated, CustomerID: "cus_unknown"})
	assert.Equal(t, "no_phone", outcome)
	require.NotEmpty(t, events.rows)
	assert.Contains(t, events.rows[len(events.rows)-1], "no phone found")
}

func TestBillingNoticesAreNotMembershipChanges(t *testing.T) {
	b, wl, _, gw, _, _ := newTestBilling()
	ctx := context.Background()

	b.HandleEvent(ctx, BillingEvent{Kind: EventTrialWillEnd, MetadataPhone: "+15551234567"})
	b.HandleEvent(ctx, BillingEvent{Kind: EventPaymentFailed, MetadataPhone: "+15551234567"})

	require.Len(t, gw.sent, 2)
	assert.Equal(t, msgTrialEnding, gw.sent[0].Body)
	assert.Equal(t, msgPaymentFailed, gw.sent[1].Body)
	assert.Empty(t, wl.events)
}

func TestBillingUnknownKind(t *testing.T) {
	b, _, _, _, events, _ := newTestBilling()

	outcome := b.HandleEvent(context.Background(), BillingEvent{
		Kind: "invoice_finalized", MetadataPhone: "+15551234567",
	})
	assert.Equal(t, "unknown_kind", outcome)
	require.Len(t, events.rows, 1)
}
