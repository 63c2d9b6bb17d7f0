package service

import (
	"context"
	"errors"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
	"github.com/relayline/sms-assistant/internal/queue"
	"github.com/relayline/sms-assistant/internal/repository"
	"github.com/relayline/sms-assistant/internal/resolver"
)

// In-memory store fakes. Single-goroutine tests only; no locking.

type fakeProfiles struct {
	m        map[string]*model.UserProfile
	stepLogs []string
	updErr   error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{m: map[string]*model.UserProfile{}}
}

func (f *fakeProfiles) Get(_ context.Context, phone string) (*model.UserProfile, error) {
	p, ok := f.m[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) FindByCustomerID(_ context.Context, customerID string) (*model.UserProfile, error) {
	for _, p := range f.m {
		if p.BillingCustomerID != nil && *p.BillingCustomerID == customerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) CreateIfAbsent(_ context.Context, phone string) (*model.UserProfile, error) {
	if p, ok := f.m[phone]; ok {
		cp := *p
		return &cp, nil
	}
	now := time.Now().UTC()
	p := &model.UserProfile{
		Phone:              phone,
		OnboardingStep:     model.StepAwaitingName,
		SubscriptionStatus: model.SubInactive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.m[phone] = p
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Update(_ context.Context, phone string, u model.ProfileUpdate) error {
	if f.updErr != nil {
		return f.updErr
	}
	p, ok := f.m[phone]
	if !ok {
		return nil
	}
	if u.FirstName != nil {
		p.FirstName = u.FirstName
	}
	if u.Location != nil {
		p.Location = u.Location
	}
	if u.OnboardingStep != nil {
		p.OnboardingStep = *u.OnboardingStep
	}
	if u.OnboardingCompleted != nil {
		p.OnboardingCompleted = *u.OnboardingCompleted
	}
	if u.BillingCustomerID != nil {
		p.BillingCustomerID = u.BillingCustomerID
	}
	if u.SubscriptionStatus != nil {
		p.SubscriptionStatus = *u.SubscriptionStatus
	}
	if u.ClearSubscriptionID {
		p.SubscriptionID = nil
	} else if u.SubscriptionID != nil {
		p.SubscriptionID = u.SubscriptionID
	}
	if u.TrialEnd != nil {
		p.TrialEnd = u.TrialEnd
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProfiles) AppendOnboardingStep(_ context.Context, phone string, step int, value string) error {
	f.stepLogs = append(f.stepLogs, phone+"|"+value)
	return nil
}

type fakeWhitelist struct {
	entries map[string]*model.WhitelistEntry
	events  []model.WhitelistEvent
}

func newFakeWhitelist() *fakeWhitelist {
	return &fakeWhitelist{entries: map[string]*model.WhitelistEntry{}}
}

func (f *fakeWhitelist) Get(_ context.Context, phone string) (*model.WhitelistEntry, error) {
	e, ok := f.entries[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeWhitelist) Activate(_ context.Context, phone, source string) (bool, error) {
	e, ok := f.entries[phone]
	if ok && e.IsActive {
		return false, nil
	}
	f.entries[phone] = &model.WhitelistEntry{
		Phone: phone, IsActive: true, AddedBy: source, AddedAt: time.Now().UTC(),
	}
	return true, nil
}

func (f *fakeWhitelist) Deactivate(_ context.Context, phone string) (bool, error) {
	e, ok := f.entries[phone]
	if !ok || !e.IsActive {
		return false, nil
	}
	e.IsActive = false
	return true, nil
}

func (f *fakeWhitelist) AppendEvent(_ context.Context, phone, action, source string) error {
	f.events = append(f.events, model.WhitelistEvent{
		Phone: phone, Action: action, Source: source, CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (f *fakeWhitelist) Stats(_ context.Context) (model.WhitelistStats, error) {
	var s model.WhitelistStats
	for _, e := range f.entries {
		s.Total++
		if e.IsActive {
			s.Active++
		} else {
			s.Inactive++
		}
	}
	return s, nil
}

type fakeUsage struct {
	recs map[string]*model.MonthlyUsage
}

func newFakeUsage() *fakeUsage { return &fakeUsage{recs: map[string]*model.MonthlyUsage{}} }

func (f *fakeUsage) Increment(_ context.Context, phone string, now time.Time) (*model.MonthlyUsage, error) {
	now = now.UTC()
	r, ok := f.recs[phone]
	if !ok || !now.Before(r.PeriodEnd) || now.Before(r.PeriodStart) {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r = &model.MonthlyUsage{
			Phone:       phone,
			PeriodStart: start,
			PeriodEnd:   start.Add(30 * 24 * time.Hour),
		}
		f.recs[phone] = r
	}
	r.MessageCount++
	cp := *r
	return &cp, nil
}

func (f *fakeUsage) MarkWarned(_ context.Context, phone string, _ time.Time) error {
	if r, ok := f.recs[phone]; ok {
		r.QuotaWarningsSent++
	}
	return nil
}

func (f *fakeUsage) MarkExceeded(_ context.Context, phone string, _ time.Time) error {
	if r, ok := f.recs[phone]; ok {
		r.QuotaExceeded = true
	}
	return nil
}

type recordedMessage struct {
	Phone      string
	Direction  string
	Body       string
	ResponseMs int64
}

type fakeMessages struct {
	messages   []recordedMessage
	deliveries []string
	analytics  []string
}

func (f *fakeMessages) InsertInbound(_ context.Context, phone, body string) error {
	f.messages = append(f.messages, recordedMessage{Phone: phone, Direction: "inbound", Body: body})
	return nil
}

func (f *fakeMessages) InsertAssistant(_ context.Context, phone, body string, responseMs int64) error {
	f.messages = append(f.messages, recordedMessage{Phone: phone, Direction: "assistant", Body: body, ResponseMs: responseMs})
	return nil
}

func (f *fakeMessages) AppendDelivery(_ context.Context, phone, status, _ string) error {
	f.deliveries = append(f.deliveries, phone+"|"+status)
	return nil
}

func (f *fakeMessages) AppendAnalytics(_ context.Context, phone, intent string, _ int64) error {
	f.analytics = append(f.analytics, phone+"|"+intent)
	return nil
}

func (f *fakeMessages) assistantBodies() []string {
	var out []string
	for _, m := range f.messages {
		if m.Direction == "assistant" {
			out = append(out, m.Body)
		}
	}
	return out
}

type fakeStripeEvents struct {
	rows []string
}

func (f *fakeStripeEvents) Append(_ context.Context, kind, customerID, phone, detail string) error {
	f.rows = append(f.rows, kind+"|"+customerID+"|"+phone+"|"+detail)
	return nil
}

type sentText struct {
	Phone string
	Body  string
}

type fakeGateway struct {
	sent []sentText
	fail bool
}

func (f *fakeGateway) Deliver(_ context.Context, phone, text string) (model.DeliveryResult, error) {
	if f.fail {
		return model.DeliveryResult{}, errors.New("gateway down")
	}
	f.sent = append(f.sent, sentText{Phone: phone, Body: text})
	return model.DeliveryResult{Status: "queued", ProviderMessageID: "msg-1"}, nil
}

type fakeResolver struct {
	reply  string
	intent string
	err    error
	gotPC  resolver.Personalization
}

func (f *fakeResolver) Resolve(_ context.Context, _, _ string, pc resolver.Personalization) (string, string, error) {
	f.gotPC = pc
	if f.err != nil {
		return "", resolver.IntentError, f.err
	}
	return f.reply, f.intent, nil
}

type fakePublisher struct {
	whitelist []queue.WhitelistChangedEvent
	billing   []queue.BillingProcessedEvent
}

func (f *fakePublisher) PublishWhitelistChanged(_ context.Context, ev queue.WhitelistChangedEvent) error {
	f.whitelist = append(f.whitelist, ev)
	return nil
}

func (f *fakePublisher) PublishBillingProcessed(_ context.Context, ev queue.BillingProcessedEvent) error {
	f.billing = append(f.billing, ev)
	return nil
}

// newTestLedger wires a ledger over fresh fakes.
func newTestLedger() (*Ledger, *fakeWhitelist, *fakeProfiles, *fakeMessages, *fakeGateway, *fakePublisher) {
	wl := newFakeWhitelist()
	profiles := newFakeProfiles()
	messages := &fakeMessages{}
	gw := &fakeGateway{}
	pub := &fakePublisher{}
	l := &Ledger{
		Whitelist: wl,
		Profiles:  profiles,
		Messages:  messages,
		Gateway:   gw,
		Publisher: pub,
	}
	return l, wl, profiles, messages, gw, pub
}
