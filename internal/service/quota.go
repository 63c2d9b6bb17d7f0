package service

import (
	"context"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
)

// quotaWarnAt is the remaining-message threshold at which a single
// advisory warning is synthesized for the current window.
const quotaWarnAt = 20

// Quota tracks outbound assistant replies against a rolling 30-day
// window per phone. The limit is advisory: usage keeps incrementing
// past it and sends are never blocked. System-originated messages
// (prompts, command acknowledgments, billing notices) must not be
// recorded here at all.
type Quota struct {
	Usage UsageStore
	Now   func() time.Time // injectable clock for tests; defaults to time.Now
}

func (q *Quota) now() time.Time {
	if q.Now != nil {
		return q.Now().UTC()
	}
	return time.Now().UTC()
}

// RecordOutgoing counts one assistant reply for the phone's current
// window and returns the resulting usage along with an advisory notice
// text ("" when no threshold was crossed by this send). Equality
// against the thresholds means each notice fires exactly once per
// window because the counter is monotone.
func (q *Quota) RecordOutgoing(ctx context.Context, key string) (model.UsageInfo, string, error) {
	now := q.now()
	rec, err := q.Usage.Increment(ctx, key, now)
	if err != nil {
		return model.UsageInfo{}, "", err
	}
	remaining := model.QuotaLimit - rec.MessageCount
	if remaining < 0 {
		remaining = 0
	}
	days := int(rec.PeriodEnd.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	info := model.UsageInfo{
		Count:         rec.MessageCount,
		Limit:         model.QuotaLimit,
		Remaining:     remaining,
		DaysRemaining: days,
	}

	notice := ""
	switch {
	case rec.MessageCount == model.QuotaLimit:
		if err := q.Usage.MarkExceeded(ctx, key, rec.PeriodStart); err != nil {
			return info, "", err
		}
		if err := q.Usage.MarkWarned(ctx, key, rec.PeriodStart); err != nil {
			return info, "", err
		}
		notice = msgQuotaExceeded(info.Count, info.DaysRemaining)
	case remaining == quotaWarnAt:
		if err := q.Usage.MarkWarned(ctx, key, rec.PeriodStart); err != nil {
			return info, "", err
		}
		notice = msgQuotaWarning(info.Count, info.Remaining, info.DaysRemaining)
	}
	return info, notice, nil
}
