package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/relayline/sms-assistant/internal/model"
)

// UsageRepo provides access to the monthly_sms_usage table.  Each row
// is a rolling 30-day window keyed by (phone, period_start), anchored
// at UTC midnight of the day the phone was first seen inside the
// window.  message_count only ever increases within a window.
type UsageRepo struct{ DB *sql.DB }

func NewUsageRepo(db *sql.DB) *UsageRepo { return &UsageRepo{DB: db} }

// Increment bumps the counter for the window containing now, creating
// the window first when none covers it. The INSERT IGNORE on the
// (phone, period_start) key makes concurrent first sends collapse onto
// a single row, and the UPDATE is unconditional addition so racing
// increments both land.
func (r *UsageRepo) Increment(ctx context.Context, phoneKey string, now time.Time) (*model.MonthlyUsage, error) {
	now = now.UTC()
	rec, err := r.current(ctx, phoneKey, now)
	if err == ErrNotFound {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end := start.Add(30 * 24 * time.Hour)
		if _, err := r.DB.ExecContext(ctx,
			"INSERT IGNORE INTO monthly_sms_usage (phone, period_start, period_end) VALUES (?,?,?)",
			phoneKey, start, end); err != nil {
			return nil, err
		}
		rec, err = r.current(ctx, phoneKey, now)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE monthly_sms_usage SET message_count=message_count+1 WHERE phone=? AND period_start=?",
		phoneKey, rec.PeriodStart); err != nil {
		return nil, err
	}
	return r.current(ctx, phoneKey, now)
}

// MarkWarned bumps the warning counter for a window.
func (r *UsageRepo) MarkWarned(ctx context.Context, phoneKey string, periodStart time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE monthly_sms_usage SET quota_warnings_sent=quota_warnings_sent+1 WHERE phone=? AND period_start=?",
		phoneKey, periodStart)
	return err
}

// MarkExceeded flags a window as having reached the limit. The WHERE
// predicate keeps the write idempotent under races.
func (r *UsageRepo) MarkExceeded(ctx context.Context, phoneKey string, periodStart time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE monthly_sms_usage SET quota_exceeded=1 WHERE phone=? AND period_start=? AND quota_exceeded=0",
		phoneKey, periodStart)
	return err
}

// current returns the window whose [period_start, period_end) contains now.
func (r *UsageRepo) current(ctx context.Context, phoneKey string, now time.Time) (*model.MonthlyUsage, error) {
	var u model.MonthlyUsage
	err := r.DB.QueryRowContext(ctx,
		`SELECT phone, period_start, period_end, message_count, quota_warnings_sent, quota_exceeded
		 FROM monthly_sms_usage WHERE phone=? AND period_start<=? AND period_end>? LIMIT 1`,
		phoneKey, now, now).Scan(&u.Phone, &u.PeriodStart, &u.PeriodEnd, &u.MessageCount,
		&u.QuotaWarningsSent, &u.QuotaExceeded)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.PeriodStart = u.PeriodStart.UTC()
	u.PeriodEnd = u.PeriodEnd.UTC()
	return &u, nil
}
