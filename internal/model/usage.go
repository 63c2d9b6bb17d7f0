package model

import "time"

// QuotaLimit is the advisory monthly outbound message limit.  Usage is
// tracked against it but sends are not blocked when it is reached.
const QuotaLimit = 300

// MonthlyUsage represents a row in the `monthly_sms_usage` table.  The
// 30-day window is rolling, anchored at UTC midnight of the day the
// tracker first saw the phone in the current window, not aligned to
// calendar months.  Exactly one row per phone contains "now" at any
// instant.
//
// Fields:
//  Phone             – canonical phone key.
//  PeriodStart       – UTC midnight anchoring the window (part of the primary key).
//  PeriodEnd         – PeriodStart + 30 days.
//  MessageCount      – outbound messages counted within the window; only increases.
//  QuotaWarningsSent – number of warning notices sent for this window.
//  QuotaExceeded     – set once MessageCount reaches QuotaLimit.
type MonthlyUsage struct {
	Phone             string    // monthly_sms_usage.phone
	PeriodStart       time.Time // monthly_sms_usage.period_start
	PeriodEnd         time.Time // monthly_sms_usage.period_end
	MessageCount      int       // monthly_sms_usage.message_count
	QuotaWarningsSent int       // monthly_sms_usage.quota_warnings_sent
	QuotaExceeded     bool      // monthly_sms_usage.quota_exceeded
}

// UsageInfo is returned to callers after recording an outbound send.
type UsageInfo struct {
	Count         int `json:"count"`
	Limit         int `json:"limit"`
	Remaining     int `json:"remaining"`
	DaysRemaining int `json:"days_remaining"`
}
