package model

import "time"

// Whitelist add/remove sources recorded on every transition.
const (
	SourceManual          = "manual"
	SourceSystem          = "system"
	SourceStripeSub       = "stripe_subscription"
	SourceStripePayment   = "stripe_payment"
	SourceLegacyMigration = "legacy_migration"
	SourceAdmin           = "admin"
)

// Whitelist event actions.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// WhitelistEntry represents a row in the `whitelist` table.  One row
// exists per canonical phone key; rows are never deleted.  A removed
// number keeps its row with IsActive=false so that every add/remove
// is a logged transition rather than a destructive write.
//
// Fields:
//  Phone    – canonical phone key (primary key).
//  IsActive – whether the number may currently use the service.
//  AddedBy  – source of the most recent activation (one of the Source* constants).
//  AddedAt  – when the most recent activation happened.
type WhitelistEntry struct {
	Phone    string    // whitelist.phone
	IsActive bool      // whitelist.is_active
	AddedBy  string    // whitelist.added_by
	AddedAt  time.Time // whitelist.added_at
}

// WhitelistEvent is an append-only audit row in `whitelist_events`.
// Exactly one event is written per actual state transition; idempotent
// no-op calls do not produce events.
type WhitelistEvent struct {
	ID        uint64    // whitelist_events.id
	Phone     string    // whitelist_events.phone
	Action    string    // whitelist_events.action ("added" | "removed")
	Source    string    // whitelist_events.source
	CreatedAt time.Time // whitelist_events.created_at
}

// WhitelistStats aggregates membership counts for the admin API.
type WhitelistStats struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Total    int `json:"total"`
}
