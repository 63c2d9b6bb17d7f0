package repository

import (
	"context"
	"database/sql"
)

// StripeEventRepo appends rows to the stripe_events audit table.  One
// row is written per received billing event regardless of outcome,
// including events that resolved to no phone, so the full webhook
// history can be replayed.
type StripeEventRepo struct{ DB *sql.DB }

func NewStripeEventRepo(db *sql.DB) *StripeEventRepo { return &StripeEventRepo{DB: db} }

// Append writes one event row. phone and detail may be empty.
func (r *StripeEventRepo) Append(ctx context.Context, kind, customerID, phone, detail string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO stripe_events (kind, customer_id, phone, detail) VALUES (?,?,?,?)",
		kind, customerID, phone, detail)
	return err
}
