package repository

import (
	"context"
	"database/sql"

	"github.com/relayline/sms-assistant/internal/model"
)

// WhitelistRepo provides access to the whitelist and whitelist_events
// tables.  Rows are never deleted: removal flips is_active to false so
// the full membership history survives.  Activation and deactivation
// are expressed as single conditional statements so that concurrent
// webhook workers racing on the same phone can at worst produce an
// idempotent no-op, never a lost update or a duplicate event row.
type WhitelistRepo struct{ DB *sql.DB }

func NewWhitelistRepo(db *sql.DB) *WhitelistRepo { return &WhitelistRepo{DB: db} }

// Get fetches a whitelist entry by canonical phone. Returns ErrNotFound
// when the phone has never been whitelisted.
func (r *WhitelistRepo) Get(ctx context.Context, phone string) (*model.WhitelistEntry, error) {
	var e model.WhitelistEntry
	err := r.DB.QueryRowContext(ctx,
		"SELECT phone, is_active, added_by, added_at FROM whitelist WHERE phone=? LIMIT 1",
		phone).Scan(&e.Phone, &e.IsActive, &e.AddedBy, &e.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Activate makes the phone active and reports whether this call caused
// a transition. The reactivation UPDATE only matches inactive rows and
// the INSERT only lands when no row exists, so two racing calls yield
// exactly one true.
func (r *WhitelistRepo) Activate(ctx context.Context, phone, source string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE whitelist SET is_active=1, added_by=?, added_at=NOW() WHERE phone=? AND is_active=0",
		source, phone)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	res, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO whitelist (phone, is_active, added_by) VALUES (?,1,?)",
		phone, source)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Deactivate flips an active entry to inactive and reports whether
// anything changed. A phone that was never whitelisted or is already
// inactive yields false.
func (r *WhitelistRepo) Deactivate(ctx context.Context, phone string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE whitelist SET is_active=0 WHERE phone=? AND is_active=1", phone)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// AppendEvent writes one whitelist_events audit row. Callers invoke it
// only after Activate/Deactivate report a real transition, which keeps
// the log at one row per transition.
func (r *WhitelistRepo) AppendEvent(ctx context.Context, phone, action, source string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO whitelist_events (phone, action, source) VALUES (?,?,?)",
		phone, action, source)
	return err
}

// Stats returns aggregate membership counts.
func (r *WhitelistRepo) Stats(ctx context.Context) (model.WhitelistStats, error) {
	var s model.WhitelistStats
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(is_active=1),0), COALESCE(SUM(is_active=0),0), COUNT(*) FROM whitelist").
		Scan(&s.Active, &s.Inactive, &s.Total)
	return s, err
}
