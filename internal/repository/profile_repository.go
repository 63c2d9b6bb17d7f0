package repository

import (
	"context"
	"database/sql"

	"github.com/relayline/sms-assistant/internal/model"
)

// ProfileRepo provides access to the user_profiles table.  Profiles
// are keyed by canonical phone and created lazily; they are never
// deleted.  All timestamp fields are stored in UTC.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = `phone, first_name, location, onboarding_step, onboarding_completed,
	billing_customer_id, subscription_status, subscription_id, trial_end, created_at, updated_at`

// Get fetches a profile by canonical phone. Returns ErrNotFound when
// no row exists.
func (r *ProfileRepo) Get(ctx context.Context, phone string) (*model.UserProfile, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE phone=? LIMIT 1", phone)
	return scanProfile(row)
}

// FindByCustomerID fetches a profile by its stored billing customer id.
func (r *ProfileRepo) FindByCustomerID(ctx context.Context, customerID string) (*model.UserProfile, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM user_profiles WHERE billing_customer_id=? LIMIT 1", customerID)
	return scanProfile(row)
}

// CreateIfAbsent inserts a fresh profile at the awaiting-name step
// unless one already exists. INSERT IGNORE makes the call safe to race
// from concurrent webhook workers; whichever insert lands first wins
// and the loser reads the existing row.
func (r *ProfileRepo) CreateIfAbsent(ctx context.Context, phone string) (*model.UserProfile, error) {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_profiles (phone, onboarding_step, subscription_status) VALUES (?,?,?)",
		phone, model.StepAwaitingName, model.SubInactive)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, phone)
}

// Update applies a typed partial update. Only fields set on the update
// struct are written, so callers cannot drift columns in through an
// untyped map.
func (r *ProfileRepo) Update(ctx context.Context, phone string, u model.ProfileUpdate) error {
	set := ""
	args := make([]interface{}, 0, 8)
	add := func(col string, v interface{}) {
		if set != "" {
			set += ", "
		}
		set += col + "=?"
		args = append(args, v)
	}
	if u.FirstName != nil {
		add("first_name", *u.FirstName)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.OnboardingStep != nil {
		add("onboarding_step", *u.OnboardingStep)
	}
	if u.OnboardingCompleted != nil {
		add("onboarding_completed", *u.OnboardingCompleted)
	}
	if u.BillingCustomerID != nil {
		add("billing_customer_id", *u.BillingCustomerID)
	}
	if u.SubscriptionStatus != nil {
		add("subscription_status", *u.SubscriptionStatus)
	}
	if u.ClearSubscriptionID {
		add("subscription_id", nil)
	} else if u.SubscriptionID != nil {
		add("subscription_id", *u.SubscriptionID)
	}
	if u.TrialEnd != nil {
		add("trial_end", *u.TrialEnd)
	}
	if set == "" {
		return nil
	}
	args = append(args, phone)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE user_profiles SET "+set+", updated_at=NOW() WHERE phone=?", args...)
	return err
}

func scanProfile(row *sql.Row) (*model.UserProfile, error) {
	var (
		p          model.UserProfile
		firstName  sql.NullString
		location   sql.NullString
		customerID sql.NullString
		subID      sql.NullString
		trialEnd   sql.NullTime
	)
	err := row.Scan(&p.Phone, &firstName, &location, &p.OnboardingStep, &p.OnboardingCompleted,
		&customerID, &p.SubscriptionStatus, &subID, &trialEnd, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if firstName.Valid {
		p.FirstName = &firstName.String
	}
	if location.Valid {
		p.Location = &location.String
	}
	if customerID.Valid {
		p.BillingCustomerID = &customerID.String
	}
	if subID.Valid {
		p.SubscriptionID = &subID.String
	}
	if trialEnd.Valid {
		t := trialEnd.Time.UTC()
		p.TrialEnd = &t
	}
	return &p, nil
}

// AppendOnboardingStep writes one onboarding_log row. The log is
// append-only and used for audit replay, not correctness.
func (r *ProfileRepo) AppendOnboardingStep(ctx context.Context, phone string, step int, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO onboarding_log (phone, step, value) VALUES (?,?,?)",
		phone, step, value)
	return err
}
