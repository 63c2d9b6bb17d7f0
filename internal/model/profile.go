package model

import "time"

// Onboarding steps for a user profile.  The sequence is linear: a
// profile is created at StepAwaitingName and advances one step per
// valid answer until StepComplete.
const (
	StepNew              = 0 // onboarding not started
	StepAwaitingName     = 1 // waiting for the user's first name
	StepAwaitingLocation = 2 // waiting for the user's city or zip
	StepComplete         = 3 // onboarding finished
)

// Subscription status values mirrored from the billing provider.
const (
	SubInactive = "inactive"
	SubTrialing = "trialing"
	SubActive   = "active"
	SubPastDue  = "past_due"
	SubUnpaid   = "unpaid"
	SubCanceled = "canceled"
)

// UserProfile represents a row in the `user_profiles` table.  One
// profile exists per canonical phone key and is created lazily on
// first contact (inbound SMS or billing event).  Profiles are never
// deleted; deactivation is expressed through the whitelist instead.
//
// Fields:
//  Phone               – canonical phone key (primary key).
//  FirstName           – collected during onboarding (nullable).
//  Location            – free-text city/zip collected during onboarding (nullable).
//  OnboardingStep      – one of the Step* constants above.
//  OnboardingCompleted – true iff OnboardingStep == StepComplete.
//  BillingCustomerID   – external billing customer id (nullable).
//  SubscriptionStatus  – one of the Sub* constants above.
//  SubscriptionID      – external subscription id (nullable).
//  TrialEnd            – end of the billing trial, if any (nullable).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type UserProfile struct {
	Phone               string     // user_profiles.phone
	FirstName           *string    // user_profiles.first_name (nullable)
	Location            *string    // user_profiles.location (nullable)
	OnboardingStep      int        // user_profiles.onboarding_step
	OnboardingCompleted bool       // user_profiles.onboarding_completed
	BillingCustomerID   *string    // user_profiles.billing_customer_id (nullable)
	SubscriptionStatus  string     // user_profiles.subscription_status
	SubscriptionID      *string    // user_profiles.subscription_id (nullable)
	TrialEnd            *time.Time // user_profiles.trial_end (nullable)
	CreatedAt           time.Time  // user_profiles.created_at
	UpdatedAt           time.Time  // user_profiles.updated_at
}

// ProfileUpdate enumerates the mutable profile fields.  Only non-nil
// fields are written, so callers state exactly what they change and
// nothing else can drift in through an untyped map.
type ProfileUpdate struct {
	FirstName           *string
	Location            *string
	OnboardingStep      *int
	OnboardingCompleted *bool
	BillingCustomerID   *string
	SubscriptionStatus  *string
	SubscriptionID      *string
	ClearSubscriptionID bool // set subscription_id to NULL
	TrialEnd            *time.Time
}
