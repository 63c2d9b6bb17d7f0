package model

import "time"

// Admin represents an operator account as stored in the `admins`
// table.  Admins authenticate against the admin API with email and
// password and receive JWT access tokens; they never interact over
// SMS.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (currently always ADMIN).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Admin struct {
	ID           uint64    // admins.id
	Email        string    // admins.email
	PasswordHash string    // admins.password_hash
	Role         string    // admins.role
	IsActive     bool      // admins.is_active
	CreatedAt    time.Time // admins.created_at
	UpdatedAt    time.Time // admins.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to an admin and carries expiry and revocation
// metadata.  The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AdminID   uint64     // refresh_tokens.admin_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
