package models

import "time"

// VerificationChallenge is the outstanding one-time code for an email.
// There is at most one live row per email.
type VerificationChallenge struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingRegistration holds signup data until the email is proven.
type PendingRegistration struct {
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"` // hashed only on verification
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
