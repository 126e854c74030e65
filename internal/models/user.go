package models

import "time"

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"-"`

	IsVerified bool `json:"is_verified"`
	IsActive   bool `json:"is_active"`
	IsStaff    bool `json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Delivery bookkeeping for the verification email. LastAttempt and
	// Attempts move on every send attempt, LastSuccess only on a delivered
	// send. Mutated only by the delivery job and the verify endpoint.
	VerificationEmailLastAttempt *time.Time `json:"verification_email_last_attempt,omitempty"`
	VerificationEmailLastSuccess *time.Time `json:"verification_email_last_success,omitempty"`
	VerificationEmailAttempts    int        `json:"verification_email_attempts"`

	// Opaque refresh token storage, rotated on every refresh.
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"` // username or email, either works
	Password string `json:"password"`
}
