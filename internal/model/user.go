package model

import "time"

// User is the identity collaborator's record.  The booking core only
// ever sees the id as an opaque holder string; the OTP columns exist
// for the email login flow.  OTP codes are stored bcrypt-hashed.
//
// Fields:
//  ID               – primary key identifier.
//  Email            – login email, unique.
//  Role             – "customer" or "admin"; carried into the JWT.
//  OTPHash          – bcrypt hash of the last issued code, nil when none pending.
//  OTPExpiresAt     – when the pending code lapses.
//  OTPAttempts      – failed verification count since last success.
//  LastOTPRequestAt – when a code was last requested, for throttling.
//  CreatedAt        – creation timestamp.
type User struct {
	ID               uint64     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	OTPHash          *string    `json:"-"`
	OTPExpiresAt     *time.Time `json:"-"`
	OTPAttempts      uint32     `json:"-"`
	LastOTPRequestAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}
