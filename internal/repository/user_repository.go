package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// UserRepo provides data access to the users table for the email OTP
// login flow.  The booking core never reads users directly; it only
// sees opaque holder ids carried in tokens.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, role, otp_hash, otp_expires_at, otp_attempts, last_otp_request_at, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var u model.User
	var otpHash sql.NullString
	var otpExpiresAt, lastRequestAt sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Role, &otpHash, &otpExpiresAt, &u.OTPAttempts, &lastRequestAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if otpHash.Valid {
		h := otpHash.String
		u.OTPHash = &h
	}
	if otpExpiresAt.Valid {
		t := otpExpiresAt.Time
		u.OTPExpiresAt = &t
	}
	if lastRequestAt.Valid {
		t := lastRequestAt.Time
		u.LastOTPRequestAt = &t
	}
	return &u, nil
}

// GetByEmail returns the user with the given email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetByID returns the user with the given id or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// Create inserts a new user row for the given email and populates the
// generated ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = "customer"
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (email, role) VALUES (?, ?)`, u.Email, u.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.CreatedAt = time.Now().UTC()
	return nil
}

// SetOTP stores a freshly issued (already hashed) code with its
// expiry and stamps the request time used for throttling.
func (r *UserRepo) SetOTP(ctx context.Context, email, otpHash string, expiresAt time.Time) error {
	const q = `UPDATE users
	           SET otp_hash = ?, otp_expires_at = ?, last_otp_request_at = UTC_TIMESTAMP()
	           WHERE email = ?`
	_, err := r.db.ExecContext(ctx, q, otpHash, expiresAt.UTC().Format("2006-01-02 15:04:05"), email)
	return err
}

// IncrementOTPAttempts bumps the failed-verification counter.
func (r *UserRepo) IncrementOTPAttempts(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_attempts = otp_attempts + 1 WHERE email = ?`, email)
	return err
}

// ResetOTPAttempts clears the failed-verification counter and the
// pending code after a successful login.
func (r *UserRepo) ResetOTPAttempts(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_attempts = 0, otp_hash = NULL, otp_expires_at = NULL WHERE email = ?`, email)
	return err
}
