package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/model"
	"github.com/hvugvjn/smart-ticket/internal/notify"
	"github.com/hvugvjn/smart-ticket/internal/repository"
	"github.com/hvugvjn/smart-ticket/internal/utils"
)

// AuthHandler implements the passwordless email OTP login flow.  A
// four digit code is issued per request, stored bcrypt-hashed, and
// exchanged for a long-lived access token on successful verification.
// Repeated failures throttle further attempts for a cool-down window.
type AuthHandler struct {
	UserRepo       *repository.UserRepo
	Notifier       notify.Notifier
	JWTSecret      string
	AccessTTLDays  int
	BcryptCost     int
	OTPTTL         time.Duration
	OTPMaxAttempts int
	OTPThrottle    time.Duration
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(userRepo *repository.UserRepo, notifier notify.Notifier, secret string, accessTTLDays, bcryptCost int, otpTTL time.Duration, otpMaxAttempts int, otpThrottle time.Duration) *AuthHandler {
	if userRepo == nil || notifier == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{
		UserRepo:       userRepo,
		Notifier:       notifier,
		JWTSecret:      secret,
		AccessTTLDays:  accessTTLDays,
		BcryptCost:     bcryptCost,
		OTPTTL:         otpTTL,
		OTPMaxAttempts: otpMaxAttempts,
		OTPThrottle:    otpThrottle,
	}
}

// throttled reports whether the user is inside the failure cool-down
// window.
func (h *AuthHandler) throttled(u *model.User) bool {
	if int(u.OTPAttempts) < h.OTPMaxAttempts {
		return false
	}
	if u.LastOTPRequestAt == nil {
		return false
	}
	return time.Now().UTC().Sub(u.LastOTPRequestAt.UTC()) < h.OTPThrottle
}

// RequestOTP handles POST /v1/auth/request-otp.  Unknown emails are
// registered on the fly; the login flow doubles as signup.
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !validEmail(email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}
	ctx := c.Request().Context()
	user, err := h.UserRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		user = &model.User{Email: email}
		if err := h.UserRepo.Create(ctx, user); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
		}
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	if h.throttled(user) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many failed attempts, try again later"})
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate code"})
	}
	hash, err := utils.HashOTP(code, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hash code"})
	}
	expiresAt := time.Now().UTC().Add(h.OTPTTL)
	if err := h.UserRepo.SetOTP(ctx, email, hash, expiresAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store code"})
	}
	if err := h.Notifier.Send(ctx, email, notify.KindOTPCode, map[string]string{"code": code}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to send code"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sent":               true,
		"expires_in_seconds": int(h.OTPTTL.Seconds()),
	})
}

// VerifyOTP handles POST /v1/auth/verify-otp.  A correct, unexpired
// code yields an access token; a wrong code burns one attempt.  The
// response deliberately does not distinguish unknown email from wrong
// code.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	code := strings.TrimSpace(body.Code)
	if !validEmail(email) || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and code are required"})
	}
	ctx := c.Request().Context()
	user, err := h.UserRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or code"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	if h.throttled(user) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many failed attempts, try again later"})
	}
	if user.OTPHash == nil || user.OTPExpiresAt == nil || time.Now().UTC().After(user.OTPExpiresAt.UTC()) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "code expired, request a new one"})
	}
	if !utils.VerifyOTP(*user.OTPHash, code) {
		_ = h.UserRepo.IncrementOTPAttempts(ctx, email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or code"})
	}
	if err := h.UserRepo.ResetOTPAttempts(ctx, email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finish login"})
	}
	token, err := utils.NewAccessToken(h.JWTSecret, user.ID, user.Email, user.Role, h.AccessTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token.Token,
		"expires_at":   token.Exp.Format(time.RFC3339),
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
