package middleware

// identity.go defines helper functions shared across middleware files.
// It provides the user identity extraction used by rate limit keying.
// JWTAuth stores the raw "sub" claim under "user_id"; numeric JWT
// claims decode as float64, so both forms are handled here.  When no
// user is authenticated, "anon" is returned so guests share a bucket
// per IP.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts a stable user identifier from the context
// for rate limit keys. It returns "anon" when no user is
// authenticated or the claim has an unexpected shape.
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		if t > 0 {
			return strconv.FormatUint(uint64(t), 10)
		}
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return "anon"
}
