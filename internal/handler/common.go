package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// errNoIdentity is returned by getUserID when the context carries no
// authenticated user.
var errNoIdentity = errors.New("no authenticated user")

// getUserID extracts the numeric user id stored by the JWT middleware.
// JWT numeric claims decode as float64, but string and integer forms
// are accepted too for robustness.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	if v == nil {
		return 0, errNoIdentity
	}
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return uint64(t), nil
		}
	case uint64:
		if t > 0 {
			return t, nil
		}
	case int64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errNoIdentity
}

// resolveHolder determines the principal a lock or booking operation
// acts for.  An authenticated user always acts as themselves; an
// anonymous caller must supply an explicit holder id in the request
// body.  The returned string is empty when neither is available.
func resolveHolder(c echo.Context, bodyHolder string) string {
	if uid, err := getUserID(c); err == nil {
		return fmt.Sprintf("user-%d", uid)
	}
	return strings.TrimSpace(bodyHolder)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// dedupeIDs drops zero and duplicate ids while preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// missingIDs returns the requested ids that are absent from found.
func missingIDs(requested, found []uint64) []uint64 {
	have := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	missing := make([]uint64, 0)
	for _, id := range requested {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// intersectIDs returns the requested ids that are present in other.
func intersectIDs(requested, other []uint64) []uint64 {
	have := make(map[uint64]struct{}, len(other))
	for _, id := range other {
		have[id] = struct{}{}
	}
	out := make([]uint64, 0)
	for _, id := range requested {
		if _, ok := have[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// validEmail performs the same minimal shape check the clients do.
// Real verification happens when the address receives a message.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
