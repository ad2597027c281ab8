package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserIDClaimForms(t *testing.T) {
	c := newTestContext(t)
	_, err := getUserID(c)
	assert.ErrorIs(t, err, errNoIdentity)

	// JWT numeric claims arrive as float64.
	c.Set("user_id", float64(42))
	id, err := getUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "17")
	id, err = getUserID(c)
	assert.NoError(t, err)
	assert.Equal(t, uint64(17), id)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.ErrorIs(t, err, errNoIdentity)
}

func TestResolveHolderPrefersToken(t *testing.T) {
	c := newTestContext(t)
	assert.Equal(t, "anon-abc", resolveHolder(c, " anon-abc "))
	assert.Equal(t, "", resolveHolder(c, "  "))

	// A logged in user always acts as themselves, even when the body
	// names a different holder.
	c.Set("user_id", float64(9))
	assert.Equal(t, "user-9", resolveHolder(c, "anon-abc"))
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeIDs([]uint64{3, 1, 3, 0, 2, 1}))
	assert.Empty(t, dedupeIDs([]uint64{0, 0}))
}

func TestMissingAndIntersect(t *testing.T) {
	requested := []uint64{1, 2, 3, 4}
	assert.Equal(t, []uint64{2, 4}, missingIDs(requested, []uint64{1, 3}))
	assert.Equal(t, []uint64{1, 3}, intersectIDs(requested, []uint64{3, 1, 9}))
	assert.Empty(t, missingIDs(requested, requested))
	assert.Empty(t, intersectIDs(requested, nil))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("rider@example.com"))
	assert.False(t, validEmail("rider"))
	assert.False(t, validEmail("@example.com"))
	assert.False(t, validEmail("rider@"))
	assert.False(t, validEmail("rid er@example.com"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "8h 30m", formatDuration(8*time.Hour+30*time.Minute))
	assert.Equal(t, "10h 0m", formatDuration(10*time.Hour))
	assert.Equal(t, "0h 45m", formatDuration(45*time.Minute))
}
