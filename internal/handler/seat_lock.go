package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/broadcast"
	"github.com/hvugvjn/smart-ticket/internal/model"
	"github.com/hvugvjn/smart-ticket/internal/repository"
)

// SeatLockHandler serves the advisory seat lock endpoints.  A lock is
// a UX courtesy with a TTL, not a reservation: the booking
// transaction is the only authority on exclusivity, so every lock
// operation here degrades safely if a caller bypasses it entirely.
type SeatLockHandler struct {
	TripRepo *repository.TripRepo
	LockRepo *repository.SeatLockRepo
	Hub      *broadcast.Hub
	LockTTL  time.Duration
}

// NewSeatLockHandler constructs a SeatLockHandler.
func NewSeatLockHandler(tripRepo *repository.TripRepo, lockRepo *repository.SeatLockRepo, hub *broadcast.Hub, lockTTL time.Duration) *SeatLockHandler {
	if tripRepo == nil || lockRepo == nil || hub == nil {
		panic("nil dependency passed to NewSeatLockHandler")
	}
	return &SeatLockHandler{TripRepo: tripRepo, LockRepo: lockRepo, Hub: hub, LockTTL: lockTTL}
}

// Lock handles POST /v1/trips/:id/seats/:seatID/lock.  The holder
// comes from the JWT when present, otherwise from the request body.
// A guest with neither is minted a fresh holder id, returned in the
// response; the client must reuse it for further locks, unlocks and
// the booking itself.  Re-locking a seat the caller already holds
// refreshes the TTL; a seat held by someone else returns 409 with the
// masked holder.
func (h *SeatLockHandler) Lock(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seatID, err := pathID(c, "seatID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		HolderID string `json:"holder_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	holder := resolveHolder(c, body.HolderID)
	if holder == "" {
		holder = "guest-" + uuid.NewString()
	}
	ctx := c.Request().Context()
	if _, err := h.TripRepo.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	lock, err := h.LockRepo.Acquire(ctx, tripID, seatID, holder, h.LockTTL)
	if err != nil {
		var held *repository.LockHeldError
		if errors.As(err, &held) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "seat is locked by another user",
				"held_by":    held.HeldBy,
				"expires_at": held.ExpiresAt.UTC().Format(time.RFC3339),
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to acquire lock"})
	}
	h.Hub.Publish(tripID)
	return c.JSON(http.StatusCreated, echo.Map{
		"seat_id":    lock.SeatID,
		"holder_id":  lock.HolderID,
		"expires_at": lock.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Unlock handles DELETE /v1/trips/:id/seats/:seatID/lock.  Releasing
// a lock you do not hold is 403; releasing an absent or expired lock
// is a no-op success so clients can unlock blindly on navigation.
func (h *SeatLockHandler) Unlock(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seatID, err := pathID(c, "seatID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		HolderID string `json:"holder_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	holder := resolveHolder(c, body.HolderID)
	if holder == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "holder_id is required"})
	}
	released, err := h.LockRepo.Release(c.Request().Context(), tripID, seatID, holder)
	if err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "lock is held by another user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release lock"})
	}
	if released {
		h.Hub.Publish(tripID)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// ListLocks handles GET /v1/trips/:id/locks.  Holder ids are masked;
// the listing exists so clients can grey out seats without polling
// the full seat map.
func (h *SeatLockHandler) ListLocks(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	locks, err := h.LockRepo.ListActive(c.Request().Context(), tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load locks"})
	}
	type lockView struct {
		SeatID    uint64 `json:"seat_id"`
		HeldBy    string `json:"held_by"`
		ExpiresAt string `json:"expires_at"`
	}
	views := make([]lockView, 0, len(locks))
	for _, l := range locks {
		views = append(views, lockView{
			SeatID:    l.SeatID,
			HeldBy:    model.MaskHolder(l.HolderID),
			ExpiresAt: l.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}
