package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/model"
)

// CancelBooking handles POST /v1/bookings/:id/cancel.  Only CONFIRMED
// bookings can be cancelled; the refund is computed server-side from
// the time remaining until departure and written in the same
// transaction that flips the status, so a booking can never end up
// cancelled without its refund record or vice versa.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		HolderID string `json:"holder_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	caller := resolveHolder(c, body.HolderID)

	ctx := c.Request().Context()
	tx, err := h.BookingRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := h.BookingRepo.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	// Ownership is only enforceable when the booking recorded a holder.
	if booking.HolderID != nil && *booking.HolderID != caller {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "booking belongs to another holder"})
	}
	if !model.CanTransition(booking.Status, model.StatusCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":  "booking cannot be cancelled",
			"status": booking.Status,
		})
	}

	trip, err := h.TripRepo.GetByID(ctx, booking.TripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	hoursUntilDeparture := time.Until(trip.DepartureTime.UTC()).Hours()
	amount, reason := model.ComputeRefund(booking.TotalAmountCents, h.FeeCents, hoursUntilDeparture)

	refund := &model.Refund{
		BookingID:   booking.ID,
		AmountCents: amount,
		Currency:    "INR",
		Status:      "PROCESSED",
		Reason:      reason,
	}
	if err := h.RefundRepo.CreateTx(ctx, tx, refund); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record refund"})
	}
	if err := h.BookingRepo.UpdateStatusTx(ctx, tx, booking.ID, model.StatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Hub.Publish(booking.TripID)
	if h.Registry != nil {
		go h.notifySeatsReleased(trip, booking.SeatIDs)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"item":   bookingView(booking),
		"status": model.StatusCancelled,
		"refund": refund,
	})
}

// notifySeatsReleased fires seat-availability subscriptions for every
// seat freed by a cancellation.  It runs after commit, off the
// request path.
func (h *BookingHandler) notifySeatsReleased(trip *model.Trip, seatIDs []uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	seats, err := h.SeatRepo.GetByIDs(ctx, seatIDs)
	if err != nil {
		log.Printf("booking: loading released seats failed: %v", err)
		return
	}
	for _, s := range seats {
		h.Registry.NotifyReleased(ctx, trip, s.SeatNumber)
	}
}
