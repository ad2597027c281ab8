package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/notify"
	"github.com/hvugvjn/smart-ticket/internal/repository"
)

// NotificationHandler serves seat-availability subscriptions.
type NotificationHandler struct {
	TripRepo *repository.TripRepo
	Registry *notify.Registry
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(tripRepo *repository.TripRepo, registry *notify.Registry) *NotificationHandler {
	if tripRepo == nil || registry == nil {
		panic("nil dependency passed to NewNotificationHandler")
	}
	return &NotificationHandler{TripRepo: tripRepo, Registry: registry}
}

// SubscribeSeat handles POST /v1/trips/:id/notify.  It registers an
// email to be told once when the given seat becomes available again.
// Repeating the same subscription is a success without a second row,
// so the response distinguishes created from already subscribed.
func (h *NotificationHandler) SubscribeSeat(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	var body struct {
		SeatNumber string `json:"seat_number"`
		Email      string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.SeatNumber = strings.TrimSpace(body.SeatNumber)
	body.Email = strings.TrimSpace(body.Email)
	if body.SeatNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number is required"})
	}
	if !validEmail(body.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.TripRepo.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	created, err := h.Registry.Subscribe(ctx, tripID, body.SeatNumber, body.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create subscription"})
	}
	if !created {
		return c.JSON(http.StatusOK, echo.Map{"subscribed": true, "already_subscribed": true})
	}
	return c.JSON(http.StatusCreated, echo.Map{"subscribed": true})
}
