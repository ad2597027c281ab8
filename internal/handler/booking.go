package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/broadcast"
	"github.com/hvugvjn/smart-ticket/internal/model"
	"github.com/hvugvjn/smart-ticket/internal/notify"
	"github.com/hvugvjn/smart-ticket/internal/queue"
	"github.com/hvugvjn/smart-ticket/internal/repository"
	queuepub "github.com/hvugvjn/smart-ticket/internal/service"
)

// BookingHandler serves booking creation, confirmation, retrieval and
// cancellation.  Creation and cancellation run inside a single
// database transaction owned by the handler; every availability check
// is repeated under row locks inside that transaction, so whatever
// the client saw on its seat map beforehand carries no authority.
type BookingHandler struct {
	TripRepo    *repository.TripRepo
	SeatRepo    *repository.SeatRepo
	BookingRepo *repository.BookingRepo
	LockRepo    *repository.SeatLockRepo
	RefundRepo  *repository.RefundRepo
	Hub         *broadcast.Hub
	Registry    *notify.Registry
	Notifier    notify.Notifier
	HoldTTL     time.Duration
	FeeCents    int64
}

// NewBookingHandler constructs a BookingHandler.  All repository and
// hub dependencies must be non-nil.
func NewBookingHandler(tripRepo *repository.TripRepo, seatRepo *repository.SeatRepo, bookingRepo *repository.BookingRepo, lockRepo *repository.SeatLockRepo, refundRepo *repository.RefundRepo, hub *broadcast.Hub, registry *notify.Registry, notifier notify.Notifier, holdTTL time.Duration, feeCents int64) *BookingHandler {
	if tripRepo == nil || seatRepo == nil || bookingRepo == nil || lockRepo == nil || refundRepo == nil || hub == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		TripRepo:    tripRepo,
		SeatRepo:    seatRepo,
		BookingRepo: bookingRepo,
		LockRepo:    lockRepo,
		RefundRepo:  refundRepo,
		Hub:         hub,
		Registry:    registry,
		Notifier:    notifier,
		HoldTTL:     holdTTL,
		FeeCents:    feeCents,
	}
}

// validatePassenger enforces the passenger record shape at the HTTP
// boundary: name and phone are required, the phone is digits only
// (6 to 15 of them), and gender comes from a closed set when given.
// Returns an empty string when valid, otherwise the error message.
func validatePassenger(p *model.Passenger) string {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	if p.Name == "" {
		return "passenger name is required"
	}
	if len(p.Phone) < 6 || len(p.Phone) > 15 {
		return "passenger phone must be 6 to 15 digits"
	}
	for _, r := range p.Phone {
		if r < '0' || r > '9' {
			return "passenger phone must contain digits only"
		}
	}
	switch p.Gender {
	case "", "male", "female", "other":
	default:
		return "passenger gender must be male, female or other"
	}
	return ""
}

// bookingView shapes a booking for JSON responses.
func bookingView(b *model.Booking) echo.Map {
	v := echo.Map{
		"id":                 b.ID,
		"trip_id":            b.TripID,
		"seat_ids":           b.SeatIDs,
		"status":             b.Status,
		"total_amount_cents": b.TotalAmountCents,
		"idempotency_key":    b.IdempotencyKey,
		"created_at":         b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.HolderID != nil {
		v["holder_id"] = *b.HolderID
	}
	if b.Passenger != nil {
		v["passenger"] = b.Passenger
	}
	if b.ExpiresAt != nil {
		v["expires_at"] = b.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if b.ConfirmedAt != nil {
		v["confirmed_at"] = b.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return v
}

// CreateBooking handles POST /v1/trips/:id/bookings.  It atomically
// reserves a set of seats under a caller-supplied idempotency key.
// The created booking is PENDING with a short hold-expiry; the caller
// must confirm before the hold lapses.  A replayed idempotency key
// returns the original booking with 200 instead of creating another.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	var body struct {
		SeatIDs        []uint64         `json:"seat_ids"`
		HolderID       string           `json:"holder_id"`
		IdempotencyKey string           `json:"idempotency_key"`
		Passenger      *model.Passenger `json:"passenger"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.IdempotencyKey = strings.TrimSpace(body.IdempotencyKey)
	if body.IdempotencyKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "idempotency_key is required"})
	}
	seatIDs := dedupeIDs(body.SeatIDs)
	if len(seatIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	}
	if body.Passenger != nil {
		if msg := validatePassenger(body.Passenger); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
		}
	}
	holder := resolveHolder(c, body.HolderID)

	ctx := c.Request().Context()
	// Idempotency short-circuit before any transaction starts.
	if existing, err := h.BookingRepo.GetByIdempotencyKey(ctx, body.IdempotencyKey); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check idempotency key"})
	} else if existing != nil {
		return c.JSON(http.StatusOK, echo.Map{"item": bookingView(existing), "idempotent_replay": true})
	}

	if _, err := h.TripRepo.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}

	// Seat ids are normalized to ascending order before any row locks
	// are taken so concurrent bookings cannot deadlock each other.
	seatIDs = repository.SortIDs(seatIDs)

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

	seats, err := h.SeatRepo.LockByIDsTx(ctx, tx, tripID, seatIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock seat rows"})
	}
	if len(seats) != len(seatIDs) {
		found := make([]uint64, 0, len(seats))
		for _, s := range seats {
			found = append(found, s.ID)
		}
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":   "some seats not found on this trip",
			"missing": missingIDs(seatIDs, found),
		})
	}

	// Advisory locks held by anyone else block the booking.
	conflicting, err := h.LockRepo.ConflictingSeatsTx(ctx, tx, tripID, seatIDs, holder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check seat locks"})
	}
	if len(conflicting) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "seats locked by another user",
			"seat_ids": conflicting,
		})
	}

	// Live bookings are the authoritative occupancy check.
	bookedIDs, err := h.BookingRepo.BookedSeatIDsTx(ctx, tx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check booked seats"})
	}
	if overlap := intersectIDs(seatIDs, bookedIDs); len(overlap) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "seats already booked",
			"seat_ids": overlap,
		})
	}

	// The total is always computed server-side from seat prices.
	seatPrices := make(map[uint64]int64, len(seats))
	total := int64(0)
	for _, s := range seats {
		seatPrices[s.ID] = s.PriceCents
		total += s.PriceCents
	}

	expiresAt := time.Now().UTC().Add(h.HoldTTL)
	booking := &model.Booking{
		TripID:           tripID,
		SeatIDs:          seatIDs,
		Status:           model.StatusPending,
		TotalAmountCents: total,
		IdempotencyKey:   body.IdempotencyKey,
		Passenger:        body.Passenger,
		ExpiresAt:        &expiresAt,
	}
	if holder != "" {
		booking.HolderID = &holder
	}
	if err := h.BookingRepo.CreateTx(ctx, tx, booking, seatPrices); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	// The booking supersedes the holder's own advisory locks on these
	// seats; locks on other seats are left alone.
	if err := h.LockRepo.DeleteForHolderSeatsTx(ctx, tx, tripID, seatIDs, holder); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clear seat locks"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Hub.Publish(tripID)
	return c.JSON(http.StatusCreated, echo.Map{"item": bookingView(booking)})
}

// ConfirmBooking handles POST /v1/bookings/:id/confirm.  Confirming
// an already confirmed booking succeeds without side effects so a
// client that lost the first response can retry safely.  Confirming
// an EXPIRED or CANCELLED booking is 409.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	booking, changed, err := h.BookingRepo.Confirm(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrInvalidState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be confirmed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
	}
	if changed {
		h.Hub.Publish(booking.TripID)
		email, _ := c.Get("email").(string)
		go h.publishConfirmedEvent(booking, email)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingView(booking)})
}

// publishConfirmedEvent pushes a booking.confirmed message to the
// broker and, when the caller logged in with an email, sends a
// best-effort confirmation message.  It runs outside the request
// path; failures are logged and otherwise ignored.
func (h *BookingHandler) publishConfirmedEvent(b *model.Booking, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	trip, err := h.TripRepo.GetByID(ctx, b.TripID)
	if err != nil {
		log.Printf("booking: loading trip %d for confirmed event failed: %v", b.TripID, err)
		return
	}
	seats, err := h.SeatRepo.GetByIDs(ctx, b.SeatIDs)
	if err != nil {
		log.Printf("booking: loading seats for confirmed event failed: %v", err)
		return
	}
	numbers := make([]string, 0, len(seats))
	for _, s := range seats {
		numbers = append(numbers, s.SeatNumber)
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		TripID:           b.TripID,
		OperatorName:     trip.OperatorName,
		Source:           trip.Source,
		Destination:      trip.Destination,
		DepartureTime:    trip.DepartureTime.UTC().Format(time.RFC3339),
		SeatNumbers:      numbers,
		TotalAmountCents: b.TotalAmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if b.HolderID != nil {
		ev.HolderID = *b.HolderID
	}
	if b.Passenger != nil {
		ev.PassengerName = b.Passenger.Name
	}
	_ = queuepub.PublishBookingConfirmed(ctx, ev)

	if h.Notifier != nil && email != "" {
		payload := map[string]string{
			"booking_id":  fmt.Sprintf("%d", b.ID),
			"source":      trip.Source,
			"destination": trip.Destination,
			"departure":   ev.DepartureTime,
			"seats":       strings.Join(numbers, ", "),
		}
		if err := h.Notifier.Send(ctx, email, notify.KindBookingConfirmation, payload); err != nil {
			log.Printf("booking: confirmation email to %s failed: %v", email, err)
		}
	}
}

// GetBooking handles GET /v1/bookings/:id.  The refund record is
// attached when the booking has been cancelled.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	booking, err := h.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	view := bookingView(booking)
	if refund, err := h.RefundRepo.GetByBookingID(ctx, bookingID); err == nil && refund != nil {
		view["refund"] = refund
	}
	return c.JSON(http.StatusOK, echo.Map{"item": view})
}

// MyBookings handles GET /v1/my-bookings.  The holder is taken from
// the JWT when present; anonymous callers pass ?holder_id= with the
// id they booked under.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	holder := resolveHolder(c, c.QueryParam("holder_id"))
	if holder == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "holder_id is required"})
	}
	details, err := h.BookingRepo.ListByHolder(c.Request().Context(), holder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}
