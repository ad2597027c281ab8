package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/model"
	"github.com/hvugvjn/smart-ticket/internal/repository"
)

// TripHandler serves the trip catalog and the per-trip seat map.  The
// seat map merges three sources on every read: the immutable seat
// grid, live bookings and active advisory locks.  Nothing is cached
// server-side; correctness comes from reading the same tables the
// booking transaction writes.
type TripHandler struct {
	TripRepo    *repository.TripRepo
	SeatRepo    *repository.SeatRepo
	BookingRepo *repository.BookingRepo
	LockRepo    *repository.SeatLockRepo
}

// NewTripHandler constructs a TripHandler.  All dependencies must be
// non-nil.
func NewTripHandler(tripRepo *repository.TripRepo, seatRepo *repository.SeatRepo, bookingRepo *repository.BookingRepo, lockRepo *repository.SeatLockRepo) *TripHandler {
	if tripRepo == nil || seatRepo == nil || bookingRepo == nil || lockRepo == nil {
		panic("nil repository passed to NewTripHandler")
	}
	return &TripHandler{TripRepo: tripRepo, SeatRepo: seatRepo, BookingRepo: bookingRepo, LockRepo: lockRepo}
}

// ListTrips handles GET /v1/trips.  It returns the whole catalog
// ordered by departure time.
func (h *TripHandler) ListTrips(c echo.Context) error {
	trips, err := h.TripRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trips"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": trips})
}

// GetTrip handles GET /v1/trips/:id.
func (h *TripHandler) GetTrip(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	trip, err := h.TripRepo.GetByID(c.Request().Context(), tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": trip})
}

// seatView is one entry of the seat map response.  Status is derived:
// "booked" wins over "locked" wins over "available".  For locked
// seats the holder is exposed in masked form only.
type seatView struct {
	model.Seat
	Status        string  `json:"status"`
	LockedBy      *string `json:"locked_by,omitempty"`
	LockExpiresAt *string `json:"lock_expires_at,omitempty"`
}

// GetSeatMap handles GET /v1/trips/:id/seats.  It returns every seat
// of the trip with its derived availability status.  The read is not
// transactional; a client that needs a guaranteed-fresh view gets one
// implicitly because booking re-validates everything inside its
// transaction.
func (h *TripHandler) GetSeatMap(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	ctx := c.Request().Context()
	if _, err := h.TripRepo.GetByID(ctx, tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}
	seats, err := h.SeatRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seats"})
	}
	bookedIDs, err := h.BookingRepo.BookedSeatIDs(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	locks, err := h.LockRepo.ListActive(ctx, tripID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat locks"})
	}

	booked := make(map[uint64]struct{}, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = struct{}{}
	}
	lockBySeat := make(map[uint64]model.SeatLock, len(locks))
	for _, l := range locks {
		lockBySeat[l.SeatID] = l
	}

	views := make([]seatView, 0, len(seats))
	available := 0
	for _, s := range seats {
		v := seatView{Seat: s, Status: "available"}
		if _, ok := booked[s.ID]; ok {
			v.Status = "booked"
		} else if l, ok := lockBySeat[s.ID]; ok {
			v.Status = "locked"
			masked := model.MaskHolder(l.HolderID)
			exp := l.ExpiresAt.UTC().Format(time.RFC3339)
			v.LockedBy = &masked
			v.LockExpiresAt = &exp
		} else {
			available++
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"trip_id":   tripID,
		"seats":     views,
		"available": available,
	})
}

// CreateTrip handles POST /v1/admin/trips.  It creates a trip and
// seeds its full seat grid in one request.  The route is guarded by
// the admin role.
func (h *TripHandler) CreateTrip(c echo.Context) error {
	var body struct {
		OperatorName  string   `json:"operator_name"`
		Source        string   `json:"source"`
		Destination   string   `json:"destination"`
		DepartureTime string   `json:"departure_time"`
		ArrivalTime   string   `json:"arrival_time"`
		VehicleType   string   `json:"vehicle_type"`
		Rating        uint32   `json:"rating"`
		Amenities     []string `json:"amenities"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.OperatorName = strings.TrimSpace(body.OperatorName)
	body.Source = strings.TrimSpace(body.Source)
	body.Destination = strings.TrimSpace(body.Destination)
	if body.OperatorName == "" || body.Source == "" || body.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "operator_name, source and destination are required"})
	}
	departure, err := time.Parse(time.RFC3339, body.DepartureTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_time must be RFC3339"})
	}
	arrival, err := time.Parse(time.RFC3339, body.ArrivalTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival_time must be RFC3339"})
	}
	if !arrival.After(departure) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "arrival_time must be after departure_time"})
	}

	grid := model.DefaultSeatGrid(0)
	trip := &model.Trip{
		OperatorName:  body.OperatorName,
		Source:        body.Source,
		Destination:   body.Destination,
		DepartureTime: departure.UTC(),
		ArrivalTime:   arrival.UTC(),
		Duration:      formatDuration(arrival.Sub(departure)),
		VehicleType:   body.VehicleType,
		Rating:        body.Rating,
		TotalSeats:    uint32(len(grid)),
		Amenities:     body.Amenities,
	}
	ctx := c.Request().Context()
	if err := h.TripRepo.Create(ctx, trip); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create trip"})
	}
	seats := model.DefaultSeatGrid(trip.ID)
	if err := h.SeatRepo.CreateBulk(ctx, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"item":       trip,
		"seat_count": len(seats),
	})
}

// formatDuration renders "8h 30m" style strings for the catalog.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
