package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hvugvjn/smart-ticket/internal/broadcast"
	"github.com/hvugvjn/smart-ticket/internal/repository"
)

// heartbeatInterval keeps intermediaries from closing idle SSE
// connections.
const heartbeatInterval = 15 * time.Second

// StreamHandler serves the per-trip availability stream over
// Server-Sent Events.  Events carry no payload beyond the trip id;
// clients refetch the seat map on receipt, so a dropped event costs a
// little staleness and never correctness.
type StreamHandler struct {
	TripRepo *repository.TripRepo
	Hub      *broadcast.Hub
}

// NewStreamHandler constructs a StreamHandler.
func NewStreamHandler(tripRepo *repository.TripRepo, hub *broadcast.Hub) *StreamHandler {
	if tripRepo == nil || hub == nil {
		panic("nil dependency passed to NewStreamHandler")
	}
	return &StreamHandler{TripRepo: tripRepo, Hub: hub}
}

// Stream handles GET /v1/trips/:id/stream.  The subscription is torn
// down when the client disconnects; the hub never retains a dead
// connection.
func (h *StreamHandler) Stream(c echo.Context) error {
	tripID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	if _, err := h.TripRepo.GetByID(c.Request().Context(), tripID); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trip"})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	events, cancel := h.Hub.Subscribe(tripID)
	defer cancel()

	// Initial event so the client knows the stream is live.
	if err := writeEvent(res, flusher, broadcast.Event{Type: "connected", TripID: tripID}); err != nil {
		return nil
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-events:
			if !open {
				return nil
			}
			if err := writeEvent(res, flusher, ev); err != nil {
				return nil
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeEvent(res *echo.Response, flusher http.Flusher, ev broadcast.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
