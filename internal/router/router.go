package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/hvugvjn/smart-ticket/internal/handler"    // import the handlers that implement business logic
	"github.com/hvugvjn/smart-ticket/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems hit this endpoint to verify
	// that the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the email OTP login endpoints.  Both are
// unauthenticated; the verify endpoint is where tokens come from.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/request-otp", a.RequestOTP)
	g.POST("/verify-otp", a.VerifyOTP)
}

// RegisterPublic registers unauthenticated browse endpoints: the trip
// catalog, per-trip seat maps with derived availability, active lock
// listings and the SSE availability stream.  Guests can browse and
// watch without a session.  The response cache only wraps the catalog
// reads; seat maps, lock listings and the stream must always be fresh.
func RegisterPublic(e *echo.Echo, t *handler.TripHandler, l *handler.SeatLockHandler, s *handler.StreamHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/trips", t.ListTrips, cache)
	e.GET("/v1/trips/:id", t.GetTrip, cache)
	e.GET("/v1/trips/:id/seats", t.GetSeatMap)
	e.GET("/v1/trips/:id/locks", l.ListLocks)
	e.GET("/v1/trips/:id/stream", s.Stream)
}

// RegisterBooking registers the mutation endpoints: seat locks,
// booking lifecycle and seat-availability subscriptions.  These run
// behind OptionalJWTAuth because anonymous callers participate with an
// explicit holder id, while logged in users act under their token
// identity.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, l *handler.SeatLockHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.OptionalJWTAuth(jwtSecret))
	g.POST("/trips/:id/seats/:seatID/lock", l.Lock)
	g.DELETE("/trips/:id/seats/:seatID/lock", l.Unlock)
	g.POST("/trips/:id/bookings", b.CreateBooking)
	g.POST("/bookings/:id/confirm", b.ConfirmBooking)
	g.POST("/bookings/:id/cancel", b.CancelBooking)
	g.GET("/bookings/:id", b.GetBooking)
	g.GET("/my-bookings", b.MyBookings)
	g.POST("/trips/:id/notify", n.SubscribeSeat)
}

// RegisterAdmin registers trip management endpoints.  These require a
// valid JWT carrying the admin role.
func RegisterAdmin(e *echo.Echo, t *handler.TripHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)
	g.POST("/trips", t.CreateTrip)
}
