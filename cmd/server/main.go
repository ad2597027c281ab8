package main // Entry point package

import (
	"context" // Context for the background workers
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/hvugvjn/smart-ticket/internal/broadcast"  // Per-trip availability fan-out hub
	"github.com/hvugvjn/smart-ticket/internal/config"     // Internal config loader
	"github.com/hvugvjn/smart-ticket/internal/database"   // MySQL connector
	"github.com/hvugvjn/smart-ticket/internal/handler"    // HTTP handlers
	"github.com/hvugvjn/smart-ticket/internal/middleware" // Rate limiting and response cache middleware
	"github.com/hvugvjn/smart-ticket/internal/notify"     // Outbound notifications and seat subscriptions
	"github.com/hvugvjn/smart-ticket/internal/queue"      // Booking event consumer
	"github.com/hvugvjn/smart-ticket/internal/repository" // Data access layer
	"github.com/hvugvjn/smart-ticket/internal/router"     // Route registration
	"github.com/hvugvjn/smart-ticket/internal/worker"     // Hold expiry and lock reclamation
)

func main() {
	// .env is optional; real deployments configure through the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the response cache.  A nil client
	// disables both rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	tripRepo := repository.NewTripRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	lockRepo := repository.NewSeatLockRepo(db)
	refundRepo := repository.NewRefundRepo(db)
	notificationRepo := repository.NewSeatNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)

	hub := broadcast.NewHub()
	notifier := notify.LogNotifier{}
	registry := notify.NewRegistry(notificationRepo, notifier)

	tripHandler := handler.NewTripHandler(tripRepo, seatRepo, bookingRepo, lockRepo)
	lockHandler := handler.NewSeatLockHandler(tripRepo, lockRepo, hub, cfg.LockTTL)
	bookingHandler := handler.NewBookingHandler(tripRepo, seatRepo, bookingRepo, lockRepo, refundRepo, hub, registry, notifier, cfg.HoldTTL, cfg.CancellationFeeCents)
	notificationHandler := handler.NewNotificationHandler(tripRepo, registry)
	streamHandler := handler.NewStreamHandler(tripRepo, hub)
	authHandler := handler.NewAuthHandler(userRepo, notifier, cfg.JWTSecret, cfg.AccessTTLDays, cfg.BcryptCost, cfg.OTPTTL, cfg.OTPMaxAttempts, cfg.OTPThrottle)

	// Background reclamation: expire overdue holds, reap stale locks,
	// ping the affected trips.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reclaimer := worker.NewReclaimer(bookingRepo, lockRepo, hub, cfg.SweepInterval)
	go reclaimer.Run(ctx)

	// Booking event consumer writes confirmed bookings to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterPublic(e, tripHandler, lockHandler, streamHandler, cache)
	router.RegisterBooking(e, bookingHandler, lockHandler, notificationHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, tripHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
