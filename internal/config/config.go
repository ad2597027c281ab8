package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time expresses the booking timing knobs as durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// booking timing knobs, ints for costs and limits.
type Config struct {
	Env                  string        // application environment (e.g. "dev", "prod")
	Port                 string        // HTTP port to listen on
	DBUser               string        // database username
	DBPass               string        // database password (optional)
	DBHost               string        // database host address
	DBPort               string        // database port number
	DBName               string        // database name
	JWTSecret            string        // secret used to sign JWTs
	AccessTTLDays        int           // access token time to live in days
	BcryptCost           int           // bcrypt cost for OTP hashing
	HoldTTL              time.Duration // how long a PENDING booking holds its seats
	LockTTL              time.Duration // how long an advisory seat lock lives
	SweepInterval        time.Duration // how often the reclaimer sweeps stale state
	CancellationFeeCents int64         // flat fee deducted from refunds
	OTPTTL               time.Duration // how long an issued OTP code stays valid
	OTPMaxAttempts       int           // failed verifications before throttling kicks in
	OTPThrottle          time.Duration // lockout window after too many failures
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The booking timing
// knobs all carry defaults so a bare .env still boots a working server.
func Load() Config {
	return Config{
		Env:                  must("APP_ENV"),      // environment (dev/test/prod)
		Port:                 must("APP_PORT"),     // port to bind the HTTP server
		DBUser:               must("DB_USER"),      // database user
		DBPass:               os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:               must("DB_HOST"),      // database host
		DBPort:               must("DB_PORT"),      // database port
		DBName:               must("DB_NAME"),      // database name
		JWTSecret:            must("JWT_SECRET"),   // secret used for signing JWTs
		AccessTTLDays:        envInt("ACCESS_TOKEN_TTL_DAYS", 7),
		BcryptCost:           envInt("BCRYPT_COST", 10),
		HoldTTL:              envDur("BOOKING_HOLD_TTL", 60*time.Second),
		LockTTL:              envDur("SEAT_LOCK_TTL", 120*time.Second),
		SweepInterval:        envDur("SWEEP_INTERVAL", 10*time.Second),
		CancellationFeeCents: int64(envInt("CANCELLATION_FEE_CENTS", 5000)),
		OTPTTL:               envDur("OTP_TTL", 3*time.Minute),
		OTPMaxAttempts:       envInt("OTP_MAX_ATTEMPTS", 3),
		OTPThrottle:          envDur("OTP_THROTTLE", 10*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
