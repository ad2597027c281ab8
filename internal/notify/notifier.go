// Package notify holds the outbound notification boundary.  The core
// never talks SMTP itself; it hands a contact, a template kind and a
// payload to a Notifier and moves on.  Delivery failures are surfaced
// to the caller but must never abort a commit that already happened.
package notify

import (
	"context"
	"log"
)

// Template kinds understood by the downstream mailer.
const (
	KindOTPCode             = "otp_code"
	KindBookingConfirmation = "booking_confirmation"
	KindSeatAvailable       = "seat_available"
)

// Notifier is the external notification collaborator.  Send returns
// an error when the delivery attempt failed; retry policy belongs to
// the implementation, not to callers.
type Notifier interface {
	Send(ctx context.Context, contact, kind string, payload map[string]string) error
}

// LogNotifier writes every notification to the process log instead of
// delivering it.  It is the default when no mail transport is
// configured, mirroring dev-mode behavior where OTP codes and seat
// alerts land in the console.
type LogNotifier struct{}

// Send implements Notifier.
func (LogNotifier) Send(_ context.Context, contact, kind string, payload map[string]string) error {
	log.Printf("notify: %s -> %s %v", kind, contact, payload)
	return nil
}
