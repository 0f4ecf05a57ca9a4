package notify

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
)

// Event types carried by notifications.
const (
	EventSubmitted = "booking.submitted"
	EventApproved  = "booking.approved"
	EventDeclined  = "booking.declined"
)

// Notification is a message addressed to a booking requester.
type Notification struct {
	Event     string    `json:"event"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	BookingID string    `json:"booking_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Notifier delivers notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes each notification as a structured log line.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.log.InfoContext(ctx, "notification",
		"event", msg.Event,
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"message", msg.Message,
		"booking_id", msg.BookingID,
	)
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
