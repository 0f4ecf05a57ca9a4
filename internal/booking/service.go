package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/notify"
)

// Actor identifies the caller of a service operation.
type Actor struct {
	Requester string
	IsAdmin   bool
}

type Service interface {
	Submit(ctx context.Context, actor Actor, req SubmitRequest) (*Booking, error)
	CheckAvailability(ctx context.Context, resourceID string, date Date, start, end TimeOfDay, excludingID string) (Availability, error)
	Approve(ctx context.Context, actor Actor, id string) (*Booking, error)
	Decline(ctx context.Context, actor Actor, id, reason string) (*Booking, error)
	Cancel(ctx context.Context, actor Actor, id string) error
	GetByID(ctx context.Context, actor Actor, id string) (*Booking, error)
	List(ctx context.Context, actor Actor, filter Filter) ([]*Booking, int, error)
	Pending(ctx context.Context, actor Actor) ([]*Booking, error)
	Schedule(ctx context.Context, resourceID string) ([]*Booking, error)
	FreeSlots(ctx context.Context, resourceID string, date Date, open, closing TimeOfDay) ([]TimeSlot, error)
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	ledger      *Ledger
	snapshotter *Snapshotter
	notifier    notify.Notifier
	log         *logger.Logger
	clock       func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithServiceClock overrides the time source used for "today".
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *service) { s.clock = clock }
}

func NewService(ledger *Ledger, snapshotter *Snapshotter, notifier notify.Notifier, log *logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		ledger:      ledger,
		snapshotter: snapshotter,
		notifier:    notifier,
		log:         log,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, actor Actor, req SubmitRequest) (*Booking, error) {
	req.Requester = actor.Requester

	b, err := s.ledger.Submit(req)
	if err != nil {
		return nil, err
	}
	s.snapshotter.Persist(ctx)

	s.log.InfoContext(ctx, "booking submitted",
		"booking_id", b.ID,
		"resource_id", b.ResourceID,
		"date", b.Date,
		"requester", b.Requester,
	)
	s.notify(ctx, notify.Notification{
		Event:     notify.EventSubmitted,
		Recipient: b.Requester,
		Subject:   "Booking Request Submitted",
		Message:   fmt.Sprintf("Your booking request for %s on %s has been submitted and is pending approval.", s.resourceName(b.ResourceID), b.Date),
		BookingID: b.ID,
	})
	return b, nil
}

func (s *service) CheckAvailability(ctx context.Context, resourceID string, date Date, start, end TimeOfDay, excludingID string) (Availability, error) {
	if start >= end {
		return Availability{}, ErrInvalidInterval
	}
	if _, err := s.ledger.Resource(resourceID); err != nil {
		return Availability{}, ErrResourceNotFound
	}
	return s.ledger.CheckAvailability(resourceID, date, start, end, excludingID), nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id string) (*Booking, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	b, err := s.ledger.Approve(id)
	if err != nil {
		s.log.InfoContext(ctx, "booking approval refused", "booking_id", id, "error", err)
		return nil, err
	}
	s.snapshotter.Persist(ctx)

	s.log.InfoContext(ctx, "booking approved", "booking_id", b.ID, "approved_by", actor.Requester)
	s.notify(ctx, notify.Notification{
		Event:     notify.EventApproved,
		Recipient: b.Requester,
		Subject:   "Booking Approved",
		Message:   fmt.Sprintf("Your booking for %s on %s has been approved.", s.resourceName(b.ResourceID), b.Date),
		BookingID: b.ID,
	})
	return b, nil
}

func (s *service) Decline(ctx context.Context, actor Actor, id, reason string) (*Booking, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	b, err := s.ledger.Decline(id, reason)
	if err != nil {
		return nil, err
	}
	s.snapshotter.Persist(ctx)

	s.log.InfoContext(ctx, "booking declined", "booking_id", b.ID, "declined_by", actor.Requester)
	s.notify(ctx, notify.Notification{
		Event:     notify.EventDeclined,
		Recipient: b.Requester,
		Subject:   "Booking Declined",
		Message: fmt.Sprintf("Your booking for %s on %s has been declined. Reason: %s",
			s.resourceName(b.ResourceID), b.Date, b.DeclineReason),
		BookingID: b.ID,
	})
	return b, nil
}

func (s *service) Cancel(ctx context.Context, actor Actor, id string) error {
	if err := s.ledger.Cancel(id, actor.Requester); err != nil {
		return err
	}
	s.snapshotter.Persist(ctx)

	s.log.InfoContext(ctx, "booking cancelled", "booking_id", id, "requester", actor.Requester)
	return nil
}

func (s *service) GetByID(ctx context.Context, actor Actor, id string) (*Booking, error) {
	b, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && b.Requester != actor.Requester {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns the actor's own bookings. Admins see every booking and may
// narrow by requester.
func (s *service) List(ctx context.Context, actor Actor, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, ErrInvalidInput.WithMessage("status must be one of: pending approved declined")
	}
	if !actor.IsAdmin {
		filter.Requester = actor.Requester
	}
	items, total := s.ledger.List(filter)
	return items, total, nil
}

func (s *service) Pending(ctx context.Context, actor Actor) ([]*Booking, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return s.ledger.Pending(), nil
}

func (s *service) Schedule(ctx context.Context, resourceID string) ([]*Booking, error) {
	return s.ledger.Schedule(resourceID)
}

func (s *service) FreeSlots(ctx context.Context, resourceID string, date Date, open, closing TimeOfDay) ([]TimeSlot, error) {
	return s.ledger.FreeSlots(resourceID, date, open, closing)
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	today := DateOf(now.With(s.clock()).BeginningOfDay())
	return s.ledger.Stats(today), nil
}

func (s *service) notify(ctx context.Context, n notify.Notification) {
	n.SentAt = s.clock().UTC()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WarnContext(ctx, "failed to send notification",
			"event", n.Event,
			"booking_id", n.BookingID,
			"error", err,
		)
	}
}

func (s *service) resourceName(id string) string {
	if r, err := s.ledger.Resource(id); err == nil {
		return r.Name
	}
	return id
}
