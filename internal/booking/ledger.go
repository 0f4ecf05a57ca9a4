package booking

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

// Ledger owns the resource catalogue and every booking made against it.
// All operations are serialized by a single mutex and run to completion.
type Ledger struct {
	mu        sync.RWMutex
	resources []*resource.Resource
	bookings  []*Booking
	newID     func() string
	now       func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithIDGenerator replaces the booking id generator.
func WithIDGenerator(fn func() string) LedgerOption {
	return func(l *Ledger) { l.newID = fn }
}

// WithClock replaces the time source used for timestamps.
func WithClock(fn func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = fn }
}

func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit records a new pending booking. Overlaps are not rejected here;
// they are resolved when an admin approves.
func (l *Ledger) Submit(req SubmitRequest) (*Booking, error) {
	date, err := ParseDate(string(req.Date))
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("date must be formatted YYYY-MM-DD")
	}
	if !req.StartTime.Valid() || !req.EndTime.Valid() {
		return nil, ErrInvalidInput.WithMessage("times must be formatted HH:MM")
	}
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidInterval
	}
	requester := strings.TrimSpace(req.Requester)
	if requester == "" {
		return nil, ErrInvalidInput.WithMessage("requester is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findResource(req.ResourceID) < 0 {
		return nil, ErrResourceNotFound
	}

	ts := l.now().UTC()
	b := &Booking{
		ID:         l.newID(),
		ResourceID: req.ResourceID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     StatusPending,
		Requester:  requester,
		Purpose:    strings.TrimSpace(req.Purpose),
		Contact:    strings.TrimSpace(req.Contact),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	l.bookings = append(l.bookings, b)
	return b.clone(), nil
}

// CheckAvailability reports whether [start, end) on date is free of every
// non-declined booking of the resource, ignoring excludingID.
func (l *Ledger) CheckAvailability(resourceID string, date Date, start, end TimeOfDay, excludingID string) Availability {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.conflicts(resourceID, date, start, end, excludingID, func(s Status) bool {
		return s != StatusDeclined
	})
	return Availability{Available: len(ids) == 0, ConflictIDs: ids}
}

// Approve moves a pending booking to approved unless an approved booking
// already holds an overlapping slot. On conflict the booking stays pending.
func (l *Ledger) Approve(id string) (*Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.find(id)
	if b == nil {
		return nil, ErrNotFound
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	ids := l.conflicts(b.ResourceID, b.Date, b.StartTime, b.EndTime, b.ID, func(s Status) bool {
		return s == StatusApproved
	})
	if len(ids) > 0 {
		return nil, ErrConflict
	}

	b.Status = StatusApproved
	b.UpdatedAt = l.now().UTC()
	return b.clone(), nil
}

// Decline moves a pending booking to declined. An empty reason records DefaultDeclineReason.
func (l *Ledger) Decline(id, reason string) (*Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.find(id)
	if b == nil {
		return nil, ErrNotFound
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeclineReason
	}
	b.Status = StatusDeclined
	b.DeclineReason = reason
	b.UpdatedAt = l.now().UTC()
	return b.clone(), nil
}

// Cancel deletes a pending booking on behalf of its requester.
func (l *Ledger) Cancel(id, requester string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.index(id)
	if idx < 0 {
		return ErrNotFound
	}
	b := l.bookings[idx]
	if b.Requester != requester {
		return ErrForbidden
	}
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}

	l.bookings = append(l.bookings[:idx], l.bookings[idx+1:]...)
	return nil
}

func (l *Ledger) Get(id string) (*Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b := l.find(id)
	if b == nil {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

// List returns one page of bookings matching filter, ordered by date then
// start time, together with the total number of matches.
func (l *Ledger) List(filter Filter) ([]*Booking, int) {
	l.mu.RLock()
	matched := make([]*Booking, 0)
	for _, b := range l.bookings {
		if filter.matches(b) {
			matched = append(matched, b.clone())
		}
	}
	l.mu.RUnlock()

	sortChronologically(matched)
	return response.Paginate(matched, filter.Page, filter.PageSize), len(matched)
}

// Pending returns every pending booking in submission order.
func (l *Ledger) Pending() []*Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Booking, 0)
	for _, b := range l.bookings {
		if b.Status == StatusPending {
			out = append(out, b.clone())
		}
	}
	return out
}

// Schedule returns the approved bookings of a resource in chronological order.
func (l *Ledger) Schedule(resourceID string) ([]*Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.findResource(resourceID) < 0 {
		return nil, ErrResourceNotFound
	}
	out := make([]*Booking, 0)
	for _, b := range l.bookings {
		if b.ResourceID == resourceID && b.Status == StatusApproved {
			out = append(out, b.clone())
		}
	}
	sortChronologically(out)
	return out, nil
}

// FreeSlots returns the gaps between non-declined bookings of a resource
// within the opening hours [open, closing) of date.
func (l *Ledger) FreeSlots(resourceID string, date Date, open, closing TimeOfDay) ([]TimeSlot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.findResource(resourceID) < 0 {
		return nil, ErrResourceNotFound
	}
	var onResource []*Booking
	for _, b := range l.bookings {
		if b.ResourceID == resourceID {
			onResource = append(onResource, b)
		}
	}
	return freeSlots(date, open, closing, onResource)
}

// Stats counts resources per category and approved bookings. Upcoming
// approved bookings are those dated today or later.
func (l *Ledger) Stats(today Date) Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var st Stats
	for _, r := range l.resources {
		switch r.Category {
		case resource.CategoryLab:
			st.Labs++
		case resource.CategoryHall:
			st.Halls++
		case resource.CategoryEquipment:
			st.Equipment++
		}
	}
	for _, b := range l.bookings {
		switch b.Status {
		case StatusApproved:
			st.ApprovedBookings++
			if b.Date >= today {
				st.UpcomingApproved++
			}
		case StatusPending:
			st.PendingBookings++
		}
	}
	return st
}

// IsEmpty reports whether the ledger holds neither resources nor bookings.
func (l *Ledger) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.resources) == 0 && len(l.bookings) == 0
}

func (l *Ledger) conflicts(resourceID string, date Date, start, end TimeOfDay, excludingID string, counts func(Status) bool) []string {
	var ids []string
	for _, b := range l.bookings {
		if b.ID == excludingID || !counts(b.Status) {
			continue
		}
		if b.Overlaps(resourceID, date, start, end) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func (l *Ledger) find(id string) *Booking {
	if idx := l.index(id); idx >= 0 {
		return l.bookings[idx]
	}
	return nil
}

func (l *Ledger) index(id string) int {
	for i, b := range l.bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (f Filter) matches(b *Booking) bool {
	if f.Requester != "" && b.Requester != f.Requester {
		return false
	}
	if f.ResourceID != "" && b.ResourceID != f.ResourceID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func sortChronologically(bs []*Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Date != bs[j].Date {
			return bs[i].Date < bs[j].Date
		}
		return bs[i].StartTime < bs[j].StartTime
	})
}
