package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, http.StatusNotFound, "booking not found")
	ErrConflict          = apperror.New(apperror.KindConflict, http.StatusConflict, "time slot already booked")
	ErrInvalidInterval   = apperror.New(apperror.KindInvalidInterval, http.StatusBadRequest, "start time must be before end time")
	ErrInvalidInput      = apperror.New(apperror.KindInvalidInput, http.StatusBadRequest, "invalid input parameters")
	ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, http.StatusConflict, "booking is no longer pending")
	ErrResourceNotFound  = apperror.New(apperror.KindNotFound, http.StatusNotFound, "resource not found")
	ErrForbidden         = apperror.New(apperror.KindForbidden, http.StatusForbidden, "permission denied")
)

// DefaultDeclineReason is recorded when a booking is declined without a reason.
const DefaultDeclineReason = "No reason provided"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// Booking is a request to hold a resource for [StartTime, EndTime) on Date.
type Booking struct {
	ID            string    `json:"id"`
	ResourceID    string    `json:"resource_id"`
	Date          Date      `json:"date"`
	StartTime     TimeOfDay `json:"start_time"`
	EndTime       TimeOfDay `json:"end_time"`
	Status        Status    `json:"status"`
	Requester     string    `json:"requester"`
	Purpose       string    `json:"purpose,omitempty"`
	Contact       string    `json:"contact,omitempty"`
	DeclineReason string    `json:"decline_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Overlaps reports whether b occupies any part of [start, end) on the same resource and date.
func (b *Booking) Overlaps(resourceID string, date Date, start, end TimeOfDay) bool {
	return b.ResourceID == resourceID &&
		b.Date == date &&
		start < b.EndTime && end > b.StartTime
}

func (b *Booking) clone() *Booking {
	c := *b
	return &c
}

// SubmitRequest carries a new booking request.
type SubmitRequest struct {
	ResourceID string
	Date       Date
	StartTime  TimeOfDay
	EndTime    TimeOfDay
	Requester  string
	Purpose    string
	Contact    string
}

// Availability is the answer to an admission query.
type Availability struct {
	Available   bool     `json:"available"`
	ConflictIDs []string `json:"conflict_ids,omitempty"`
}

// Filter defines parameters for listing bookings.
type Filter struct {
	Requester  string
	ResourceID string
	Date       Date
	Status     Status
	Page       int
	PageSize   int
}

// Stats summarizes the catalogue and the approved bookings.
type Stats struct {
	Labs             int `json:"labs"`
	Halls            int `json:"halls"`
	Equipment        int `json:"equipment"`
	ApprovedBookings int `json:"approved_bookings"`
	UpcomingApproved int `json:"upcoming_approved"`
	PendingBookings  int `json:"pending_bookings"`
}
