package http

import (
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/request"
	resHttp "github.com/nekogravitycat/campus-booking-backend/internal/resource/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	ResourceID string `form:"resource_id" binding:"omitempty,max=64"`
	Date       string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Status     string `form:"status" binding:"omitempty,oneof=pending approved declined"`
	Requester  string `form:"requester" binding:"omitempty,max=254"`
}

type BookingResponse struct {
	ID            string              `json:"id"`
	Resource      resHttp.ResourceTag `json:"resource"`
	Date          string              `json:"date"`
	StartTime     string              `json:"start_time"`
	EndTime       string              `json:"end_time"`
	Status        string              `json:"status"`
	Requester     string              `json:"requester"`
	Purpose       string              `json:"purpose,omitempty"`
	Contact       string              `json:"contact,omitempty"`
	DeclineReason string              `json:"decline_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking, resourceName string) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		Resource:      resHttp.ResourceTag{ID: b.ResourceID, Name: resourceName},
		Date:          b.Date.String(),
		StartTime:     b.StartTime.String(),
		EndTime:       b.EndTime.String(),
		Status:        string(b.Status),
		Requester:     b.Requester,
		Purpose:       b.Purpose,
		Contact:       b.Contact,
		DeclineReason: b.DeclineReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	ResourceID string `json:"resource_id" binding:"required,max=64"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Purpose    string `json:"purpose" binding:"omitempty,max=500"`
	Contact    string `json:"contact" binding:"omitempty,max=100"`
}

// ToSubmitRequest parses the civil date and times of the payload.
func (r *CreateBookingRequest) ToSubmitRequest() (booking.SubmitRequest, error) {
	date, start, end, err := parseSlot(r.Date, r.StartTime, r.EndTime)
	if err != nil {
		return booking.SubmitRequest{}, err
	}
	return booking.SubmitRequest{
		ResourceID: r.ResourceID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Purpose:    r.Purpose,
		Contact:    r.Contact,
	}, nil
}

type DeclineBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AvailabilityRequest defines query parameters for GET /resources/:id/availability.
type AvailabilityRequest struct {
	Date      string `form:"date" binding:"required"`
	StartTime string `form:"start_time" binding:"required"`
	EndTime   string `form:"end_time" binding:"required"`
	Exclude   string `form:"exclude" binding:"omitempty,max=64"`
}

// FreeSlotsRequest defines query parameters for GET /resources/:id/free-slots.
type FreeSlotsRequest struct {
	Date  string `form:"date" binding:"required"`
	Open  string `form:"open"`
	Close string `form:"close"`
}

// Default opening hours for free-slot queries.
const (
	DefaultOpen  = "08:00"
	DefaultClose = "20:00"
)

type AvailabilityResponse struct {
	Available   bool     `json:"available"`
	ConflictIDs []string `json:"conflict_ids"`
}

type TimeSlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func parseSlot(dateStr, startStr, endStr string) (booking.Date, booking.TimeOfDay, booking.TimeOfDay, error) {
	date, err := booking.ParseDate(dateStr)
	if err != nil {
		return "", 0, 0, booking.ErrInvalidInput.WithMessage("date must be formatted YYYY-MM-DD")
	}
	start, err := booking.ParseTimeOfDay(startStr)
	if err != nil {
		return "", 0, 0, booking.ErrInvalidInput.WithMessage("start_time must be formatted HH:MM")
	}
	end, err := booking.ParseTimeOfDay(endStr)
	if err != nil {
		return "", 0, 0, booking.ErrInvalidInput.WithMessage("end_time must be formatted HH:MM")
	}
	return date, start, end, nil
}
