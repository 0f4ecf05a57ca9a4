package booking

import (
	"sort"
)

// TimeSlot is a free window [Start, End) within opening hours.
type TimeSlot struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// CalculateAvailability returns the free windows on date between the opening
// and closing times. Declined bookings do not occupy time; pending ones do.
// A fully booked day yields nil.
func CalculateAvailability(date Date, openStr, closeStr string, bookings []*Booking) ([]TimeSlot, error) {
	open, err := ParseTimeOfDay(openStr)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("invalid opening time")
	}
	closing, err := ParseTimeOfDay(closeStr)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("invalid closing time")
	}
	return freeSlots(date, open, closing, bookings)
}

func freeSlots(date Date, open, closing TimeOfDay, bookings []*Booking) ([]TimeSlot, error) {
	if open >= closing {
		return nil, ErrInvalidInterval
	}

	busy := make([]TimeSlot, 0, len(bookings))
	for _, b := range bookings {
		if b.Date != date || b.Status == StatusDeclined {
			continue
		}
		start, end := max(b.StartTime, open), min(b.EndTime, closing)
		if start >= end {
			continue
		}
		busy = append(busy, TimeSlot{Start: start, End: end})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })

	var slots []TimeSlot
	cursor := open
	for _, b := range busy {
		if b.Start > cursor {
			slots = append(slots, TimeSlot{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < closing {
		slots = append(slots, TimeSlot{Start: cursor, End: closing})
	}
	return slots, nil
}
