package booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

var fixedNow = time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("b%d", n)
	}
}

func newLedger(t *testing.T, resourceIDs ...string) *booking.Ledger {
	t.Helper()
	l := booking.NewLedger(
		booking.WithIDGenerator(sequentialIDs()),
		booking.WithClock(func() time.Time { return fixedNow }),
	)
	if len(resourceIDs) == 0 {
		resourceIDs = []string{"R1"}
	}
	for _, id := range resourceIDs {
		require.NoError(t, l.AddResource(&resource.Resource{
			ID:       id,
			Name:     "Resource " + id,
			Category: resource.CategoryLab,
			Capacity: 30,
		}))
	}
	return l
}

func submit(t *testing.T, l *booking.Ledger, resourceID, date, start, end, requester string) *booking.Booking {
	t.Helper()
	b, err := l.Submit(booking.SubmitRequest{
		ResourceID: resourceID,
		Date:       booking.Date(date),
		StartTime:  booking.MustTime(start),
		EndTime:    booking.MustTime(end),
		Requester:  requester,
	})
	require.NoError(t, err)
	return b
}

func TestLedger_Submit(t *testing.T) {
	l := newLedger(t)

	b := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice@campus.edu")

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, "alice@campus.edu", b.Requester)
	assert.Equal(t, fixedNow, b.CreatedAt)

	got, err := l.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestLedger_Submit_NormalizesDate(t *testing.T) {
	l := newLedger(t)
	first := submit(t, l, "R1", " 2026-01-15 ", "09:00", "11:00", "alice")
	assert.Equal(t, booking.Date("2026-01-15"), first.Date)

	second := submit(t, l, "R1", "2026-01-15", "10:00", "12:00", "bob")
	got := l.CheckAvailability("R1", "2026-01-15", booking.MustTime("10:30"), booking.MustTime("10:45"), "")
	assert.ElementsMatch(t, []string{first.ID, second.ID}, got.ConflictIDs)

	_, err := l.Approve(first.ID)
	require.NoError(t, err)
	_, err = l.Approve(second.ID)
	assert.ErrorIs(t, err, booking.ErrConflict)
}

func TestLedger_Submit_Validation(t *testing.T) {
	l := newLedger(t)

	tests := []struct {
		name    string
		req     booking.SubmitRequest
		wantErr error
		kind    apperror.Kind
	}{
		{
			name: "end before start",
			req: booking.SubmitRequest{ResourceID: "R1", Date: "2026-01-15",
				StartTime: booking.MustTime("11:00"), EndTime: booking.MustTime("09:00"), Requester: "u"},
			wantErr: booking.ErrInvalidInterval,
			kind:    apperror.KindInvalidInterval,
		},
		{
			name: "zero length interval",
			req: booking.SubmitRequest{ResourceID: "R1", Date: "2026-01-15",
				StartTime: booking.MustTime("10:00"), EndTime: booking.MustTime("10:00"), Requester: "u"},
			wantErr: booking.ErrInvalidInterval,
			kind:    apperror.KindInvalidInterval,
		},
		{
			name: "unknown resource",
			req: booking.SubmitRequest{ResourceID: "nope", Date: "2026-01-15",
				StartTime: booking.MustTime("09:00"), EndTime: booking.MustTime("10:00"), Requester: "u"},
			wantErr: booking.ErrResourceNotFound,
			kind:    apperror.KindNotFound,
		},
		{
			name: "malformed date",
			req: booking.SubmitRequest{ResourceID: "R1", Date: "15/01/2026",
				StartTime: booking.MustTime("09:00"), EndTime: booking.MustTime("10:00"), Requester: "u"},
			wantErr: booking.ErrInvalidInput,
			kind:    apperror.KindInvalidInput,
		},
		{
			name: "missing requester",
			req: booking.SubmitRequest{ResourceID: "R1", Date: "2026-01-15",
				StartTime: booking.MustTime("09:00"), EndTime: booking.MustTime("10:00")},
			wantErr: booking.ErrInvalidInput,
			kind:    apperror.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Submit(tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}

	items, total := l.List(booking.Filter{})
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestLedger_Submit_AllowsOverlappingPending(t *testing.T) {
	l := newLedger(t)

	a := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	b := submit(t, l, "R1", "2026-01-15", "10:00", "12:00", "bob")

	assert.Equal(t, booking.StatusPending, a.Status)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Len(t, l.Pending(), 2)
}

func TestLedger_CheckAvailability(t *testing.T) {
	l := newLedger(t, "R1", "R2")
	a := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	declined := submit(t, l, "R1", "2026-01-15", "13:00", "14:00", "bob")
	_, err := l.Decline(declined.ID, "")
	require.NoError(t, err)

	tests := []struct {
		name       string
		resourceID string
		date       string
		start, end string
		excluding  string
		available  bool
	}{
		{"overlapping pending", "R1", "2026-01-15", "10:00", "12:00", "", false},
		{"back to back after", "R1", "2026-01-15", "11:00", "12:00", "", true},
		{"back to back before", "R1", "2026-01-15", "08:00", "09:00", "", true},
		{"contained", "R1", "2026-01-15", "09:30", "10:00", "", false},
		{"enclosing", "R1", "2026-01-15", "08:00", "12:00", "", false},
		{"declined booking ignored", "R1", "2026-01-15", "13:00", "14:00", "", true},
		{"other date", "R1", "2026-01-16", "09:00", "11:00", "", true},
		{"other resource", "R2", "2026-01-15", "09:00", "11:00", "", true},
		{"excluding itself", "R1", "2026-01-15", "09:00", "11:00", a.ID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.CheckAvailability(tt.resourceID, booking.Date(tt.date),
				booking.MustTime(tt.start), booking.MustTime(tt.end), tt.excluding)
			assert.Equal(t, tt.available, got.Available)
			if !tt.available {
				assert.Contains(t, got.ConflictIDs, a.ID)
			}
		})
	}
}

func TestLedger_Approve_FirstApprovedWins(t *testing.T) {
	l := newLedger(t)
	a := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	b := submit(t, l, "R1", "2026-01-15", "10:00", "12:00", "bob")

	approved, err := l.Approve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, approved.Status)

	_, err = l.Approve(b.ID)
	assert.ErrorIs(t, err, booking.ErrConflict)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	still, err := l.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, still.Status)
}

func TestLedger_Approve_IgnoresPendingOverlaps(t *testing.T) {
	l := newLedger(t)
	a := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	b := submit(t, l, "R1", "2026-01-15", "10:00", "12:00", "bob")

	// A stays pending; approving B only checks approved bookings.
	_, err := l.Approve(b.ID)
	require.NoError(t, err)

	_, err = l.Approve(a.ID)
	assert.ErrorIs(t, err, booking.ErrConflict)
}

func TestLedger_Approve_Errors(t *testing.T) {
	l := newLedger(t)

	_, err := l.Approve("missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)

	a := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	_, err = l.Approve(a.ID)
	require.NoError(t, err)

	_, err = l.Approve(a.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	d := submit(t, l, "R1", "2026-01-16", "09:00", "11:00", "alice")
	_, err = l.Decline(d.ID, "")
	require.NoError(t, err)
	_, err = l.Approve(d.ID)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
}

func TestLedger_Decline(t *testing.T) {
	l := newLedger(t)

	t.Run("default reason", func(t *testing.T) {
		b := submit(t, l, "R1", "2026-01-15", "09:00", "10:00", "alice")
		got, err := l.Decline(b.ID, "   ")
		require.NoError(t, err)
		assert.Equal(t, booking.StatusDeclined, got.Status)
		assert.Equal(t, booking.DefaultDeclineReason, got.DeclineReason)
		assert.Equal(t, "No reason provided", got.DeclineReason)
	})

	t.Run("explicit reason", func(t *testing.T) {
		b := submit(t, l, "R1", "2026-01-15", "10:00", "11:00", "alice")
		got, err := l.Decline(b.ID, "Maintenance scheduled")
		require.NoError(t, err)
		assert.Equal(t, "Maintenance scheduled", got.DeclineReason)
	})

	t.Run("terminal states", func(t *testing.T) {
		b := submit(t, l, "R1", "2026-01-15", "12:00", "13:00", "alice")
		_, err := l.Approve(b.ID)
		require.NoError(t, err)
		_, err = l.Decline(b.ID, "late")
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)

		stored, err := l.Get(b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusApproved, stored.Status)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := l.Decline("missing", "")
		assert.ErrorIs(t, err, booking.ErrNotFound)
	})
}

func TestLedger_Cancel(t *testing.T) {
	l := newLedger(t)
	b := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")

	err := l.Cancel(b.ID, "bob")
	assert.ErrorIs(t, err, booking.ErrForbidden)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, l.Cancel(b.ID, "alice"))
	_, err = l.Get(b.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	err = l.Cancel(b.ID, "alice")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestLedger_Cancel_OnlyWhilePending(t *testing.T) {
	l := newLedger(t)
	approved := submit(t, l, "R1", "2026-01-15", "09:00", "11:00", "alice")
	_, err := l.Approve(approved.ID)
	require.NoError(t, err)
	declined := submit(t, l, "R1", "2026-01-15", "12:00", "13:00", "alice")
	_, err = l.Decline(declined.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, l.Cancel(approved.ID, "alice"), booking.ErrInvalidTransition)
	assert.ErrorIs(t, l.Cancel(declined.ID, "alice"), booking.ErrInvalidTransition)

	_, total := l.List(booking.Filter{})
	assert.Equal(t, 2, total)
}

func TestLedger_ApprovedNeverOverlap(t *testing.T) {
	l := newLedger(t)
	slots := [][2]string{
		{"09:00", "11:00"}, {"10:00", "12:00"}, {"11:00", "13:00"},
		{"08:00", "09:30"}, {"12:30", "14:00"}, {"13:00", "15:00"},
	}
	for i, s := range slots {
		submit(t, l, "R1", "2026-01-15", s[0], s[1], fmt.Sprintf("user%d", i))
	}
	for _, p := range l.Pending() {
		_, _ = l.Approve(p.ID)
	}

	approved, _ := l.List(booking.Filter{Status: booking.StatusApproved, PageSize: 100})
	require.NotEmpty(t, approved)
	for i := range approved {
		for j := i + 1; j < len(approved); j++ {
			a, b := approved[i], approved[j]
			assert.False(t, a.Overlaps(b.ResourceID, b.Date, b.StartTime, b.EndTime),
				"%s and %s overlap", a.ID, b.ID)
		}
	}
}

func TestLedger_ConcurrentApprovals(t *testing.T) {
	l := newLedger(t)
	for i := 0; i < 20; i++ {
		submit(t, l, "R1", "2026-01-15", "09:00", "10:00", fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for _, p := range l.Pending() {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := l.Approve(id); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(p.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestLedger_ListAndSchedule(t *testing.T) {
	l := newLedger(t, "R1", "R2")
	late := submit(t, l, "R1", "2026-01-16", "09:00", "10:00", "alice")
	early := submit(t, l, "R1", "2026-01-15", "14:00", "15:00", "alice")
	earlier := submit(t, l, "R1", "2026-01-15", "08:00", "09:00", "bob")
	other := submit(t, l, "R2", "2026-01-15", "08:00", "09:00", "alice")

	items, total := l.List(booking.Filter{Requester: "alice"})
	require.Equal(t, 3, total)
	assert.Equal(t, []string{other.ID, early.ID, late.ID}, ids(items))

	items, total = l.List(booking.Filter{ResourceID: "R1", Date: "2026-01-15"})
	require.Equal(t, 2, total)
	assert.Equal(t, []string{earlier.ID, early.ID}, ids(items))

	page, total := l.List(booking.Filter{Page: 2, PageSize: 3})
	assert.Equal(t, 4, total)
	assert.Len(t, page, 1)

	for _, id := range []string{late.ID, earlier.ID, other.ID} {
		_, err := l.Approve(id)
		require.NoError(t, err)
	}
	schedule, err := l.Schedule("R1")
	require.NoError(t, err)
	assert.Equal(t, []string{earlier.ID, late.ID}, ids(schedule))

	_, err = l.Schedule("missing")
	assert.ErrorIs(t, err, booking.ErrResourceNotFound)
}

func TestLedger_Stats(t *testing.T) {
	l := booking.NewLedger(booking.WithIDGenerator(sequentialIDs()))
	for _, r := range []*resource.Resource{
		{ID: "lab1", Name: "Lab 1", Category: resource.CategoryLab, Capacity: 40},
		{ID: "lab2", Name: "Lab 2", Category: resource.CategoryLab, Capacity: 30},
		{ID: "hall", Name: "Hall", Category: resource.CategoryHall, Capacity: 150},
		{ID: "proj", Name: "Projector", Category: resource.CategoryEquipment, Capacity: 1},
	} {
		require.NoError(t, l.AddResource(r))
	}
	past := submit(t, l, "lab1", "2026-01-01", "09:00", "10:00", "a")
	future := submit(t, l, "lab1", "2026-02-01", "09:00", "10:00", "a")
	submit(t, l, "hall", "2026-02-01", "09:00", "10:00", "a")
	for _, id := range []string{past.ID, future.ID} {
		_, err := l.Approve(id)
		require.NoError(t, err)
	}

	st := l.Stats("2026-01-10")
	assert.Equal(t, booking.Stats{
		Labs:             2,
		Halls:            1,
		Equipment:        1,
		ApprovedBookings: 2,
		UpcomingApproved: 1,
		PendingBookings:  1,
	}, st)
}

func TestLedger_RemoveResourceCascades(t *testing.T) {
	l := newLedger(t, "R1", "R2")
	submit(t, l, "R1", "2026-01-15", "09:00", "10:00", "alice")
	submit(t, l, "R1", "2026-01-16", "09:00", "10:00", "alice")
	keep := submit(t, l, "R2", "2026-01-15", "09:00", "10:00", "alice")

	removed, err := l.RemoveResource("R1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	items, total := l.List(booking.Filter{})
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{keep.ID}, ids(items))

	_, err = l.RemoveResource("R1")
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestLedger_BookedResourceKeepsCategoryAndCapacity(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, "R1", "R2")
	repo := l.Resources()
	submit(t, l, "R1", "2026-01-15", "09:00", "10:00", "alice")

	booked, err := repo.CountBookings(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 1, booked)

	r1, err := repo.GetByID(ctx, "R1")
	require.NoError(t, err)
	r1.Capacity = 99
	assert.ErrorIs(t, repo.Update(ctx, r1), resource.ErrBooked)

	r1.Capacity = 30
	r1.Category = resource.CategoryHall
	assert.ErrorIs(t, repo.Update(ctx, r1), resource.ErrBooked)

	r1.Category = resource.CategoryLab
	r1.Name = "Renamed Lab"
	require.NoError(t, repo.Update(ctx, r1))

	// No bookings yet, so R2 may still change.
	r2, err := repo.GetByID(ctx, "R2")
	require.NoError(t, err)
	r2.Capacity = 5
	require.NoError(t, repo.Update(ctx, r2))
}

func TestLedger_ReturnsCopies(t *testing.T) {
	l := newLedger(t)
	b := submit(t, l, "R1", "2026-01-15", "09:00", "10:00", "alice")

	b.Status = booking.StatusApproved
	stored, err := l.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, stored.Status)
}

func ids(bs []*booking.Booking) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}
