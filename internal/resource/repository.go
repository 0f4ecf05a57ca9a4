package resource

import (
	"context"
)

// Repository defines the interface for resource storage.
// Deleting a resource also removes every booking made against it.
// Update fails with ErrBooked when it would change the category or
// capacity of a resource that has bookings.
type Repository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, r *Resource) error
	Delete(ctx context.Context, id string) error

	// CountBookings counts bookings of any status made against the resource.
	CountBookings(ctx context.Context, id string) (int, error)

	// CountUpcomingApproved counts approved bookings of the resource dated on or after from (YYYY-MM-DD).
	CountUpcomingApproved(ctx context.Context, id string, from string) (int, error)
}

// Persister snapshots state after a successful mutation.
type Persister interface {
	Persist(ctx context.Context)
}
