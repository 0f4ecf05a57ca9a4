package booking

import (
	"context"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

// Resources exposes the ledger's catalogue as a resource.Repository.
func (l *Ledger) Resources() resource.Repository {
	return &resourceRepository{ledger: l}
}

// Resource returns a copy of the resource with the given id.
func (l *Ledger) Resource(id string) (*resource.Resource, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.findResource(id)
	if idx < 0 {
		return nil, resource.ErrNotFound
	}
	return l.resources[idx].Clone(), nil
}

// AddResource appends r to the catalogue. Ids must be unique.
func (l *Ledger) AddResource(r *resource.Resource) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findResource(r.ID) >= 0 {
		return resource.ErrDuplicateID
	}
	l.resources = append(l.resources, r.Clone())
	return nil
}

// RemoveResource deletes the resource and every booking made against it,
// returning the number of bookings removed.
func (l *Ledger) RemoveResource(id string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.findResource(id)
	if idx < 0 {
		return 0, resource.ErrNotFound
	}
	l.resources = append(l.resources[:idx], l.resources[idx+1:]...)

	kept := l.bookings[:0]
	for _, b := range l.bookings {
		if b.ResourceID != id {
			kept = append(kept, b)
		}
	}
	removed := len(l.bookings) - len(kept)
	clear(l.bookings[len(kept):])
	l.bookings = kept
	return removed, nil
}

func (l *Ledger) countBookings(resourceID string) int {
	n := 0
	for _, b := range l.bookings {
		if b.ResourceID == resourceID {
			n++
		}
	}
	return n
}

func (l *Ledger) findResource(id string) int {
	for i, r := range l.resources {
		if r.ID == id {
			return i
		}
	}
	return -1
}

type resourceRepository struct {
	ledger *Ledger
}

func (r *resourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	return r.ledger.AddResource(res)
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	return r.ledger.Resource(id)
}

func (r *resourceRepository) List(ctx context.Context, filter resource.Filter) ([]*resource.Resource, int, error) {
	r.ledger.mu.RLock()
	matched := make([]*resource.Resource, 0)
	for _, res := range r.ledger.resources {
		if filter.Matches(res) {
			matched = append(matched, res.Clone())
		}
	}
	r.ledger.mu.RUnlock()

	return response.Paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *resourceRepository) Update(ctx context.Context, res *resource.Resource) error {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.findResource(res.ID)
	if idx < 0 {
		return resource.ErrNotFound
	}
	current := l.resources[idx]
	if (res.Category != current.Category || res.Capacity != current.Capacity) && l.countBookings(res.ID) > 0 {
		return resource.ErrBooked
	}
	updated := res.Clone()
	updated.CreatedAt = current.CreatedAt
	l.resources[idx] = updated
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.ledger.RemoveResource(id)
	return err
}

func (r *resourceRepository) CountBookings(ctx context.Context, id string) (int, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.findResource(id) < 0 {
		return 0, resource.ErrNotFound
	}
	return l.countBookings(id), nil
}

func (r *resourceRepository) CountUpcomingApproved(ctx context.Context, id string, from string) (int, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.findResource(id) < 0 {
		return 0, resource.ErrNotFound
	}
	count := 0
	for _, b := range l.bookings {
		if b.ResourceID == id && b.Status == StatusApproved && string(b.Date) >= from {
			count++
		}
	}
	return count, nil
}
