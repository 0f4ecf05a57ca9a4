package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

// Blob keys the ledger is persisted under.
const (
	KeyResources = "resources"
	KeyBookings  = "bookings"
)

const persistTimeout = 10 * time.Second

// Save writes the resources and bookings to store as JSON arrays.
func (l *Ledger) Save(ctx context.Context, store storage.Storage) error {
	l.mu.RLock()
	resources, errRes := json.Marshal(nonNil(l.resources))
	bookings, errBook := json.Marshal(nonNil(l.bookings))
	l.mu.RUnlock()

	if err := errors.Join(errRes, errBook); err != nil {
		return fmt.Errorf("encode ledger snapshot: %w", err)
	}
	if err := store.Put(ctx, KeyResources, resources); err != nil {
		return fmt.Errorf("save %s: %w", KeyResources, err)
	}
	if err := store.Put(ctx, KeyBookings, bookings); err != nil {
		return fmt.Errorf("save %s: %w", KeyBookings, err)
	}
	return nil
}

// Load replaces the ledger contents with the snapshot in store. Missing
// blobs load as empty collections. On any other failure the ledger is left
// empty and the error is returned.
func (l *Ledger) Load(ctx context.Context, store storage.Storage) error {
	resources, errRes := loadBlob[*resource.Resource](ctx, store, KeyResources)
	bookings, errBook := loadBlob[*Booking](ctx, store, KeyBookings)
	err := errors.Join(errRes, errBook)
	if err == nil {
		err = validateSnapshot(resources, bookings)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.resources, l.bookings = nil, nil
		return err
	}
	l.resources, l.bookings = resources, bookings
	return nil
}

func loadBlob[T any](ctx context.Context, store storage.Storage, key string) ([]T, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// validateSnapshot rejects snapshots the ledger could not have produced.
func validateSnapshot(resources []*resource.Resource, bookings []*Booking) error {
	known := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		if r == nil || r.ID == "" || !r.Category.IsValid() || r.Capacity < 1 {
			return errors.New("decode resources: malformed resource record")
		}
		if _, dup := known[r.ID]; dup {
			return fmt.Errorf("decode resources: duplicate resource id %q", r.ID)
		}
		known[r.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(bookings))
	var approved []*Booking
	for _, b := range bookings {
		if b == nil || b.ID == "" || !b.Status.IsValid() {
			return errors.New("decode bookings: malformed booking record")
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("decode bookings: duplicate booking id %q", b.ID)
		}
		seen[b.ID] = struct{}{}

		if date, err := ParseDate(string(b.Date)); err != nil || date != b.Date {
			return fmt.Errorf("decode bookings: booking %q has invalid date %q", b.ID, b.Date)
		}
		if !b.StartTime.Valid() || !b.EndTime.Valid() || b.StartTime >= b.EndTime {
			return fmt.Errorf("decode bookings: booking %q has invalid interval", b.ID)
		}
		if _, ok := known[b.ResourceID]; !ok {
			return fmt.Errorf("decode bookings: booking %q references unknown resource %q", b.ID, b.ResourceID)
		}

		if b.Status == StatusApproved {
			for _, other := range approved {
				if other.Overlaps(b.ResourceID, b.Date, b.StartTime, b.EndTime) {
					return fmt.Errorf("decode bookings: approved bookings %q and %q overlap", other.ID, b.ID)
				}
			}
			approved = append(approved, b)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Snapshotter ties a ledger to its store. Snapshots are written one at a
// time, so a later Persist always stores state at least as new as an earlier one.
type Snapshotter struct {
	mu     sync.Mutex
	ledger *Ledger
	store  storage.Storage
	log    *logger.Logger
}

func NewSnapshotter(ledger *Ledger, store storage.Storage, log *logger.Logger) *Snapshotter {
	return &Snapshotter{ledger: ledger, store: store, log: log}
}

// Persist saves the ledger. Failures are logged and otherwise ignored;
// the in-memory state remains authoritative.
func (s *Snapshotter) Persist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.Save(ctx, s.store); err != nil {
		s.log.WarnContext(ctx, "failed to save ledger snapshot", "error", err)
	}
}

// Restore loads the ledger from the store. The ledger is empty after a failure.
func (s *Snapshotter) Restore(ctx context.Context) error {
	if err := s.ledger.Load(ctx, s.store); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "ledger snapshot loaded", "empty", s.ledger.IsEmpty())
	return nil
}
