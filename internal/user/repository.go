package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/storage"
)

// StoreKey is the blob key the user directory is persisted under.
const StoreKey = "users"

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	Count(ctx context.Context) (int, error)
}

// storeRepository keeps the directory in memory and writes the whole
// directory to a blob store after every change.
type storeRepository struct {
	mu    sync.RWMutex
	users []*User
	store storage.Storage
}

// NewStoreRepository loads the directory from store. A missing blob is an empty directory.
func NewStoreRepository(ctx context.Context, store storage.Storage) (Repository, error) {
	r := &storeRepository{store: store}

	data, err := store.Get(ctx, StoreKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := json.Unmarshal(data, &r.users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return r, nil
}

func (r *storeRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u := r.find(id); u != nil {
		return u.clone(), nil
	}
	return nil, ErrNotFound
}

func (r *storeRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyUsed
		}
	}
	r.users = append(r.users, u.clone())
	if err := r.flush(ctx); err != nil {
		r.users = r.users[:len(r.users)-1]
		return err
	}
	return nil
}

func (r *storeRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.find(id)
	if u == nil {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return r.flush(ctx)
}

func (r *storeRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	r.mu.RLock()
	matched := make([]*User, 0)
	for _, u := range r.users {
		if filter.matches(u) {
			matched = append(matched, u.clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return response.Paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *storeRepository) Update(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.users {
		if existing.ID == u.ID {
			r.users[i] = u.clone()
			return r.flush(ctx)
		}
	}
	return ErrNotFound
}

func (r *storeRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *storeRepository) find(id string) *User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// flush must be called with the write lock held.
func (r *storeRepository) flush(ctx context.Context) error {
	users := r.users
	if users == nil {
		users = []*User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := r.store.Put(ctx, StoreKey, data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}
