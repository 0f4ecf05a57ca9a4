package resource

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
)

type CreateRequest struct {
	ID          string // optional; generated when empty
	Name        string
	Category    Category
	Capacity    int
	Location    string
	Description string
	Facilities  []string
}

type UpdateRequest struct {
	Name        *string
	Category    *Category
	Capacity    *int
	Location    *string
	Description *string
	Facilities  []string // nil leaves facilities unchanged
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	// Delete removes the resource and all of its bookings. Without force it
	// refuses while approved bookings remain for today or later.
	Delete(ctx context.Context, id string, force bool) error
}

type service struct {
	repo      Repository
	validator *Validator
	persister Persister
	log       *logger.Logger
	clock     func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source used for "today".
func WithClock(clock func() time.Time) Option {
	return func(s *service) { s.clock = clock }
}

func NewService(repo Repository, persister Persister, log *logger.Logger, opts ...Option) Service {
	s := &service{
		repo:      repo,
		validator: NewValidator(),
		persister: persister,
		log:       log,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	res := &Resource{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Capacity:    req.Capacity,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		Facilities:  cleanFacilities(req.Facilities),
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.validator.Validate(res); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	s.persister.Persist(ctx)

	s.log.InfoContext(ctx, "resource created", "resource_id", res.ID, "category", res.Category)
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, 0, ErrInvalidInput.WithMessage("category must be one of: lab hall equipment")
	}
	if !filter.Capacity.IsValid() {
		return nil, 0, ErrInvalidInput.WithMessage("capacity must be one of: 0-20 21-50 51-100 100+")
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		res.Name = strings.TrimSpace(*req.Name)
	}
	if (req.Category != nil && *req.Category != res.Category) ||
		(req.Capacity != nil && *req.Capacity != res.Capacity) {
		booked, err := s.repo.CountBookings(ctx, id)
		if err != nil {
			return nil, err
		}
		if booked > 0 {
			return nil, ErrBooked
		}
	}

	if req.Category != nil {
		res.Category = *req.Category
	}
	if req.Capacity != nil {
		res.Capacity = *req.Capacity
	}
	if req.Location != nil {
		res.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		res.Description = strings.TrimSpace(*req.Description)
	}
	if req.Facilities != nil {
		res.Facilities = cleanFacilities(req.Facilities)
	}

	if err := s.validator.Validate(res); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	s.persister.Persist(ctx)

	return res, nil
}

func (s *service) Delete(ctx context.Context, id string, force bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if !force {
		today := now.With(s.clock()).BeginningOfDay().Format("2006-01-02")
		active, err := s.repo.CountUpcomingApproved(ctx, id, today)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrResourceInUse
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.persister.Persist(ctx)

	s.log.InfoContext(ctx, "resource deleted", "resource_id", id, "forced", force)
	return nil
}

func cleanFacilities(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
