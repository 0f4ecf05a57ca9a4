package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
)

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, email, password, displayName string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	// Provision creates a user unless the email is already taken. Used for demo accounts.
	Provision(ctx context.Context, email, password, displayName string, isAdmin bool) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    *logger.Logger

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, log *logger.Logger) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		log:               log,
		minPasswordLength: 7,
	}
}

func (s *service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	u, err := s.newUser(email, password, displayName)
	if err != nil {
		return nil, err
	}

	// Check if email is already used.
	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return nil, ErrEmailAlreadyUsed
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

func (s *service) Provision(ctx context.Context, email, password, displayName string, isAdmin bool) (*User, error) {
	if existing, err := s.repo.GetByEmail(ctx, normalizeEmail(email)); err == nil {
		return existing, nil
	}

	u, err := s.newUser(email, password, displayName)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	// Compare password hash.
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Upgrade hashes made under an older BCRYPT_COST (best effort).
	if s.hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u, password)
	}

	// Update last_login_at (best effort; do not fail login if update fails).
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.WarnContext(ctx, "failed to record last login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) rehash(ctx context.Context, u *User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		updated := u.clone()
		updated.PasswordHash = hash
		if err = s.repo.Update(ctx, updated); err == nil {
			u.PasswordHash = hash
			return
		}
	}
	s.log.WarnContext(ctx, "failed to upgrade password hash", "user_id", u.ID, "error", err)
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		if d := strings.TrimSpace(*req.DisplayName); d != "" {
			u.DisplayName = &d
		} else {
			u.DisplayName = nil
		}
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) newUser(email, password, displayName string) (*User, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort.WithMessage(
			fmt.Sprintf("password must be at least %d characters", s.minPasswordLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayNamePtr *string
	if d := strings.TrimSpace(displayName); d != "" {
		displayNamePtr = &d
	}

	return &User{
		ID:           uuid.NewString(),
		Email:        cleanEmail,
		PasswordHash: hash,
		DisplayName:  displayNamePtr,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}, nil
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
