package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(apperror.KindConflict, http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(apperror.KindForbidden, http.StatusForbidden, "user is inactive")
	ErrEmailRequired      = apperror.New(apperror.KindInvalidInput, http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(apperror.KindInvalidInput, http.StatusBadRequest, "password is too short")
)

// User represents a user in the system. The email is the requester
// identity recorded on bookings.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	DisplayName  *string    `json:"display_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsAdmin      bool       `json:"is_admin"`
}

func (u *User) clone() *User {
	c := *u
	if u.DisplayName != nil {
		d := *u.DisplayName
		c.DisplayName = &d
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Email    string // substring match
	IsActive *bool  // Use pointer to distinguish between false and nil (not set)
	IsAdmin  *bool

	Page     int
	PageSize int
}

func (f UserFilter) matches(u *User) bool {
	if f.Email != "" && !strings.Contains(u.Email, normalizeEmail(f.Email)) {
		return false
	}
	if f.IsActive != nil && u.IsActive != *f.IsActive {
		return false
	}
	if f.IsAdmin != nil && u.IsAdmin != *f.IsAdmin {
		return false
	}
	return true
}

// UpdateUserRequest carries the admin-editable attributes of a user.
type UpdateUserRequest struct {
	DisplayName *string
	IsActive    *bool
	IsAdmin     *bool
}
