package api

import (
	"context"
	"errors"

	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
	"github.com/nekogravitycat/campus-booking-backend/internal/user"
)

// accountResolver checks every authenticated request against the user
// directory, so deactivation and admin changes apply before tokens expire.
func accountResolver(userService user.Service) auth.AccountResolver {
	return func(ctx context.Context, userID string) (bool, error) {
		u, err := userService.GetByID(ctx, userID)
		if errors.Is(err, user.ErrNotFound) {
			return false, auth.ErrUnauthorized.WithMessage("user not found")
		}
		if err != nil {
			return false, err
		}
		if !u.IsActive {
			return false, user.ErrInactiveUser
		}
		return u.IsAdmin, nil
	}
}
