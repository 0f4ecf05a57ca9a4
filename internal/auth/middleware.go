package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
)

var (
	ErrUnauthorized  = apperror.New(apperror.KindUnauthorized, http.StatusUnauthorized, "invalid or expired token")
	ErrAdminRequired = apperror.New(apperror.KindForbidden, http.StatusForbidden, "admin access required")
)

// AccountResolver looks up the current state of a token's subject and
// reports whether the account is an admin right now. It returns an error
// when the account no longer exists or may not sign in.
type AccountResolver func(ctx context.Context, userID string) (isAdmin bool, err error)

// Guards are the middlewares route packages attach to their groups.
type Guards struct {
	// Authenticated requires a valid token for a live account.
	Authenticated gin.HandlerFunc
	// Admin requires the account to be an admin. It runs after Authenticated.
	Admin gin.HandlerFunc
}

// NewGuards builds Guards that validate tokens with jwtManager and take the
// admin flag from resolve rather than from the token.
func NewGuards(jwtManager *JWTManager, resolve AccountResolver) Guards {
	return Guards{
		Authenticated: AuthRequired(jwtManager, resolve),
		Admin:         AdminRequired(),
	}
}

// AuthRequired validates the Authorization: Bearer <token> header and stores
// the caller in the Gin context. With a nil resolver the token's admin claim
// is used as is.
func AuthRequired(jwtManager *JWTManager, resolve AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, ErrUnauthorized.WithMessage("missing or malformed Authorization header"))
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			abort(c, ErrUnauthorized)
			return
		}

		isAdmin := claims.IsAdmin
		if resolve != nil {
			if isAdmin, err = resolve(c.Request.Context(), claims.UserID); err != nil {
				abort(c, err)
				return
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxIsAdmin, isAdmin)

		c.Next()
	}
}

// AdminRequired rejects callers that AuthRequired did not mark as admin.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			abort(c, ErrUnauthorized)
			return
		}
		if !IsAdmin(c) {
			abort(c, ErrAdminRequired)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
