package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID    = "userID"
	ctxUserEmail = "userEmail"
	ctxIsAdmin   = "isAdmin"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

// IsAdmin reports whether the caller is an admin, as resolved by AuthRequired.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
