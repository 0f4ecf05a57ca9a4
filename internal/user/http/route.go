package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
)

// RegisterRoutes registers sign-up, sign-in and the admin user directory.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, guards auth.Guards) {
	// Public
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)

	g.GET("/me", guards.Authenticated, h.Me)

	// Directory management
	users := g.Group("/users", guards.Authenticated, guards.Admin)
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.PATCH("/:id", h.Update) // Activate, deactivate, grant or revoke admin
	}
}
