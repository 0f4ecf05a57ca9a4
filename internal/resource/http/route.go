package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
)

// RegisterRoutes registers resource-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, guards auth.Guards) {
	group := g.Group("/resources", guards.Authenticated)

	// === Authenticated Routes ===
	{
		group.GET("", h.List)    // List resources
		group.GET("/:id", h.Get) // Get resource details
	}

	// === Admin Routes ===
	admin := group.Group("", guards.Admin)
	{
		admin.POST("", h.Create)       // Create resource
		admin.PATCH("/:id", h.Update)  // Update resource
		admin.DELETE("/:id", h.Delete) // Delete resource and its bookings
	}
}
