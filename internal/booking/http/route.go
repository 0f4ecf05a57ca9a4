package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, guards auth.Guards) {
	group := g.Group("/bookings", guards.Authenticated)

	// === Authenticated Routes ===
	{
		group.GET("", h.List)
		group.GET("/pending", guards.Admin, h.Pending)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.DELETE("/:id", h.Cancel)
		group.POST("/:id/approve", guards.Admin, h.Approve)
		group.POST("/:id/decline", guards.Admin, h.Decline)
	}

	// Per-resource calendar views
	resources := g.Group("/resources/:id", guards.Authenticated)
	{
		resources.GET("/schedule", h.Schedule)
		resources.GET("/availability", h.Availability)
		resources.GET("/free-slots", h.FreeSlots)
	}

	g.GET("/stats", guards.Authenticated, h.Stats)
}
