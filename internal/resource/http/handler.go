package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

type Handler struct {
	service resource.Service
}

func NewHandler(service resource.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := resource.Filter{
		Query:    req.Query,
		Category: resource.Category(req.Category),
		Capacity: resource.CapacityBand(req.Capacity),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	resources, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		items[i] = NewResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		ID:          body.ID,
		Name:        body.Name,
		Category:    resource.Category(body.Category),
		Capacity:    body.Capacity,
		Location:    body.Location,
		Description: body.Description,
		Facilities:  body.Facilities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(res))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := resource.UpdateRequest{
		Name:        body.Name,
		Capacity:    body.Capacity,
		Location:    body.Location,
		Description: body.Description,
		Facilities:  body.Facilities,
	}
	if body.Category != nil {
		cat := resource.Category(*body.Category)
		req.Category = &cat
	}

	res, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(res))
}

// Delete removes a resource with all of its bookings. Resources with
// upcoming approved bookings need ?force=true.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var q DeleteRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, q.Force); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
