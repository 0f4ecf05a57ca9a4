package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

type Handler struct {
	service    booking.Service
	resService resource.Service
}

func NewHandler(service booking.Service, resService resource.Service) *Handler {
	return &Handler{
		service:    service,
		resService: resService,
	}
}

// actor builds the caller identity from the JWT claims.
func actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		Requester: auth.GetUserEmail(c),
		IsAdmin:   auth.IsAdmin(c),
	}
}

func (h *Handler) respond(c *gin.Context, status int, b *booking.Booking) {
	c.JSON(status, NewBookingResponse(b, h.resourceName(c, b.ResourceID)))
}

func (h *Handler) respondList(c *gin.Context, bookings []*booking.Booking) []BookingResponse {
	names := make(map[string]string)
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		name, ok := names[b.ResourceID]
		if !ok {
			name = h.resourceName(c, b.ResourceID)
			names[b.ResourceID] = name
		}
		items[i] = NewBookingResponse(b, name)
	}
	return items
}

func (h *Handler) resourceName(c *gin.Context, id string) string {
	res, err := h.resService.GetByID(c.Request.Context(), id)
	if err != nil {
		return ""
	}
	return res.Name
}

// List returns the caller's bookings. Admins see all bookings and may filter by requester.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		Requester:  req.Requester,
		ResourceID: req.ResourceID,
		Date:       booking.Date(req.Date),
		Status:     booking.Status(req.Status),
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	bookings, total, err := h.service.List(c.Request.Context(), actor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(h.respondList(c, bookings), req.Page, req.PageSize, total))
}

// Pending returns the approval queue. Access Control: Admin only.
func (h *Handler) Pending(c *gin.Context) {
	bookings, err := h.service.Pending(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.respondList(c, bookings)})
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), actor(c), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, b)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req, err := body.ToSubmitRequest()
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Submit(c.Request.Context(), actor(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusCreated, b)
}

// Approve re-checks the slot against approved bookings and approves.
// Access Control: Admin only.
func (h *Handler) Approve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.Approve(c.Request.Context(), actor(c), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, b)
}

// Decline declines a pending booking. The body is optional.
// Access Control: Admin only.
func (h *Handler) Decline(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body DeclineBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	b, err := h.service.Decline(c.Request.Context(), actor(c), uri.ID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, b)
}

// Cancel deletes a pending booking. Only its requester may cancel it.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), actor(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Schedule lists the approved bookings of a resource.
func (h *Handler) Schedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	bookings, err := h.service.Schedule(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.respondList(c, bookings)})
}

// Availability answers whether a slot on a resource is free of non-declined bookings.
func (h *Handler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var q AvailabilityRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	date, start, end, err := parseSlot(q.Date, q.StartTime, q.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	got, err := h.service.CheckAvailability(c.Request.Context(), uri.ID, date, start, end, q.Exclude)
	if err != nil {
		response.Error(c, err)
		return
	}

	conflicts := got.ConflictIDs
	if conflicts == nil {
		conflicts = []string{}
	}
	c.JSON(http.StatusOK, AvailabilityResponse{Available: got.Available, ConflictIDs: conflicts})
}

// FreeSlots lists the free windows of a resource within opening hours.
func (h *Handler) FreeSlots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var q FreeSlotsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if q.Open == "" {
		q.Open = DefaultOpen
	}
	if q.Close == "" {
		q.Close = DefaultClose
	}

	date, open, closing, err := parseSlot(q.Date, q.Open, q.Close)
	if err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), uri.ID, date, open, closing)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TimeSlotResponse, len(slots))
	for i, s := range slots {
		items[i] = TimeSlotResponse{StartTime: s.Start.String(), EndTime: s.End.String()}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "items": items})
}

// Stats returns catalogue and booking counters for the dashboard.
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
