package http

import (
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	Query    string `form:"q" binding:"omitempty,max=100"`
	Category string `form:"category" binding:"omitempty,oneof=lab hall equipment"`
	Capacity string `form:"capacity" binding:"omitempty,oneof=0-20 21-50 51-100 100+"`
}

type ResourceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Capacity    int       `json:"capacity"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Facilities  []string  `json:"facilities"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResourceTag is a brief representation of a resource.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	facilities := r.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	return ResourceResponse{
		ID:          r.ID,
		Name:        r.Name,
		Category:    string(r.Category),
		Capacity:    r.Capacity,
		Location:    r.Location,
		Description: r.Description,
		Facilities:  facilities,
		CreatedAt:   r.CreatedAt,
	}
}

type CreateRequest struct {
	ID          string   `json:"id" binding:"omitempty,max=64,alphanum"`
	Name        string   `json:"name" binding:"required,max=120"`
	Category    string   `json:"category" binding:"required,oneof=lab hall equipment"`
	Capacity    int      `json:"capacity" binding:"required,min=1"`
	Location    string   `json:"location" binding:"omitempty,max=200"`
	Description string   `json:"description" binding:"omitempty,max=2000"`
	Facilities  []string `json:"facilities" binding:"omitempty,max=50,dive,required,max=80"`
}

type UpdateRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=120"`
	Category    *string  `json:"category" binding:"omitempty,oneof=lab hall equipment"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=1"`
	Location    *string  `json:"location" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Facilities  []string `json:"facilities" binding:"omitempty,max=50,dive,required,max=80"`
}

// DeleteRequest carries the query parameters of DELETE /resources/:id.
type DeleteRequest struct {
	Force bool `form:"force"`
}
