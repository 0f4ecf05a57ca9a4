package resource

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(apperror.KindNotFound, http.StatusNotFound, "resource not found")
	ErrInvalidInput  = apperror.New(apperror.KindInvalidInput, http.StatusBadRequest, "invalid resource")
	ErrDuplicateID   = apperror.New(apperror.KindConflict, http.StatusConflict, "resource id already exists")
	ErrResourceInUse = apperror.New(apperror.KindResourceInUse, http.StatusConflict, "resource has upcoming approved bookings")
	ErrBooked        = apperror.New(apperror.KindResourceInUse, http.StatusConflict, "category and capacity cannot change once the resource has bookings")
)

type Category string

const (
	CategoryLab       Category = "lab"
	CategoryHall      Category = "hall"
	CategoryEquipment Category = "equipment"
)

// ValidCategories lists every accepted Category.
var ValidCategories = []Category{CategoryLab, CategoryHall, CategoryEquipment}

func (c Category) IsValid() bool {
	for _, v := range ValidCategories {
		if c == v {
			return true
		}
	}
	return false
}

// Resource represents a bookable unit (e.g., Computer Lab A, Projector Set).
type Resource struct {
	ID          string    `json:"id" validate:"required,max=64"`
	Name        string    `json:"name" validate:"required,max=120"`
	Category    Category  `json:"category" validate:"required,oneof=lab hall equipment"`
	Capacity    int       `json:"capacity" validate:"min=1"`
	Location    string    `json:"location,omitempty" validate:"max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Facilities  []string  `json:"facilities,omitempty" validate:"max=50,dive,required,max=80"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clone returns a deep copy of r.
func (r *Resource) Clone() *Resource {
	c := *r
	if r.Facilities != nil {
		c.Facilities = append([]string(nil), r.Facilities...)
	}
	return &c
}

// CapacityBand buckets resources by capacity for list filtering.
type CapacityBand string

const (
	CapacityAny    CapacityBand = ""
	CapacitySmall  CapacityBand = "0-20"
	CapacityMedium CapacityBand = "21-50"
	CapacityLarge  CapacityBand = "51-100"
	CapacityHuge   CapacityBand = "100+"
)

func (b CapacityBand) IsValid() bool {
	switch b {
	case CapacityAny, CapacitySmall, CapacityMedium, CapacityLarge, CapacityHuge:
		return true
	}
	return false
}

// Contains reports whether capacity falls within b.
func (b CapacityBand) Contains(capacity int) bool {
	switch b {
	case CapacitySmall:
		return capacity <= 20
	case CapacityMedium:
		return capacity >= 21 && capacity <= 50
	case CapacityLarge:
		return capacity >= 51 && capacity <= 100
	case CapacityHuge:
		return capacity > 100
	default:
		return true
	}
}

// Filter defines parameters for listing resources.
type Filter struct {
	Query    string // case-insensitive match on name or location
	Category Category
	Capacity CapacityBand
	Page     int
	PageSize int
}

// Matches reports whether r passes every set criterion of f.
func (f Filter) Matches(r *Resource) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if !f.Capacity.Contains(r.Capacity) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strings.ToLower(r.Location), q) {
			return false
		}
	}
	return true
}
