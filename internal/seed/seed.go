package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jinzhu/now"

	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
	"github.com/nekogravitycat/campus-booking-backend/internal/user"
)

//go:embed default.toml
var defaultCatalog string

// Catalog is the sample data applied to an empty ledger.
type Catalog struct {
	Users     []UserSeed     `toml:"users"`
	Resources []ResourceSeed `toml:"resources"`
	Bookings  []BookingSeed  `toml:"bookings"`
}

type UserSeed struct {
	Email       string `toml:"email"`
	DisplayName string `toml:"display_name"`
	Password    string `toml:"password"`
	Admin       bool   `toml:"admin"`
}

type ResourceSeed struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Category    string   `toml:"category"`
	Capacity    int      `toml:"capacity"`
	Location    string   `toml:"location"`
	Description string   `toml:"description"`
	Facilities  []string `toml:"facilities"`
}

// BookingSeed places a booking relative to the day the seed is applied,
// unless Date is set explicitly.
type BookingSeed struct {
	ResourceID    string `toml:"resource_id"`
	Requester     string `toml:"requester"`
	Date          string `toml:"date"`
	DayOffset     int    `toml:"day_offset"`
	StartTime     string `toml:"start_time"`
	EndTime       string `toml:"end_time"`
	Purpose       string `toml:"purpose"`
	Contact       string `toml:"contact"`
	Status        string `toml:"status"`
	DeclineReason string `toml:"decline_reason"`
}

// Load reads a catalog from a TOML file.
func Load(path string) (*Catalog, error) {
	var cat Catalog
	if _, err := toml.DecodeFile(path, &cat); err != nil {
		return nil, fmt.Errorf("failed to load seed catalog: %w", err)
	}
	return &cat, nil
}

// Default returns the built-in sample catalog.
func Default() (*Catalog, error) {
	var cat Catalog
	if _, err := toml.Decode(defaultCatalog, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode default seed catalog: %w", err)
	}
	return &cat, nil
}

// Seeder applies a catalog to the ledger and the user directory.
type Seeder struct {
	ledger    *booking.Ledger
	users     user.Service
	validator *resource.Validator
	log       *logger.Logger
	clock     func() time.Time
}

func NewSeeder(ledger *booking.Ledger, users user.Service, log *logger.Logger) *Seeder {
	return &Seeder{
		ledger:    ledger,
		users:     users,
		validator: resource.NewValidator(),
		log:       log,
		clock:     time.Now,
	}
}

// Users provisions the demo accounts. Existing emails are left untouched.
func (s *Seeder) Users(ctx context.Context, cat *Catalog) error {
	for _, u := range cat.Users {
		if _, err := s.users.Provision(ctx, u.Email, u.Password, u.DisplayName, u.Admin); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
	}
	s.log.InfoContext(ctx, "seed users provisioned", "count", len(cat.Users))
	return nil
}

// Ledger adds the catalog resources and bookings. It only runs against an
// empty ledger and reports whether anything was applied.
func (s *Seeder) Ledger(ctx context.Context, cat *Catalog) (bool, error) {
	if !s.ledger.IsEmpty() {
		return false, nil
	}

	today := now.With(s.clock()).BeginningOfDay()
	for _, rs := range cat.Resources {
		r := &resource.Resource{
			ID:          rs.ID,
			Name:        rs.Name,
			Category:    resource.Category(rs.Category),
			Capacity:    rs.Capacity,
			Location:    rs.Location,
			Description: rs.Description,
			Facilities:  rs.Facilities,
			CreatedAt:   today.UTC(),
		}
		if err := s.validator.Validate(r); err != nil {
			return false, fmt.Errorf("seed resource %q: %w", rs.ID, err)
		}
		if err := s.ledger.AddResource(r); err != nil {
			return false, fmt.Errorf("seed resource %q: %w", rs.ID, err)
		}
	}

	for i, bs := range cat.Bookings {
		if err := s.applyBooking(bs, today); err != nil {
			return false, fmt.Errorf("seed booking #%d: %w", i+1, err)
		}
	}

	s.log.InfoContext(ctx, "seed catalog applied",
		"resources", len(cat.Resources),
		"bookings", len(cat.Bookings),
	)
	return true, nil
}

func (s *Seeder) applyBooking(bs BookingSeed, today time.Time) error {
	date := booking.DateOf(today.AddDate(0, 0, bs.DayOffset))
	if bs.Date != "" {
		parsed, err := booking.ParseDate(bs.Date)
		if err != nil {
			return err
		}
		date = parsed
	}
	start, err := booking.ParseTimeOfDay(bs.StartTime)
	if err != nil {
		return err
	}
	end, err := booking.ParseTimeOfDay(bs.EndTime)
	if err != nil {
		return err
	}

	b, err := s.ledger.Submit(booking.SubmitRequest{
		ResourceID: bs.ResourceID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Requester:  bs.Requester,
		Purpose:    bs.Purpose,
		Contact:    bs.Contact,
	})
	if err != nil {
		return err
	}

	switch booking.Status(bs.Status) {
	case "", booking.StatusPending:
		return nil
	case booking.StatusApproved:
		_, err = s.ledger.Approve(b.ID)
	case booking.StatusDeclined:
		_, err = s.ledger.Decline(b.ID, bs.DeclineReason)
	default:
		err = fmt.Errorf("unknown status %q", bs.Status)
	}
	return err
}
