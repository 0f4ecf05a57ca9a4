package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/campus-booking-backend/internal/api"
	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/notify"
	"github.com/nekogravitycat/campus-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
	"github.com/nekogravitycat/campus-booking-backend/internal/seed"
	"github.com/nekogravitycat/campus-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Store        storage.Storage
	Notifier     notify.Notifier
	Logger       *logger.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	// Seed is applied to an empty ledger; nil disables seeding.
	Seed *seed.Catalog
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	Ledger      *booking.Ledger
	Snapshotter *booking.Snapshotter
}

// NewContainer initializes all modules and returns the container.
// The ledger is restored from the store; a failed restore starts empty.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Ledger
	ledger := booking.NewLedger()
	snapshotter := booking.NewSnapshotter(ledger, cfg.Store, log)
	if err := snapshotter.Restore(ctx); err != nil {
		log.WarnContext(ctx, "failed to load ledger snapshot, starting empty", "error", err)
	}

	// User Module
	userRepo, err := user.NewStoreRepository(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	userService := user.NewService(userRepo, passwordHasher, log)

	// Sample data
	if cfg.Seed != nil {
		seeder := seed.NewSeeder(ledger, userService, log)
		if err := seeder.Users(ctx, cfg.Seed); err != nil {
			return nil, err
		}
		applied, err := seeder.Ledger(ctx, cfg.Seed)
		if err != nil {
			return nil, err
		}
		if applied {
			snapshotter.Persist(ctx)
		}
	}

	// Resource Module
	resService := resource.NewService(ledger.Resources(), snapshotter, log)

	// Booking Module
	bookingService := booking.NewService(ledger, snapshotter, notifier, log)

	// Router
	router := api.NewRouter(
		api.RouterConfig{IsProduction: cfg.IsProduction, ProdOrigins: cfg.ProdOrigins},
		log,
		userService,
		resService,
		bookingService,
		jwtManager,
	)

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		Ledger:      ledger,
		Snapshotter: snapshotter,
	}, nil
}
