package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/campus-booking-backend/internal/auth"
	"github.com/nekogravitycat/campus-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/campus-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
	"github.com/nekogravitycat/campus-booking-backend/internal/resource"
	resHttp "github.com/nekogravitycat/campus-booking-backend/internal/resource/http"
	"github.com/nekogravitycat/campus-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/campus-booking-backend/internal/user/http"
)

// RouterConfig carries the settings the router needs beyond services.
type RouterConfig struct {
	IsProduction bool
	ProdOrigins  string
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(
	cfg RouterConfig,
	log *logger.Logger,
	userService user.Service,
	resourceService resource.Service,
	bookingService booking.Service,
	jwtManager *auth.JWTManager,
) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.GinMiddleware(log), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg)
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.MaxAge = 12 * time.Hour
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Guards: token validation plus a directory check of the account's
	// current status and admin flag.
	guards := auth.NewGuards(jwtManager, accountResolver(userService))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(userService, jwtManager)
	resHandler := resHttp.NewHandler(resourceService)
	bookingHandler := bookingHttp.NewHandler(bookingService, resourceService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, guards)
		resHttp.RegisterRoutes(v1, resHandler, guards)
		bookingHttp.RegisterRoutes(v1, bookingHandler, guards)
	}

	return r
}

func allowedOrigins(cfg RouterConfig) []string {
	if !cfg.IsProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081", // Swagger
		}
	}
	var origins []string
	for _, o := range strings.Split(cfg.ProdOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
