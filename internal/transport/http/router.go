package httptransport

import (
	"log/slog"

	"github.com/fleetadmin/fleet-api/internal/transport/http/handler"
	"github.com/fleetadmin/fleet-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// tokenVerifier mirrors middleware's requirement so main can pass the
// token service straight through.
type tokenVerifier interface {
	Verify(raw string) (string, error)
}

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	carHandler *handler.CarHandler,
	categoryHandler *handler.CategoryHandler,
	tokens tokenVerifier,
	authRPS float64,
	authBurst int,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(tokens)

	// Credential endpoints are rate limited per IP.
	auth := r.Group("/api/auth", middleware.RateLimit(authRPS, authBurst))
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// Single-car reads stay public for the dashboard's detail view;
	// everything else on cars requires a session.
	cars := r.Group("/api/cars")
	cars.GET("", authMW, carHandler.List)
	cars.GET("/count", authMW, carHandler.Count)
	cars.GET("/:id", carHandler.GetByID)
	cars.POST("", authMW, carHandler.Create)
	cars.PUT("/:id", authMW, carHandler.Update)
	cars.DELETE("/:id", authMW, carHandler.Delete)

	// Category listing is public; all mutations authenticate before
	// any validation runs.
	categories := r.Group("/api/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.GetByID)
	categories.POST("", authMW, categoryHandler.Create)
	categories.PUT("/:id", authMW, categoryHandler.Update)
	categories.DELETE("/:id", authMW, categoryHandler.Delete)

	return r
}
