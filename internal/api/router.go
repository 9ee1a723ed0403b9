package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/soteria/accounts-system/docs"
	"github.com/soteria/accounts-system/internal/api/handler"
	"github.com/soteria/accounts-system/internal/core/ports"
	"github.com/soteria/accounts-system/internal/core/service"
	mongostore "github.com/soteria/accounts-system/internal/infrastructure/db/mongo"
	redisstore "github.com/soteria/accounts-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The hasher is injected by the caller because its worker pool outlives any
// single request and is shut down separately.
func NewRouter(db *mongo.Database, rdb *redis.Client, hasher ports.PasswordHasher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	usernameCache := redisstore.NewUsernameCache(rdb)
	registration := service.NewRegistrationService(userRepo, hasher, usernameCache, log)
	accountHandler := handler.NewAccountHandler(registration)

	// --- Account routes ---
	e.POST("/accounts/register", accountHandler.Register)
	e.GET("/accounts/:username/availability", accountHandler.Availability)

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – is the user store up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
