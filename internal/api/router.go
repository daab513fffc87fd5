package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/admin-panel/docs"
	"github.com/99minutos/admin-panel/internal/api/handler"
	"github.com/99minutos/admin-panel/internal/api/middleware"
	"github.com/99minutos/admin-panel/internal/core/domain"
	"github.com/99minutos/admin-panel/internal/core/ports"
	"github.com/99minutos/admin-panel/internal/infrastructure/http/handlers"
)

// Dependencies holds everything the router needs. Health is optional; when nil
// only the liveness probe is mounted.
type Dependencies struct {
	AuthService   ports.AuthService
	UserService   ports.UserService
	Tokens        ports.TokenVerifier
	Health        *handlers.HealthDependenciesHandler
	Logger        zerolog.Logger
	EnableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	if deps.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("admin_panel"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	authenticated := middleware.Auth(deps.Tokens)
	can := middleware.RequireOperation

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authenticated, can(domain.OpViewOwnProfile))

	// --- User management ---
	users := e.Group("/users", authenticated)
	users.GET("", userHandler.List, can(domain.OpListUsers))
	users.POST("", userHandler.Create, can(domain.OpCreateUser))
	users.GET("/stats", userHandler.Stats, can(domain.OpViewUserStats))
	users.POST("/change-password", userHandler.ChangePassword, can(domain.OpChangeOwnPassword))
	users.GET("/:id", userHandler.Get, can(domain.OpViewUser))
	users.PATCH("/:id", userHandler.Update, can(domain.OpUpdateUser))
	users.DELETE("/:id", userHandler.Delete, can(domain.OpDeleteUser))

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if deps.Health != nil {
		e.GET("/health/ready", deps.Health.Readiness)
	}

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
