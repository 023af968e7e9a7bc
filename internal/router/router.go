package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"usermgmt/internal/auth"
	"usermgmt/internal/config"
	"usermgmt/internal/handler"
	authmw "usermgmt/internal/middleware"
	"usermgmt/internal/model"
	"usermgmt/internal/validation"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	verifier authmw.TokenVerifier,
	revocations auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowCredentials: true,
		}))
	}

	e.Validator = validation.New()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("", healthHandler.Root)

	requireAuth := authmw.Authenticate(verifier, revocations, cfg.CookieName)

	// Public routes
	authGroup := api.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(authRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst))
	}
	authGroup.POST("/sign-up", authHandler.SignUp)
	authGroup.POST("/sign-in", authHandler.SignIn)
	authGroup.POST("/sign-out", authHandler.SignOut)
	authGroup.GET("/me", authHandler.Me, requireAuth)

	// Secured routes (require a valid session cookie)
	users := api.Group("/users", requireAuth)
	// Every issued token carries one of these roles; a signed token with any
	// other role is refused.
	users.GET("", userHandler.ListUsers, authmw.RequireRole(model.RoleUser, model.RoleAdmin))
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)
}

func authRateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}
