package server

import (
	"net/http"
	"notesync/cmd/internal/http/handler"
	authmw "notesync/cmd/internal/http/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type ServerConfig struct {
	SyncToken    string
	BodyLimit    string
	RateLimitRPS float64
}

// NewServer wires the sync routes behind CORS and bearer authentication.
// Preflight requests are answered by the CORS middleware before auth runs.
func NewServer(cfg *ServerConfig, syncRoutes *handler.DefaultSyncRoute) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	if cfg.RateLimitRPS > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))
		e.Use(middleware.RateLimiter(store))
	}

	// Docker Compose healthcheck
	e.GET("/health", healthCheckRoute)

	api := e.Group("/api", authmw.NewAuthMiddleware(&authmw.AuthMiddlewareConfig{Token: cfg.SyncToken}))
	api.POST("/add", syncRoutes.AddNote)
	api.GET("/sync", syncRoutes.Pull)
	api.POST("/sync", syncRoutes.Push)
	api.GET("/notes/:id", syncRoutes.GetNote)

	return e
}

func healthCheckRoute(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
