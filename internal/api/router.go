package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/app"
	iauth "github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/auth"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/handlers"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers the permissions routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()
	// Primary keys may contain escaped slashes; match routes on the raw path.
	r.UseRawPath = true
	r.UnescapePathValues = true
	// An empty primary key must not be redirected onto the new-record route.
	r.RedirectTrailingSlash = false

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/health", handlers.Health(db))

	permHandler, err := handlers.NewPermissionHandler(db)
	if err != nil {
		return nil, err
	}
	registerPermissionRoutes(r, permHandler, middleware.Auth(jwt))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
