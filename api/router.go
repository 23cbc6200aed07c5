package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/reelist/api/handler"
	"github.com/use-agent/reelist/api/middleware"
	"github.com/use-agent/reelist/cache"
	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/tiktok"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *tiktok.Scraper, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sc, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Video collection
	protected.POST("/videos", handler.Videos(sc, cfg, cc))

	return r
}
