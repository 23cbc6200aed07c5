package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/reelist/models"
)

// StatsSource reports run counters for the health endpoint.
type StatsSource interface {
	Stats() models.SessionStats
}

// Health returns a handler for GET /api/v1/health.
//
// Each collection run holds a full browser, so status degrades as soon as
// more than 3 runs are in flight.
func Health(src StatsSource, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := src.Stats()

		status := "healthy"
		if stats.ActiveScrapes > 3 {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Session: stats,
			Version: "0.1.0",
		})
	}
}
