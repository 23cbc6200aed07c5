package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/reelist/cache"
	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/models"
	"github.com/use-agent/reelist/webhook"
)

// VideoCollector runs one collection and reports the result. Satisfied by
// *tiktok.Scraper; the indirection keeps the handler testable without a
// browser.
type VideoCollector interface {
	CollectVideos(ctx context.Context, scrape config.ScrapeConfig) (*models.VideoListResponse, error)
}

// Videos returns a handler for POST /api/v1/videos.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup (when max_age_ms is set).
//  3. CollectVideos → full video report.
//  4. Cache store, webhook dispatch, respond.
func Videos(vc VideoCollector, cfg *config.Config, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.VideoListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.VideoListResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if cc != nil && req.MaxAge > 0 {
			cacheKey := cache.Key(req.Username, req.MaxVideos, req.FetchMode)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		resp, err := vc.CollectVideos(c.Request.Context(), scrapeConfigFor(&req, cfg.Scrape))
		if err != nil {
			notifyFailed(cfg, &req, err)
			respondError(c, err, models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}
		resp.Timing.TotalMs = time.Since(totalStart).Milliseconds()

		if cc != nil && req.MaxAge > 0 {
			cacheKey := cache.Key(req.Username, req.MaxVideos, req.FetchMode)
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		notifyCompleted(cfg, &req, resp)
		c.JSON(http.StatusOK, resp)
	}
}

// scrapeConfigFor merges a request into the server's scrape defaults.
func scrapeConfigFor(req *models.VideoListRequest, defaults config.ScrapeConfig) config.ScrapeConfig {
	scrape := defaults
	scrape.Username = req.Username
	scrape.MaxVideos = req.MaxVideos
	scrape.FetchMode = req.FetchMode
	scrape.DelayMin = time.Duration(req.DelayMinMs) * time.Millisecond
	scrape.DelayMax = time.Duration(req.DelayMaxMs) * time.Millisecond
	// Screenshots are a CLI diagnostic; the API has structured errors.
	scrape.ScreenshotPath = ""
	return scrape
}

func notifyCompleted(cfg *config.Config, req *models.VideoListRequest, resp *models.VideoListResponse) {
	if req.WebhookURL == "" {
		return
	}
	webhook.DeliverAsync(req.WebhookURL, cfg.Webhook.Secret, &webhook.Event{
		Type:      webhook.EventVideosCompleted,
		Username:  req.Username,
		Timestamp: time.Now().Unix(),
		Data:      resp,
	})
}

func notifyFailed(cfg *config.Config, req *models.VideoListRequest, err error) {
	if req.WebhookURL == "" {
		return
	}
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	webhook.DeliverAsync(req.WebhookURL, cfg.Webhook.Secret, &webhook.Event{
		Type:      webhook.EventVideosFailed,
		Username:  req.Username,
		Timestamp: time.Now().Unix(),
		Data:      scrapeErr.ToDetail(),
	})
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.VideoListResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeNavTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeAPIFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidURL, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
