package models

// VideoListResponse is the response for POST /api/v1/videos and the JSON
// report the CLI writes to stdout.
type VideoListResponse struct {
	// Success indicates whether the scrape completed without errors.
	Success bool `json:"success"`

	// Username is the profile the report was collected for.
	Username string `json:"username"`

	// VideoIDs is the deduplicated list of collected video identifiers.
	VideoIDs []string `json:"video_ids"`

	// VideoURLs maps each ID to its canonical detail-page URL.
	VideoURLs []string `json:"video_urls"`

	// Pages is the number of API pages fetched.
	Pages int `json:"pages"`

	// FetchMode records which fetch path produced the result
	// ("browser" or "http").
	FetchMode string `json:"fetch_mode,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent loading the profile page.
	NavigationMs int64 `json:"navigation_ms"`

	// PaginationMs is the time spent walking the cursor chain,
	// including the deliberate inter-page delays.
	PaginationMs int64 `json:"pagination_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string       `json:"status"` // "healthy" or "degraded"
	Uptime  string       `json:"uptime"`
	Session SessionStats `json:"session_stats"`
	Version string       `json:"version"`
}

// SessionStats reports the state of the scraping service.
type SessionStats struct {
	ActiveScrapes    int `json:"active_scrapes"`
	CompletedScrapes int `json:"completed_scrapes"`
	FailedScrapes    int `json:"failed_scrapes"`
}
