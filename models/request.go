package models

// VideoListRequest is the payload for POST /api/v1/videos.
type VideoListRequest struct {
	// Username is the target profile handle, without the leading "@". Required.
	Username string `json:"username" binding:"required,min=2,max=24"`

	// MaxVideos caps the number of unique video IDs collected.
	// The loop checks the cap after appending a page, so the final count may
	// overshoot by at most one page. Default: 50. Max: 2000.
	MaxVideos int `json:"max_videos,omitempty" binding:"omitempty,min=1,max=2000"`

	// FetchMode selects how paginated API calls are issued.
	// "browser" (default): in-page fetch() inside the stealth session.
	// "http": direct requests with a Chrome TLS fingerprint, no JS.
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=browser http"`

	// DelayMinMs and DelayMaxMs bound the randomized pause between page
	// fetches. Defaults: 800 and 2500.
	DelayMinMs int `json:"delay_min_ms,omitempty" binding:"omitempty,min=0"`
	DelayMaxMs int `json:"delay_max_ms,omitempty" binding:"omitempty,min=0"`

	// MaxAge enables cache lookup: a cached report younger than MaxAge
	// milliseconds is returned without scraping. 0 disables caching.
	MaxAge int `json:"max_age_ms,omitempty" binding:"omitempty,min=0"`

	// WebhookURL, if set, receives a signed videos.completed or
	// videos.failed event when the scrape finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// Defaults applies default values to unset fields.
func (r *VideoListRequest) Defaults() {
	if r.MaxVideos == 0 {
		r.MaxVideos = 50
	}
	if r.FetchMode == "" {
		r.FetchMode = "browser"
	}
	if r.DelayMinMs == 0 {
		r.DelayMinMs = 800
	}
	if r.DelayMaxMs == 0 {
		r.DelayMaxMs = 2500
	}
	if r.DelayMaxMs < r.DelayMinMs {
		r.DelayMaxMs = r.DelayMinMs
	}
}
