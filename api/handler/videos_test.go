package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/reelist/cache"
	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/models"
)

// fakeCollector returns a canned response or error and records the scrape
// configs it was invoked with.
type fakeCollector struct {
	resp  *models.VideoListResponse
	err   error
	calls []config.ScrapeConfig
}

func (f *fakeCollector) CollectVideos(ctx context.Context, scrape config.ScrapeConfig) (*models.VideoListResponse, error) {
	f.calls = append(f.calls, scrape)
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}

func videosRouter(fc *fakeCollector, cc *cache.Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Load()
	r := gin.New()
	r.POST("/api/v1/videos", Videos(fc, cfg, cc))
	return r
}

func postVideos(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestVideos_Success(t *testing.T) {
	fc := &fakeCollector{resp: &models.VideoListResponse{
		Success:  true,
		Username: "creator",
		VideoIDs: []string{"1", "2"},
		Pages:    1,
	}}
	r := videosRouter(fc, nil)

	w := postVideos(t, r, `{"username": "creator", "max_videos": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.VideoListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !resp.Success || len(resp.VideoIDs) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(fc.calls) != 1 {
		t.Fatalf("collector called %d times", len(fc.calls))
	}
	got := fc.calls[0]
	if got.Username != "creator" || got.MaxVideos != 5 {
		t.Errorf("scrape config = %+v", got)
	}
	if got.FetchMode != "browser" {
		t.Errorf("fetch mode default not applied: %q", got.FetchMode)
	}
}

func TestVideos_BindFailure(t *testing.T) {
	fc := &fakeCollector{resp: &models.VideoListResponse{Success: true}}
	r := videosRouter(fc, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing username", `{"max_videos": 5}`},
		{"username too short", `{"username": "a"}`},
		{"bad fetch mode", `{"username": "creator", "fetch_mode": "carrier-pigeon"}`},
		{"max videos over cap", `{"username": "creator", "max_videos": 5000}`},
		{"not json", `username=creator`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postVideos(t, r, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
	if len(fc.calls) != 0 {
		t.Errorf("collector should never run on invalid input, got %d calls", len(fc.calls))
	}
}

func TestVideos_ErrorMapping(t *testing.T) {
	cases := []struct {
		code       string
		wantStatus int
	}{
		{models.ErrCodeNavTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeAPIFetch, http.StatusBadGateway},
		{models.ErrCodeInvalidURL, http.StatusBadRequest},
		{models.ErrCodeInternal, http.StatusInternalServerError},
		{models.ErrCodeBrowserCrash, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			fc := &fakeCollector{err: models.NewScrapeError(tc.code, "boom", nil)}
			r := videosRouter(fc, nil)

			w := postVideos(t, r, `{"username": "creator"}`)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}

			var resp models.VideoListResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tc.code {
				t.Errorf("error body = %+v", resp)
			}
		})
	}
}

func TestVideos_CacheRoundTrip(t *testing.T) {
	fc := &fakeCollector{resp: &models.VideoListResponse{
		Success:  true,
		Username: "creator",
		VideoIDs: []string{"1"},
	}}
	cc := cache.New(10)
	r := videosRouter(fc, cc)

	body := `{"username": "creator", "max_age_ms": 60000}`

	w := postVideos(t, r, body)
	if w.Code != http.StatusOK {
		t.Fatalf("first request failed: %d", w.Code)
	}
	var first models.VideoListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &first)
	if first.CacheStatus != "miss" {
		t.Errorf("first request cache status = %q, want miss", first.CacheStatus)
	}

	w = postVideos(t, r, body)
	var second models.VideoListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &second)
	if second.CacheStatus != "hit" {
		t.Errorf("second request cache status = %q, want hit", second.CacheStatus)
	}

	if len(fc.calls) != 1 {
		t.Errorf("collector called %d times, want 1 (second served from cache)", len(fc.calls))
	}
}

func TestVideos_NoScreenshotPathForAPI(t *testing.T) {
	fc := &fakeCollector{resp: &models.VideoListResponse{Success: true}}
	r := videosRouter(fc, nil)

	postVideos(t, r, `{"username": "creator"}`)
	if len(fc.calls) != 1 {
		t.Fatal("collector not called")
	}
	if fc.calls[0].ScreenshotPath != "" {
		t.Errorf("API runs must not write screenshots, got path %q", fc.calls[0].ScreenshotPath)
	}
}
