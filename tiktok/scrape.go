// Package tiktok implements profile video collection against the platform's
// web surface: capture the profile page's own item_list call, then walk its
// cursor chain until the requested number of unique video IDs is reached.
package tiktok

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/fingerprint"
	"github.com/use-agent/reelist/models"
	"github.com/use-agent/reelist/session"
)

// Scraper runs video collections. One Scraper serves many runs; each run
// gets its own browser session and fingerprint.
type Scraper struct {
	cfg *config.Config

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewScraper creates a scraper bound to the given configuration.
func NewScraper(cfg *config.Config) *Scraper {
	return &Scraper{cfg: cfg}
}

// Stats returns a snapshot of run counters for the health endpoint.
func (s *Scraper) Stats() models.SessionStats {
	return models.SessionStats{
		ActiveScrapes:    int(s.active.Load()),
		CompletedScrapes: int(s.completed.Load()),
		FailedScrapes:    int(s.failed.Load()),
	}
}

// CollectVideos performs one full collection run: launch a disguised
// session, navigate to the profile, capture the first item_list response,
// paginate, and report. Any failure after launch triggers a best-effort
// diagnostic screenshot; partial progress is discarded, never returned.
func (s *Scraper) CollectVideos(ctx context.Context, scrape config.ScrapeConfig) (*models.VideoListResponse, error) {
	if scrape.Username == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			"username is required", nil)
	}
	if scrape.MaxVideos < 1 {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			"max videos must be at least 1", nil)
	}

	s.active.Add(1)
	defer s.active.Add(-1)

	start := time.Now()
	resp, err := s.run(ctx, scrape, start)
	if err != nil {
		s.failed.Add(1)
		return nil, err
	}
	s.completed.Add(1)
	resp.Timing.TotalMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (s *Scraper) run(ctx context.Context, scrape config.ScrapeConfig, start time.Time) (*models.VideoListResponse, error) {
	profile := s.buildProfile()
	slog.Info("starting collection",
		"username", scrape.Username,
		"max_videos", scrape.MaxVideos,
		"fetch_mode", scrape.FetchMode,
		"platform", profile.Platform,
		"locale", profile.Locale,
	)

	sess, err := session.New(s.cfg.Browser, scrape, profile)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	resp, err := s.runWithSession(ctx, sess, scrape, start)
	if err != nil {
		s.captureDiagnostics(sess, scrape)
		return nil, err
	}
	return resp, nil
}

func (s *Scraper) runWithSession(ctx context.Context, sess *session.Session, scrape config.ScrapeConfig, start time.Time) (*models.VideoListResponse, error) {
	domain := cookieDomain(s.cfg.TikTok.BaseURL)
	if err := s.injectCookies(ctx, sess, domain); err != nil {
		return nil, err
	}

	captured, err := sess.Intercept(s.cfg.TikTok.ItemListPattern)
	if err != nil {
		return nil, err
	}

	// ── Navigation and template capture ──────────────────────────────
	navStart := time.Now()
	profileURL := ProfileURL(s.cfg.TikTok.BaseURL, scrape.Username)
	navCtx, cancel := context.WithTimeout(ctx, scrape.NavTimeout)
	defer cancel()

	if err := sess.Page().Context(navCtx).Navigate(profileURL); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNavTimeout,
			"profile navigation failed", err)
	}

	var firstURL string
	var first *ItemPage
	select {
	case resp := <-captured:
		firstURL = resp.URL
		page, err := ParseItemPage(resp.Body)
		if err != nil {
			return nil, err
		}
		first = page
	case <-navCtx.Done():
		// The page loaded but never called item_list, or load itself hung.
		// The HTTP path can still recover a template from the rendered HTML.
		if scrape.FetchMode != "http" {
			return nil, models.NewScrapeError(models.ErrCodeNavTimeout,
				"no item_list call observed within the navigation timeout", navCtx.Err())
		}
		firstURL, first, err = s.recoverTemplate(ctx, sess, profileURL)
		if err != nil {
			return nil, err
		}
	}
	navMs := time.Since(navStart).Milliseconds()
	slog.Info("template captured", "url", firstURL, "first_page_items", len(first.ItemIDs))

	// ── Pagination ───────────────────────────────────────────────────
	fetch, err := s.fetchFunc(sess, scrape, profileURL)
	if err != nil {
		return nil, err
	}

	pagStart := time.Now()
	paginator := NewPaginator(scrape.MaxVideos, scrape.DelayMin, scrape.DelayMax, fetch)
	ids, err := paginator.Collect(ctx, firstURL, first)
	if err != nil {
		return nil, err
	}
	pagMs := time.Since(pagStart).Milliseconds()

	unique := Unique(ids)
	return &models.VideoListResponse{
		Success:   true,
		Username:  scrape.Username,
		VideoIDs:  unique,
		VideoURLs: VideoURLs(s.cfg.TikTok.BaseURL, scrape.Username, unique),
		Pages:     paginator.Pages(),
		FetchMode: scrape.FetchMode,
		Timing: models.TimingInfo{
			TotalMs:      time.Since(start).Milliseconds(),
			NavigationMs: navMs,
			PaginationMs: pagMs,
		},
	}, nil
}

// buildProfile generates the run's fingerprint and applies configured
// overrides.
func (s *Scraper) buildProfile() *fingerprint.Profile {
	profile := fingerprint.NewGenerator(s.cfg.Fingerprint.Seed).Profile()
	if s.cfg.Fingerprint.Locale != "" {
		profile.Locale = s.cfg.Fingerprint.Locale
		profile.Languages = []string{s.cfg.Fingerprint.Locale, "en"}
	}
	if s.cfg.Fingerprint.Timezone != "" {
		profile.TimezoneID = s.cfg.Fingerprint.Timezone
	}
	return profile
}

// injectCookies installs explicitly configured cookies, then cookies
// imported from local browsers when enabled. Explicit cookies win.
func (s *Scraper) injectCookies(ctx context.Context, sess *session.Session, domain string) error {
	if s.cfg.Browser.ImportCookies {
		imported := session.ImportBrowserCookies(ctx, strings.TrimPrefix(domain, "."))
		if len(imported) > 0 {
			slog.Info("imported browser cookies", "count", len(imported))
			if err := sess.SetCookies(imported, domain); err != nil {
				return err
			}
		}
	}
	if s.cfg.Browser.Cookies != "" {
		explicit := session.ParseCookiePairs(s.cfg.Browser.Cookies)
		if err := sess.SetCookies(explicit, domain); err != nil {
			return err
		}
	}
	return nil
}

// fetchFunc selects the pagination fetch path for the run.
func (s *Scraper) fetchFunc(sess *session.Session, scrape config.ScrapeConfig, profileURL string) (FetchFunc, error) {
	switch scrape.FetchMode {
	case "http":
		cookieHeader, err := sess.CookieHeader()
		if err != nil {
			return nil, err
		}
		return newHTTPFetcher(sess.Profile(), profileURL, cookieHeader).fetchPage, nil
	default:
		return newBrowserFetcher(sess.Page()).fetchPage, nil
	}
}

// recoverTemplate builds a first page without a captured response: fetch the
// rendered profile HTML, extract the secUid, construct an item_list request
// and issue it directly. Only the HTTP fetch path can use this, since it does
// not depend on a signed template URL.
func (s *Scraper) recoverTemplate(ctx context.Context, sess *session.Session, profileURL string) (string, *ItemPage, error) {
	slog.Warn("no item_list response captured, recovering from rendered HTML")

	cookieHeader, err := sess.CookieHeader()
	if err != nil {
		return "", nil, err
	}
	fetcher := newHTTPFetcher(sess.Profile(), profileURL, cookieHeader)

	html, err := fetcher.fetchProfileHTML(ctx, profileURL)
	if err != nil {
		return "", nil, err
	}
	secUID, err := ExtractSecUID(html)
	if err != nil {
		return "", nil, err
	}

	firstURL := ItemListURL(s.cfg.TikTok.BaseURL, secUID)
	first, err := fetcher.fetchPage(ctx, firstURL)
	if err != nil {
		return "", nil, err
	}
	return firstURL, first, nil
}

// captureDiagnostics writes the failure screenshot. Best effort only.
func (s *Scraper) captureDiagnostics(sess *session.Session, scrape config.ScrapeConfig) {
	if scrape.ScreenshotPath == "" {
		return
	}
	if err := sess.Screenshot(scrape.ScreenshotPath); err != nil {
		slog.Warn("diagnostic screenshot failed", "error", err)
	}
}

// cookieDomain derives the cookie domain from the platform origin:
// "https://www.tiktok.com" becomes ".tiktok.com".
func cookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ".tiktok.com"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return "." + host
}
