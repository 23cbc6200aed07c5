package session

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/reelist/fingerprint"
	"github.com/use-agent/reelist/models"
)

// CapturedResponse is one intercepted API response: the final request URL
// (the pagination template) and the raw body.
type CapturedResponse struct {
	URL  string
	Body []byte
}

// blockedTypes are resource classes a scrape never needs. Scripts stay
// enabled: the page's own JS is what issues the API call being captured.
var blockedTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage:      {},
	proto.NetworkResourceTypeStylesheet: {},
	proto.NetworkResourceTypeFont:       {},
	proto.NetworkResourceTypeMedia:      {},
}

// trackerDomains is a set of analytics and ad domains to drop. Smaller than
// a general-purpose blocklist on purpose: blocking the platform's own
// first-party beacons is itself a detection signal, so only third parties
// are listed.
var trackerDomains = map[string]struct{}{
	"doubleclick.net":       {},
	"googlesyndication.com": {},
	"googleadservices.com":  {},
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"facebook.net":          {},
	"connect.facebook.net":  {},
	"adnxs.com":             {},
	"criteo.com":            {},
	"scorecardresearch.com": {},
	"hotjar.com":            {},
	"mixpanel.com":          {},
	"segment.io":            {},
	"chartbeat.com":         {},
	"moatads.com":           {},
	"amazon-adsystem.com":   {},
	"outbrain.com":          {},
	"taboola.com":           {},
}

// isTrackerDomain checks the hostname and its parent domains against the
// blocklist.
func isTrackerDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := trackerDomains[host]; ok {
		return true
	}
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
		if _, ok := trackerDomains[host]; ok {
			return true
		}
	}
}

// Intercept installs the request interceptor and returns a channel that
// yields the first response matching capturePattern. The capture route is
// registered before the catch-all blocking route; the router matches in
// registration order, so matching requests never reach the blocker.
//
// The channel is buffered and receives at most one value. Responses after
// the first are released to the page untouched.
func (s *Session) Intercept(capturePattern string) (<-chan CapturedResponse, error) {
	if s.router != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal,
			"interception is already installed", nil)
	}
	router := s.page.HijackRequests()
	captured := make(chan CapturedResponse, 1)

	// The hijacked request is replayed by this client, so its TLS hello has
	// to match the fingerprint the browser traffic presents.
	loadClient := &http.Client{
		Transport: &http.Transport{DialTLSContext: fingerprint.DialTLS},
	}

	err := router.Add(capturePattern, "", func(ctx *rod.Hijack) {
		reqURL := ctx.Request.URL().String()
		if err := ctx.LoadResponse(loadClient, true); err != nil {
			slog.Warn("failed to load intercepted response", "url", reqURL, "error", err)
			ctx.Response.Fail(proto.NetworkErrorReasonConnectionFailed)
			return
		}
		select {
		case captured <- CapturedResponse{URL: reqURL, Body: []byte(ctx.Response.Body())}:
			slog.Debug("captured API response", "url", reqURL)
		default:
			// Template already captured; later pages flow through.
		}
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal,
			"failed to register capture route", err)
	}

	err = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, block := blockedTypes[ctx.Request.Type()]; block {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if isTrackerDomain(ctx.Request.URL().Hostname()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal,
			"failed to register blocking route", err)
	}

	// router.Run() blocks until router.Stop().
	go router.Run()
	s.router = router
	return captured, nil
}
