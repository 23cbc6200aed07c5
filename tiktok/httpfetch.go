package tiktok

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/reelist/fingerprint"
	"github.com/use-agent/reelist/models"
	"golang.org/x/net/html"
)

// httpFetcher issues item_list requests directly, without the browser. The
// TLS hello, user agent and language headers all come from the session's
// fingerprint profile so the request is indistinguishable from the browser
// traffic that preceded it, and the Cookie header is synced from the live
// browser session.
type httpFetcher struct {
	profile      *fingerprint.Profile
	referer      string
	cookieHeader string
	client       *http.Client
}

func newHTTPFetcher(profile *fingerprint.Profile, referer, cookieHeader string) *httpFetcher {
	return &httpFetcher{
		profile:      profile,
		referer:      referer,
		cookieHeader: cookieHeader,
		client: &http.Client{
			Transport: &http.Transport{
				DialTLSContext: fingerprint.DialTLS,
			},
		},
	}
}

// fetchPage retrieves and decodes one item_list page. Non-2xx statuses and
// non-JSON bodies are fatal: there is no retry, because a blocked request is
// information the operator needs, not noise to be smoothed over.
func (f *httpFetcher) fetchPage(ctx context.Context, targetURL string) (*ItemPage, error) {
	body, err := f.get(ctx, targetURL, "application/json, text/plain, */*")
	if err != nil {
		return nil, err
	}

	page, err := ParseItemPage(body)
	if err != nil {
		if looksLikeChallenge(body) {
			return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
				"item_list request was answered with a verification challenge", nil)
		}
		return nil, err
	}
	return page, nil
}

// fetchProfileHTML retrieves the server-rendered profile page, used to
// recover a request template when navigation capture came up empty.
func (f *httpFetcher) fetchProfileHTML(ctx context.Context, profileURL string) ([]byte, error) {
	return f.get(ctx, profileURL,
		"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}

func (f *httpFetcher) get(ctx context.Context, targetURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"build request", err)
	}
	req.Header.Set("User-Agent", f.profile.UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", f.profile.AcceptLanguage())
	req.Header.Set("Referer", f.referer)
	if f.cookieHeader != "" {
		req.Header.Set("Cookie", f.cookieHeader)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, targetURL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"read body", err)
	}
	return body, nil
}

// challengeMarkers are phrases the platform's verification interstitials
// show in place of API JSON.
var challengeMarkers = []string{
	"verify to continue",
	"security check",
	"captcha",
	"unusual traffic",
}

// looksLikeChallenge reports whether a non-JSON body is a verification
// interstitial rather than a transport glitch. Only the visible text is
// inspected — marker words inside scripts would false-positive.
func looksLikeChallenge(body []byte) bool {
	text := strings.ToLower(visibleText(body))
	for _, marker := range challengeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// visibleText extracts the text content of an HTML document, skipping
// script and style bodies.
func visibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
