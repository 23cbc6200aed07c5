// Package session owns the browser lifecycle for one scrape: launch with
// evasion flags, install the stealth and fingerprint patches, shape the
// network identity, inject cookies, and guarantee teardown. The browser
// context is mutated only here, during setup; everything downstream treats
// it as read-only.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"github.com/use-agent/reelist/config"
	"github.com/use-agent/reelist/fingerprint"
	"github.com/use-agent/reelist/models"
)

// Session is a single stealth browser session: one browser, one page, one
// control flow.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	router  *rod.HijackRouter
	profile *fingerprint.Profile
}

// New launches the browser and prepares the page. All evasion patches are
// installed here, before any navigation — they only take effect for
// navigations that happen after installation.
func New(browserCfg config.BrowserConfig, scrapeCfg config.ScrapeConfig, profile *fingerprint.Profile) (*Session, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("lang"), profile.Locale)
	l.Set(flags.Flag("window-size"),
		fmt.Sprintf("%d,%d", scrapeCfg.ViewportWidth, scrapeCfg.ViewportHeight))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.MustClose()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to create page", err)
	}

	s := &Session{browser: browser, page: page, profile: profile}
	if err := s.applyProfile(scrapeCfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// applyProfile installs the JS patches and CDP overrides derived from the
// fingerprint profile.
func (s *Session) applyProfile(scrapeCfg config.ScrapeConfig) error {
	// Baseline stealth first, then the profile-specific overrides on top.
	if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"stealth injection failed", err)
	}

	patch, err := s.profile.PatchScript()
	if err != nil {
		return models.NewScrapeError(models.ErrCodeInternal,
			"fingerprint patch rendering failed", err)
	}
	if _, err := s.page.EvalOnNewDocument(patch); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"fingerprint injection failed", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      s.profile.UserAgent,
		AcceptLanguage: s.profile.AcceptLanguage(),
		Platform:       s.profile.Platform,
	}).Call(s.page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"user agent override failed", err)
	}

	if err := (proto.EmulationSetTimezoneOverride{
		TimezoneID: s.profile.TimezoneID,
	}).Call(s.page); err != nil {
		// Some Chromium builds reject unknown timezone IDs; the JS-level
		// getTimezoneOffset patch still covers the common checks.
		slog.Warn("timezone override failed, relying on JS patch",
			"timezone", s.profile.TimezoneID, "error", err)
	}

	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             scrapeCfg.ViewportWidth,
		Height:            scrapeCfg.ViewportHeight,
		DeviceScaleFactor: s.profile.DevicePixelRatio,
		Mobile:            false,
	}); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"viewport override failed", err)
	}

	return nil
}

// Page returns the session's single page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Profile returns the fingerprint the session presents.
func (s *Session) Profile() *fingerprint.Profile {
	return s.profile
}

// SetCookies injects cookies into the session for the given domain.
func (s *Session) SetCookies(cookies map[string]string, domain string) error {
	for name, value := range cookies {
		if _, err := (proto.NetworkSetCookie{
			Name:   name,
			Value:  value,
			Domain: domain,
			Path:   "/",
		}).Call(s.page); err != nil {
			return models.NewScrapeError(models.ErrCodeBrowserCrash,
				fmt.Sprintf("failed to set cookie %q", name), err)
		}
	}
	return nil
}

// SetExtraHeaders attaches additional headers to every request the page
// makes. Keys not set here keep their browser defaults.
func (s *Session) SetExtraHeaders(headers map[string]string) error {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: m}).Call(s.page); err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"extra header override failed", err)
	}
	return nil
}

// Screenshot captures the current page state to a PNG file. Used as a
// diagnostic of last resort when a scrape dies, so failures here are
// reported but never escalate.
func (s *Session) Screenshot(path string) error {
	data, err := s.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return models.NewScrapeError(models.ErrCodeBrowserCrash,
			"screenshot capture failed", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.NewScrapeError(models.ErrCodeInternal,
			"screenshot write failed", err)
	}
	slog.Info("diagnostic screenshot written", "path", path)
	return nil
}

// CookieHeader renders the session's current cookies as a Cookie header
// value, so the HTTP fetch path presents the same session the browser
// established (fresh msToken included).
func (s *Session) CookieHeader() (string, error) {
	cookies, err := s.page.Cookies(nil)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeBrowserCrash,
			"failed to read session cookies", err)
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; "), nil
}

// Close releases the page and kills the browser process. Safe to call on a
// partially constructed session.
func (s *Session) Close() {
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			slog.Warn("hijack router stop failed", "error", err)
		}
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		s.browser.MustClose()
	}
	slog.Info("session closed")
}
