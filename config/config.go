package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Browser     BrowserConfig
	Scrape      ScrapeConfig
	Fingerprint FingerprintConfig
	TikTok      TikTokConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Cache       CacheConfig
	Log         LogConfig
	Webhook     WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL for all browser traffic.
	Proxy string

	// ImportCookies enables reading tiktok.com session cookies from
	// locally installed browsers and injecting them into the session.
	ImportCookies bool // default: false

	// Cookies is an explicit "name=value; name2=value2" cookie string
	// injected into the session before navigation.
	Cookies string
}

// ScrapeConfig controls a single collection run. It is immutable once
// scraping starts.
type ScrapeConfig struct {
	// Username is the target profile handle, without the leading "@".
	Username string

	// MaxVideos caps the number of unique video IDs collected. The cap is
	// checked after a page is appended, so the result may overshoot by at
	// most one page.
	MaxVideos int // default: 50

	// DelayMin and DelayMax bound the randomized pause between page
	// fetches. The wait is drawn uniformly from [DelayMin, DelayMax].
	DelayMin time.Duration // default: 800ms
	DelayMax time.Duration // default: 2.5s

	// ViewportWidth and ViewportHeight set the page viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// NavTimeout bounds the initial profile navigation. Paginated fetches
	// after the first page are not individually bounded.
	NavTimeout time.Duration // default: 30s

	// FetchMode selects how paginated API calls are issued:
	// "browser" (in-page fetch) or "http" (utls client).
	FetchMode string // default: "browser"

	// ScreenshotPath is where the diagnostic screenshot is written when a
	// run fails.
	ScreenshotPath string // default: "reelist-error.png"
}

// FingerprintConfig controls synthetic device fingerprint generation.
type FingerprintConfig struct {
	// Seed fixes the random source; 0 means derive from the clock.
	Seed int64

	// Locale overrides the randomly chosen locale (e.g. "en-US").
	Locale string

	// Timezone overrides the randomly chosen IANA timezone ID.
	Timezone string
}

// TikTokConfig holds the target platform surface. The endpoint shape and
// field names are dictated by the platform and are brittle by nature.
type TikTokConfig struct {
	// BaseURL is the platform origin.
	BaseURL string // default: "https://www.tiktok.com"

	// ItemListPattern matches the internal API the profile page calls for
	// its video list. Used to capture the first response during navigation.
	ItemListPattern string // default: "*/api/post/item_list*"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 3
}

// CacheConfig controls the video report cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached reports.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// WebhookConfig controls signed completion notifications.
type WebhookConfig struct {
	// Secret signs webhook payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("REELIST_HOST", "0.0.0.0"),
			Port: envIntOr("REELIST_PORT", 8080),
			Mode: envOr("REELIST_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:      envBoolOr("REELIST_HEADLESS", true),
			NoSandbox:     envBoolOr("REELIST_NO_SANDBOX", false),
			BrowserBin:    os.Getenv("REELIST_BROWSER_BIN"),
			Proxy:         os.Getenv("REELIST_PROXY"),
			ImportCookies: envBoolOr("REELIST_IMPORT_COOKIES", false),
			Cookies:       os.Getenv("REELIST_COOKIES"),
		},
		Scrape: ScrapeConfig{
			Username:       os.Getenv("REELIST_USERNAME"),
			MaxVideos:      envIntOr("REELIST_MAX_VIDEOS", 50),
			DelayMin:       envDurationOr("REELIST_DELAY_MIN", 800*time.Millisecond),
			DelayMax:       envDurationOr("REELIST_DELAY_MAX", 2500*time.Millisecond),
			ViewportWidth:  envIntOr("REELIST_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("REELIST_VIEWPORT_HEIGHT", 1080),
			NavTimeout:     envDurationOr("REELIST_NAV_TIMEOUT", 30*time.Second),
			FetchMode:      envOr("REELIST_FETCH_MODE", "browser"),
			ScreenshotPath: envOr("REELIST_SCREENSHOT_PATH", "reelist-error.png"),
		},
		Fingerprint: FingerprintConfig{
			Seed:     int64(envIntOr("REELIST_FP_SEED", 0)),
			Locale:   os.Getenv("REELIST_FP_LOCALE"),
			Timezone: os.Getenv("REELIST_FP_TIMEZONE"),
		},
		TikTok: TikTokConfig{
			BaseURL:         envOr("REELIST_BASE_URL", "https://www.tiktok.com"),
			ItemListPattern: envOr("REELIST_ITEM_LIST_PATTERN", "*/api/post/item_list*"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("REELIST_AUTH_ENABLED", true),
			APIKeys: envSliceOr("REELIST_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("REELIST_RATE_RPS", 1.0),
			Burst:             envIntOr("REELIST_RATE_BURST", 3),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("REELIST_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("REELIST_LOG_LEVEL", "info"),
			Format: envOr("REELIST_LOG_FORMAT", "json"),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("REELIST_WEBHOOK_SECRET"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
