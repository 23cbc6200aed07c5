// Package fingerprint assembles randomized-but-plausible device profiles and
// renders them as browser evasion patches.
//
// Anti-bot systems correlate the user agent, navigator properties, screen
// metrics, WebGL renderer strings and the TLS ClientHello to detect
// automation. A mismatch between any of these signals is a reliable
// automation indicator, so a Profile bundles them and every consumer applies
// the same profile: the browser session installs the patch script, and the
// HTTP fetch path reuses the profile's user agent and TLS hello.
package fingerprint

import (
	"math/rand"
	"time"
)

// Profile is a synthetic bundle of device/browser characteristics presented
// to evade automation detection. A profile is generated once per session and
// never mutated afterwards.
type Profile struct {
	UserAgent string
	Platform  string // navigator.platform, e.g. "Win32"
	Vendor    string // navigator.vendor

	Locale    string
	Languages []string

	ScreenWidth      int
	ScreenHeight     int
	ColorDepth       int
	DevicePixelRatio float64

	WebGLVendor   string
	WebGLRenderer string

	TimezoneID string
	// TimezoneOffsetMin is the value Date.prototype.getTimezoneOffset must
	// report: minutes behind UTC (negative east of UTC).
	TimezoneOffsetMin int

	HardwareConcurrency int
	DeviceMemory        int
}

// device ties together the signals that must stay mutually consistent:
// a Windows user agent with an Apple GPU string is itself a detection vector.
type device struct {
	userAgent string
	platform  string
	vendor    string
	webgl     [][2]string // vendor, renderer pairs seen on this platform
	screens   [][2]int
}

var devices = []device{
	{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		platform:  "Win32",
		vendor:    "Google Inc.",
		webgl: [][2]string{
			{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
			{"Google Inc. (Intel)", "ANGLE (Intel, Intel(R) UHD Graphics 630 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
			{"Google Inc. (AMD)", "ANGLE (AMD, AMD Radeon RX 6700 XT Direct3D11 vs_5_0 ps_5_0, D3D11)"},
		},
		screens: [][2]int{{1920, 1080}, {2560, 1440}, {1536, 864}},
	},
	{
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		platform:  "MacIntel",
		vendor:    "Google Inc.",
		webgl: [][2]string{
			{"Google Inc. (Apple)", "ANGLE (Apple, Apple M2, OpenGL 4.1)"},
			{"Google Inc. (Apple)", "ANGLE (Apple, Apple M1 Pro, OpenGL 4.1)"},
		},
		screens: [][2]int{{1440, 900}, {1728, 1117}, {1920, 1080}},
	},
	{
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		platform:  "Linux x86_64",
		vendor:    "Google Inc.",
		webgl: [][2]string{
			{"Google Inc. (Intel)", "ANGLE (Intel, Mesa Intel(R) UHD Graphics 620 (KBL GT2), OpenGL 4.6)"},
			{"Google Inc. (NVIDIA)", "ANGLE (NVIDIA Corporation, NVIDIA GeForce GTX 1660/PCIe/SSE2, OpenGL 4.5)"},
		},
		screens: [][2]int{{1920, 1080}, {2560, 1440}},
	},
}

// locales pairs a locale with a timezone that plausibly hosts it.
// Offsets are the getTimezoneOffset values for standard (winter) time.
var locales = []struct {
	locale    string
	languages []string
	timezone  string
	offsetMin int
}{
	{"en-US", []string{"en-US", "en"}, "America/New_York", 300},
	{"en-US", []string{"en-US", "en"}, "America/Chicago", 360},
	{"en-US", []string{"en-US", "en"}, "America/Los_Angeles", 480},
	{"en-GB", []string{"en-GB", "en"}, "Europe/London", 0},
	{"de-DE", []string{"de-DE", "de", "en"}, "Europe/Berlin", -60},
}

var concurrencies = []int{8, 12, 16}
var memories = []int{8, 16, 32}

// Generator produces profiles from a fixed random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a profile generator. seed 0 derives the seed from the
// clock; any other value makes generation reproducible.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Profile draws a new random-but-coherent device profile.
func (g *Generator) Profile() *Profile {
	d := devices[g.rng.Intn(len(devices))]
	gl := d.webgl[g.rng.Intn(len(d.webgl))]
	screen := d.screens[g.rng.Intn(len(d.screens))]
	loc := locales[g.rng.Intn(len(locales))]

	ratio := 1.0
	if d.platform == "MacIntel" {
		ratio = 2.0
	}

	return &Profile{
		UserAgent:           d.userAgent,
		Platform:            d.platform,
		Vendor:              d.vendor,
		Locale:              loc.locale,
		Languages:           append([]string(nil), loc.languages...),
		ScreenWidth:         screen[0],
		ScreenHeight:        screen[1],
		ColorDepth:          24,
		DevicePixelRatio:    ratio,
		WebGLVendor:         gl[0],
		WebGLRenderer:       gl[1],
		TimezoneID:          loc.timezone,
		TimezoneOffsetMin:   loc.offsetMin,
		HardwareConcurrency: concurrencies[g.rng.Intn(len(concurrencies))],
		DeviceMemory:        memories[g.rng.Intn(len(memories))],
	}
}

// AcceptLanguage renders the profile's languages as an Accept-Language
// header value with descending q-weights.
func (p *Profile) AcceptLanguage() string {
	out := ""
	for i, lang := range p.Languages {
		if i == 0 {
			out = lang
			continue
		}
		q := 1.0 - 0.1*float64(i)
		out += "," + lang + ";q=" + trimFloat(q)
	}
	return out
}

func trimFloat(f float64) string {
	// q-weights only ever need one decimal here.
	switch {
	case f >= 0.95:
		return "1.0"
	case f <= 0.05:
		return "0.1"
	default:
		return string([]byte{'0', '.', byte('0' + int(f*10+0.5))})
	}
}
