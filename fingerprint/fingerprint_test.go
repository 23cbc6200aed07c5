package fingerprint

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerator_SeededDeterminism(t *testing.T) {
	a := NewGenerator(42).Profile()
	b := NewGenerator(42).Profile()

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different profiles (-a +b):\n%s", diff)
	}
}

func TestGenerator_ProfileCoherence(t *testing.T) {
	// Every signal that detection scripts cross-check must agree with the
	// chosen platform. Walk a spread of seeds to cover all device templates.
	for seed := int64(1); seed <= 50; seed++ {
		p := NewGenerator(seed).Profile()

		switch p.Platform {
		case "Win32":
			if !strings.Contains(p.UserAgent, "Windows NT") {
				t.Errorf("seed %d: Win32 platform with UA %q", seed, p.UserAgent)
			}
			if !strings.Contains(p.WebGLRenderer, "Direct3D11") {
				t.Errorf("seed %d: Win32 with non-D3D renderer %q", seed, p.WebGLRenderer)
			}
		case "MacIntel":
			if !strings.Contains(p.UserAgent, "Macintosh") {
				t.Errorf("seed %d: MacIntel platform with UA %q", seed, p.UserAgent)
			}
			if !strings.Contains(p.WebGLRenderer, "Apple") {
				t.Errorf("seed %d: MacIntel with renderer %q", seed, p.WebGLRenderer)
			}
			if p.DevicePixelRatio != 2.0 {
				t.Errorf("seed %d: MacIntel with pixel ratio %v", seed, p.DevicePixelRatio)
			}
		case "Linux x86_64":
			if !strings.Contains(p.UserAgent, "Linux") {
				t.Errorf("seed %d: Linux platform with UA %q", seed, p.UserAgent)
			}
		default:
			t.Errorf("seed %d: unknown platform %q", seed, p.Platform)
		}

		if len(p.Languages) == 0 || p.Languages[0] != p.Locale {
			t.Errorf("seed %d: languages %v do not lead with locale %q", seed, p.Languages, p.Locale)
		}
		if p.TimezoneID == "" {
			t.Errorf("seed %d: empty timezone", seed)
		}
		if p.ScreenWidth < p.ScreenHeight {
			t.Errorf("seed %d: portrait screen %dx%d", seed, p.ScreenWidth, p.ScreenHeight)
		}
	}
}

func TestAcceptLanguage(t *testing.T) {
	p := &Profile{Languages: []string{"de-DE", "de", "en"}}
	got := p.AcceptLanguage()
	want := "de-DE,de;q=0.9,en;q=0.8"
	if got != want {
		t.Errorf("AcceptLanguage = %q, want %q", got, want)
	}
}

func TestAcceptLanguage_SingleLanguage(t *testing.T) {
	p := &Profile{Languages: []string{"en-US"}}
	if got := p.AcceptLanguage(); got != "en-US" {
		t.Errorf("AcceptLanguage = %q, want en-US", got)
	}
}
