package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register cookie store finders
)

// essentialCookies are the cookies worth carrying over from an installed
// browser. Everything else is tracking ballast the session regenerates on
// its own.
var essentialCookies = map[string]struct{}{
	"sessionid":     {},
	"sessionid_ss":  {},
	"tt_csrf_token": {},
	"ttwid":         {},
	"msToken":       {},
}

// ImportBrowserCookies reads cookies for the given domain from browsers
// installed on this machine and returns the essential ones. An empty map is
// not an error: the scrape works logged out, it just sees less.
func ImportBrowserCookies(ctx context.Context, domain string) map[string]string {
	found := map[string]string{}
	cookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(domain))
	if err != nil {
		slog.Warn("browser cookie import failed", "domain", domain, "error", err)
		return found
	}
	for _, cookie := range cookies {
		if _, ok := essentialCookies[cookie.Name]; !ok {
			continue
		}
		if _, seen := found[cookie.Name]; seen {
			continue
		}
		found[cookie.Name] = cookie.Value
	}
	return found
}

// ParseCookiePairs decodes an explicit "name=value; name2=value2" cookie
// string from configuration. Malformed fragments are skipped, not fatal.
func ParseCookiePairs(raw string) map[string]string {
	pairs := map[string]string{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		pairs[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return pairs
}
