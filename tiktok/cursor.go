package tiktok

import (
	"net/url"
	"strings"

	"github.com/use-agent/reelist/models"
)

// WithCursor returns rawURL with the "cursor" query parameter set to cursor.
// Every other byte of the URL — path, parameter order, encoding — is left
// untouched, because the platform signs request URLs and a re-encoded query
// string would invalidate the signature. If the URL has no cursor parameter
// one is appended. Unparseable input fails with an INVALID_URL error.
func WithCursor(rawURL, cursor string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidURL,
			"cursor substitution target is not a valid URL", err)
	}

	// Work on the raw text, not url.Values: Encode() re-sorts and re-escapes
	// every parameter.
	rest := rawURL
	fragment := ""
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		fragment = rest[i:]
		rest = rest[:i]
	}

	token := "cursor=" + url.QueryEscape(cursor)

	qi := strings.IndexByte(rest, '?')
	if qi < 0 {
		return rest + "?" + token + fragment, nil
	}

	base, query := rest[:qi], rest[qi+1:]
	params := strings.Split(query, "&")
	out := make([]string, 0, len(params)+1)
	replaced := false
	for _, p := range params {
		key := p
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			key = p[:eq]
		}
		if key == "cursor" {
			if !replaced {
				out = append(out, token)
				replaced = true
			}
			continue
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, token)
	}

	return base + "?" + strings.Join(out, "&") + fragment, nil
}
