package tiktok

import (
	"context"
	"strconv"

	"github.com/go-rod/rod"
	"github.com/use-agent/reelist/models"
)

// browserFetcher issues item_list requests with the page's own fetch(). The
// request then carries the browser's TLS fingerprint, cookies and signing
// state wholesale, which is the strongest consistency the evasion layer can
// offer. The cost is a live page per request.
type browserFetcher struct {
	page *rod.Page
}

func newBrowserFetcher(page *rod.Page) *browserFetcher {
	return &browserFetcher{page: page}
}

// fetchJS runs inside the page. If the platform's signing object is present
// the URL is re-signed before the call; an unsigned URL is still worth
// attempting, since captured template URLs already carry a signature.
const fetchJS = `async (url) => {
	let target = url;
	if (typeof window.byted_acrawler !== 'undefined' &&
		typeof window.byted_acrawler.frontierSign === 'function') {
		const params = window.byted_acrawler.frontierSign(url);
		if (typeof params === 'string') {
			target = params;
		} else if (params && typeof params === 'object') {
			const u = new URL(url);
			for (const [k, v] of Object.entries(params)) {
				u.searchParams.set(k, v);
			}
			target = u.toString();
		}
	}
	const resp = await fetch(target, {
		method: 'GET',
		credentials: 'include',
		headers: {'Accept': 'application/json, text/plain, */*'},
	});
	const body = await resp.text();
	return {status: resp.status, body: body};
}`

// fetchPage retrieves and decodes one item_list page through the browser.
// Failures are fatal to the scrape: no retry.
func (f *browserFetcher) fetchPage(ctx context.Context, targetURL string) (*ItemPage, error) {
	result, err := f.page.Context(ctx).Eval(fetchJS, targetURL)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"in-page fetch failed", err)
	}

	status := result.Value.Get("status").Int()
	body := []byte(result.Value.Get("body").Str())
	if status < 200 || status > 299 {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"in-page fetch returned HTTP "+strconv.Itoa(status), nil)
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
