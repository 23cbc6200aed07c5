package tiktok

import (
	"fmt"
	"net/url"
)

// Endpoint construction for the platform's internal web API. The endpoint
// shape, parameter names and aid value are dictated by the platform's web
// client and are brittle by nature.
const (
	profilePathFormat = "%s/@%s"

	// itemListPageSize is the page size the web client itself requests.
	// Asking for more is a detection signal.
	itemListPageSize = 35
)

// ProfileURL returns the public profile page for a username.
func ProfileURL(baseURL, username string) string {
	return fmt.Sprintf(profilePathFormat, baseURL, url.PathEscape(username))
}

// ItemListURL builds a first-page item_list request for the HTTP fetch path,
// used when navigation capture yields no template. Subsequent requests are
// derived from it with WithCursor.
func ItemListURL(baseURL, secUID string) string {
	return fmt.Sprintf(
		"%s/api/post/item_list/?aid=1988&count=%d&cursor=0&secUid=%s",
		baseURL, itemListPageSize, url.QueryEscape(secUID),
	)
}
