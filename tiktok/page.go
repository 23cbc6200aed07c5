package tiktok

import (
	"bytes"
	"encoding/json"

	"github.com/use-agent/reelist/models"
)

// ItemPage is one page of the platform's item_list API: an opaque cursor
// token, a has-more flag, and the ordered item identifiers. Pages are
// ephemeral — they exist only to advance the pagination loop.
type ItemPage struct {
	Cursor  string
	HasMore bool
	ItemIDs []string
}

// wirePage mirrors the item_list response shape. The cursor arrives as a
// string in some API versions and as a number in others, and item IDs have
// shown the same drift, so both stay raw until coerced.
type wirePage struct {
	Cursor   json.RawMessage `json:"cursor"`
	HasMore  bool            `json:"hasMore"`
	ItemList []struct {
		ID json.RawMessage `json:"id"`
	} `json:"itemList"`
}

// ParseItemPage decodes an item_list response body. Malformed JSON fails
// with an API_FETCH_FAILED error; a well-formed body with no items yields an
// empty page, which the loop treats as end of data.
func ParseItemPage(body []byte) (*ItemPage, error) {
	var wire wirePage
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
			"item_list response is not valid JSON", err)
	}

	page := &ItemPage{
		Cursor:  rawToken(wire.Cursor),
		HasMore: wire.HasMore,
		ItemIDs: make([]string, 0, len(wire.ItemList)),
	}
	for _, item := range wire.ItemList {
		if id := rawToken(item.ID); id != "" {
			page.ItemIDs = append(page.ItemIDs, id)
		}
	}
	return page, nil
}

// rawToken renders a raw JSON scalar as its string form: "123" and 123 both
// become 123.
func rawToken(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
