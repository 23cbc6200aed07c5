package tiktok

import (
	"bytes"
	"encoding/json"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/reelist/models"
)

// stateSelector matches the script tag the web client hydrates from.
// Precompiled once — the selector never changes at runtime.
var stateSelector = cascadia.MustCompile(`script#__UNIVERSAL_DATA_FOR_REHYDRATION__`)

// universalData is the envelope of the server-rendered state blob. Scope
// keys contain dots ("webapp.user-detail"), so the scopes stay raw until the
// one we need is picked out.
type universalData struct {
	DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
}

type userDetailScope struct {
	UserInfo struct {
		User struct {
			ID     string `json:"id"`
			SecUID string `json:"secUid"`
		} `json:"user"`
	} `json:"userInfo"`
}

// ExtractSecUID pulls the profile owner's secUid out of the server-rendered
// profile HTML. The secUid is the stable identifier the item_list API pages
// by; it is only needed when the HTTP fetch path has to construct a request
// template itself.
func ExtractSecUID(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"profile HTML is not parseable", err)
	}

	raw := doc.FindMatcher(stateSelector).Text()
	if raw == "" {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"profile HTML carries no hydration state", nil)
	}

	var data universalData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"hydration state is not valid JSON", err)
	}

	scope, ok := data.DefaultScope["webapp.user-detail"]
	if !ok {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"hydration state has no user-detail scope", nil)
	}

	var detail userDetailScope
	if err := json.Unmarshal(scope, &detail); err != nil {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"user-detail scope has unexpected shape", err)
	}
	if detail.UserInfo.User.SecUID == "" {
		return "", models.NewScrapeError(models.ErrCodeAPIFetch,
			"user-detail scope carries no secUid", nil)
	}
	return detail.UserInfo.User.SecUID, nil
}
