package tiktok

import (
	"errors"
	"fmt"
	"testing"

	"github.com/use-agent/reelist/models"
)

func profileHTML(state string) []byte {
	return []byte(fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>profile</title></head>
<body>
<div id="app"></div>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">%s</script>
</body>
</html>`, state))
}

func TestExtractSecUID(t *testing.T) {
	state := `{"__DEFAULT_SCOPE__":{"webapp.app-context":{"language":"en"},"webapp.user-detail":{"userInfo":{"user":{"id":"42","secUid":"MS4wLjABAAAAtest"}}}}}`

	secUID, err := ExtractSecUID(profileHTML(state))
	if err != nil {
		t.Fatalf("ExtractSecUID returned error: %v", err)
	}
	if secUID != "MS4wLjABAAAAtest" {
		t.Errorf("secUid = %q, want MS4wLjABAAAAtest", secUID)
	}
}

func TestExtractSecUID_MissingScript(t *testing.T) {
	_, err := ExtractSecUID([]byte(`<html><body><p>verify to continue</p></body></html>`))
	if err == nil {
		t.Fatal("HTML without hydration state should fail")
	}
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) || scrapeErr.Code != models.ErrCodeAPIFetch {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeAPIFetch)
	}
}

func TestExtractSecUID_MissingScope(t *testing.T) {
	state := `{"__DEFAULT_SCOPE__":{"webapp.app-context":{"language":"en"}}}`
	if _, err := ExtractSecUID(profileHTML(state)); err == nil {
		t.Fatal("state without a user-detail scope should fail")
	}
}

func TestExtractSecUID_EmptySecUID(t *testing.T) {
	state := `{"__DEFAULT_SCOPE__":{"webapp.user-detail":{"userInfo":{"user":{"id":"42","secUid":""}}}}}`
	if _, err := ExtractSecUID(profileHTML(state)); err == nil {
		t.Fatal("empty secUid should fail")
	}
}
