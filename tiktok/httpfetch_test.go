package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/use-agent/reelist/fingerprint"
	"github.com/use-agent/reelist/models"
)

func testProfile() *fingerprint.Profile {
	return fingerprint.NewGenerator(1).Profile()
}

func TestHTTPFetcher_FetchPage(t *testing.T) {
	var gotUA, gotReferer, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cursor":"10","hasMore":true,"itemList":[{"id":"1"}]}`))
	}))
	defer srv.Close()

	profile := testProfile()
	f := newHTTPFetcher(profile, "https://www.tiktok.com/@user", "sessionid=abc")

	page, err := f.fetchPage(context.Background(), srv.URL+"/api/post/item_list/?cursor=0")
	if err != nil {
		t.Fatalf("fetchPage returned error: %v", err)
	}
	if page.Cursor != "10" || !page.HasMore || len(page.ItemIDs) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}

	if gotUA != profile.UserAgent {
		t.Errorf("User-Agent = %q, want the profile's %q", gotUA, profile.UserAgent)
	}
	if gotReferer != "https://www.tiktok.com/@user" {
		t.Errorf("Referer = %q", gotReferer)
	}
	if gotCookie != "sessionid=abc" {
		t.Errorf("Cookie = %q", gotCookie)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newHTTPFetcher(testProfile(), "", "")
	_, err := f.fetchPage(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("403 should fail")
	}
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) || scrapeErr.Code != models.ErrCodeAPIFetch {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeAPIFetch)
	}
}

func TestHTTPFetcher_ChallengePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Security Check</h1><p>verify to continue</p></body></html>`))
	}))
	defer srv.Close()

	f := newHTTPFetcher(testProfile(), "", "")
	_, err := f.fetchPage(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("challenge interstitial should fail")
	}
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) || scrapeErr.Code != models.ErrCodeAPIFetch {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeAPIFetch)
	}
}

func TestLooksLikeChallenge(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "captcha interstitial",
			body: `<html><body><div>Please complete the CAPTCHA</div></body></html>`,
			want: true,
		},
		{
			name: "marker only inside script is ignored",
			body: `<html><head><script>var x = "captcha";</script></head><body><p>hello</p></body></html>`,
			want: false,
		},
		{
			name: "ordinary page",
			body: `<html><body><p>just some videos</p></body></html>`,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := looksLikeChallenge([]byte(tc.body)); got != tc.want {
				t.Errorf("looksLikeChallenge = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProfileURL(t *testing.T) {
	got := ProfileURL("https://www.tiktok.com", "somecreator")
	if got != "https://www.tiktok.com/@somecreator" {
		t.Errorf("ProfileURL = %s", got)
	}
}

func TestItemListURL_RoundTripsThroughWithCursor(t *testing.T) {
	first := ItemListURL("https://www.tiktok.com", "MS4wLjABAAAAtest")
	next, err := WithCursor(first, "35")
	if err != nil {
		t.Fatalf("WithCursor on constructed URL failed: %v", err)
	}
	want := "https://www.tiktok.com/api/post/item_list/?aid=1988&count=35&cursor=35&secUid=MS4wLjABAAAAtest"
	if next != want {
		t.Errorf("got %s, want %s", next, want)
	}
}
