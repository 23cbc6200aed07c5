package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCookiePairs(t *testing.T) {
	got := ParseCookiePairs("sessionid=abc123; msToken=x-y_z;  ttwid = 7 ")
	want := map[string]string{
		"sessionid": "abc123",
		"msToken":   "x-y_z",
		"ttwid":     "7",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCookiePairs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCookiePairs_ValueWithEquals(t *testing.T) {
	got := ParseCookiePairs("token=a=b=c")
	if got["token"] != "a=b=c" {
		t.Errorf("value with '=' truncated: %q", got["token"])
	}
}

func TestParseCookiePairs_SkipsMalformed(t *testing.T) {
	got := ParseCookiePairs("; =orphan; good=1;;")
	want := map[string]string{"good": "1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("malformed fragments should be skipped (-want +got):\n%s", diff)
	}
}

func TestParseCookiePairs_Empty(t *testing.T) {
	if got := ParseCookiePairs(""); len(got) != 0 {
		t.Errorf("empty input should yield no pairs, got %v", got)
	}
}
