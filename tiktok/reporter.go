package tiktok

import (
	"sort"
)

// Unique collapses the collected identifiers into a sorted unique list.
// Idempotent: running it over its own output yields the same list.
// First-seen order is deliberately not preserved — the sort makes reports
// stable across runs.
func Unique(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// VideoURLs maps identifiers to canonical detail-page URLs for the given
// username.
func VideoURLs(baseURL, username string, ids []string) []string {
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = baseURL + "/@" + username + "/video/" + id
	}
	return urls
}
