package tiktok

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/use-agent/reelist/models"
)

// FetchFunc issues one item_list request and decodes the page. The browser
// and HTTP fetchers both satisfy it.
type FetchFunc func(ctx context.Context, url string) (*ItemPage, error)

// loopState models the three phases of the pagination loop.
type loopState int

const (
	stateAwaitingFirstPage loopState = iota
	stateFetchingNextPage
	stateDone
)

// Paginator walks a cursor-based API until the unique-ID count reaches the
// configured maximum or the API reports no more pages. It is single-use and
// strictly sequential: there is exactly one cursor chain, so parallel
// fetches would have nothing to parallelise.
type Paginator struct {
	maxVideos int
	delayMin  time.Duration
	delayMax  time.Duration
	fetch     FetchFunc

	rng   *rand.Rand
	sleep func(time.Duration)

	state       loopState
	templateURL string
	cursor      string
	hasMore     bool
	seen        map[string]struct{}
	ids         []string
	pages       int
}

// NewPaginator creates a paginator. maxVideos must be >= 1; the delay bounds
// shape the randomized pause between page fetches.
func NewPaginator(maxVideos int, delayMin, delayMax time.Duration, fetch FetchFunc) *Paginator {
	if delayMax < delayMin {
		delayMax = delayMin
	}
	return &Paginator{
		maxVideos: maxVideos,
		delayMin:  delayMin,
		delayMax:  delayMax,
		fetch:     fetch,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:     time.Sleep,
		seen:      make(map[string]struct{}),
	}
}

// Collect consumes the first captured API response and then follows the
// cursor chain. firstURL is retained as the template for every subsequent
// request; only its cursor parameter changes between iterations.
//
// The maximum is checked after a page is appended, never before, so the
// result can overshoot by at most one page. Any fetch error aborts the loop
// immediately — detection failures are surfaced, not masked by retries —
// and progress collected so far is discarded by the caller.
func (p *Paginator) Collect(ctx context.Context, firstURL string, first *ItemPage) ([]string, error) {
	if p.state != stateAwaitingFirstPage {
		return nil, models.NewScrapeError(models.ErrCodeInternal,
			"paginator is single-use", nil)
	}

	p.templateURL = firstURL
	p.absorb(first)
	p.state = stateFetchingNextPage

	for p.hasMore && len(p.seen) < p.maxVideos {
		p.sleep(p.jitter())

		if err := ctx.Err(); err != nil {
			p.state = stateDone
			return nil, models.NewScrapeError(models.ErrCodeAPIFetch,
				"pagination canceled", err)
		}

		nextURL, err := WithCursor(p.templateURL, p.cursor)
		if err != nil {
			p.state = stateDone
			return nil, err
		}

		slog.Debug("fetching next page",
			"page", p.pages+1,
			"cursor", p.cursor,
			"collected", len(p.seen),
		)

		page, err := p.fetch(ctx, nextURL)
		if err != nil {
			p.state = stateDone
			return nil, err
		}
		p.absorb(page)
	}

	p.state = stateDone
	slog.Info("pagination complete",
		"pages", p.pages,
		"unique_ids", len(p.seen),
	)
	return p.ids, nil
}

// Pages reports how many API pages were consumed.
func (p *Paginator) Pages() int {
	return p.pages
}

// absorb appends a page's identifiers and advances the cursor state.
func (p *Paginator) absorb(page *ItemPage) {
	for _, id := range page.ItemIDs {
		if _, dup := p.seen[id]; dup {
			continue
		}
		p.seen[id] = struct{}{}
		p.ids = append(p.ids, id)
	}
	p.cursor = page.Cursor
	p.hasMore = page.HasMore && page.Cursor != ""
	p.pages++
}

// jitter draws the inter-page delay uniformly from [delayMin, delayMax].
// This is rate-limit courtesy: a fixed cadence is itself a bot signal.
func (p *Paginator) jitter() time.Duration {
	if p.delayMax == p.delayMin {
		return p.delayMin
	}
	return p.delayMin + time.Duration(p.rng.Int63n(int64(p.delayMax-p.delayMin)))
}
