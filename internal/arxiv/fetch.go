// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv pages through the arXiv search API and collects entries
// updated within a recency window.
package arxiv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-notify/pkg/types"
)

// DefaultBaseURL is the arXiv search endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// PageSize is the number of entries requested per page.
const PageSize = 30

// DefaultPageDelay is the pause after every page request, per the arXiv
// API terms of use.
const DefaultPageDelay = 3 * time.Second

// DefaultMaxPages bounds pagination when the caller does not set a limit.
const DefaultMaxPages = 100

var (
	// ErrTransport marks failures talking to the catalog: connection
	// errors, non-200 responses and unreadable bodies.
	ErrTransport = errors.New("arxiv transport error")

	// ErrParse marks responses that are not a usable Atom feed.
	ErrParse = errors.New("arxiv parse error")
)

// Fetcher queries the arXiv API page by page.
type Fetcher struct {
	Client  *http.Client
	BaseURL string

	// PageDelay is slept after every page, including the first.
	PageDelay time.Duration

	// MaxPages stops pagination after this many pages. Zero is unbounded.
	MaxPages int

	log   *zap.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher for the public arXiv endpoint. Zero values
// in cfg fall back to DefaultPageDelay; MaxPages is used as given.
func NewFetcher(client *http.Client, cfg types.FetchConfig, log *zap.Logger) *Fetcher {
	delay := cfg.PageDelay
	if delay <= 0 {
		delay = DefaultPageDelay
	}
	return &Fetcher{
		Client:    client,
		BaseURL:   DefaultBaseURL,
		PageDelay: delay,
		MaxPages:  cfg.MaxPages,
		log:       log,
		sleep:     sleepContext,
	}
}

// Fetch returns every entry matching terms whose update time is no older
// than windowDays before the feed's own updated timestamp. Entries arrive
// newest first; the first entry older than the cutoff ends the fetch and
// no further pages are requested. The cutoff is recomputed from each
// page's feed timestamp.
//
// A page with no entries does not end the fetch. MaxPages, when set,
// guards against a catalog that keeps returning empty pages.
func (f *Fetcher) Fetch(ctx context.Context, terms []string, windowDays int) ([]types.Article, error) {
	var articles []types.Article

	for page := 0; ; page++ {
		if f.MaxPages > 0 && page >= f.MaxPages {
			f.log.Warn("page limit reached before cutoff, stopping",
				zap.Strings("terms", terms),
				zap.Int("pages", page),
				zap.Int("articles", len(articles)))
			return articles, nil
		}

		feed, err := f.fetchPage(ctx, terms, page)
		if err != nil {
			return nil, err
		}
		if feed.UpdatedParsed == nil {
			return nil, fmt.Errorf("%w: feed has no usable updated timestamp %q", ErrParse, feed.Updated)
		}
		cutoff := feed.UpdatedParsed.Add(-time.Duration(windowDays) * 24 * time.Hour)

		f.log.Debug("fetched page",
			zap.Int("page", page),
			zap.Int("entries", len(feed.Entries)),
			zap.Time("cutoff", cutoff))

		if err := f.sleep(ctx, f.PageDelay); err != nil {
			return nil, err
		}

		for _, entry := range feed.Entries {
			a, err := toArticle(entry)
			if err != nil {
				return nil, err
			}
			if a.Updated.Before(cutoff) {
				return articles, nil
			}
			articles = append(articles, a)
		}
	}
}

func (f *Fetcher) fetchPage(ctx context.Context, terms []string, page int) (*atom.Feed, error) {
	url := BuildQuery(f.BaseURL, terms, page*PageSize, PageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: arXiv API request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: arXiv API returned HTTP %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading arXiv response: %w", ErrTransport, err)
	}

	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing arXiv response: %w", ErrParse, err)
	}
	return feed, nil
}

func toArticle(e *atom.Entry) (types.Article, error) {
	if e.UpdatedParsed == nil {
		return types.Article{}, fmt.Errorf("%w: entry %s has no usable updated timestamp %q", ErrParse, e.ID, e.Updated)
	}
	return types.Article{
		Title:    strings.Join(strings.Fields(e.Title), " "),
		Link:     strings.TrimSpace(e.ID),
		Abstract: strings.TrimSpace(e.Summary),
		Updated:  *e.UpdatedParsed,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
