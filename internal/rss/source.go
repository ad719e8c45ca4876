// Package rss discovers fresh article URLs from a syndication feed so the
// pipeline can ingest them as regular URL batches.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

// Config holds feed source configuration.
type Config struct {
	FeedURL  string
	Timeout  time.Duration
	MaxItems int
}

// Source fetches a feed and yields item links that were not seen in earlier
// cycles. Seen links are tracked in memory per process.
type Source struct {
	parser   *gofeed.Parser
	feedURL  string
	timeout  time.Duration
	maxItems int
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a feed source.
func New(cfg Config, logger *slog.Logger) *Source {
	maxItems := cfg.MaxItems
	if maxItems < 1 {
		maxItems = 10
	}
	return &Source{
		parser:   gofeed.NewParser(),
		feedURL:  cfg.FeedURL,
		timeout:  cfg.Timeout,
		maxItems: maxItems,
		logger:   logger.With("source", "rss", "feed", cfg.FeedURL),
		seen:     make(map[string]struct{}),
	}
}

// FetchBatchURLs parses the feed and returns up to MaxItems unseen links,
// newest first. An empty slice means there is nothing new to ingest.
func (s *Source) FetchBatchURLs(ctx context.Context) ([]string, error) {
	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	feed, err := s.parser.ParseURLWithContext(s.feedURL, fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, s.maxItems)
	for _, item := range feed.Items {
		if len(urls) >= s.maxItems {
			break
		}
		link := item.Link
		if link == "" {
			continue
		}
		if _, ok := s.seen[link]; ok {
			continue
		}
		s.seen[link] = struct{}{}
		urls = append(urls, link)
	}

	s.logger.Debug("fetched feed",
		"items", len(feed.Items),
		"fresh", len(urls),
	)

	return urls, nil
}
