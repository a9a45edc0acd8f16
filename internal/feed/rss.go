package feed

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves the raw items of one source.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) ([]Item, error)
}

// RSSFetcher reads RSS, Atom and JSON Feed documents.
type RSSFetcher struct {
	client *Client
}

func NewRSSFetcher(client *Client) *RSSFetcher {
	return &RSSFetcher{client: client}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src source.Source) ([]Item, error) {
	body, err := f.client.get(ctx, src.URL, "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		items = append(items, FeedItem{
			Title:       it.Title,
			Description: it.Description,
			Content:     it.Content,
			Link:        it.Link,
			Published:   it.PublishedParsed,
			Updated:     it.UpdatedParsed,
			Categories:  it.Categories,
		})
	}
	return items, nil
}
