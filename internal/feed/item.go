package feed

import (
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// Item is a raw item as retrieved by one transport. The set of
// implementations is closed: FeedItem, APIItem and PageItem.
type Item interface {
	Transport() source.Kind
}

// FeedItem is an entry from an RSS or Atom feed.
type FeedItem struct {
	Title       string
	Description string
	Content     string
	Link        string
	Published   *time.Time
	Updated     *time.Time
	Categories  []string
}

func (FeedItem) Transport() source.Kind { return source.KindFeed }

// APIItem is a record decoded from a JSON API response.
type APIItem struct {
	Title     string
	Body      string
	URL       string
	Published *time.Time
}

func (APIItem) Transport() source.Kind { return source.KindAPI }

// PageItem is a block extracted from a scraped HTML page.
type PageItem struct {
	Title     string
	Text      string
	Link      string
	Published *time.Time
}

func (PageItem) Transport() source.Kind { return source.KindScrape }
