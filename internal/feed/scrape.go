package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

const maxPageItems = 50

// ScrapeFetcher extracts items from an HTML page. It looks for <article>
// blocks first and falls back to headline links carrying a <time> element.
type ScrapeFetcher struct {
	client *Client
}

func NewScrapeFetcher(client *Client) *ScrapeFetcher {
	return &ScrapeFetcher{client: client}
}

func (f *ScrapeFetcher) Fetch(ctx context.Context, src source.Source) ([]Item, error) {
	body, err := f.client.get(ctx, src.URL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}
	items, err := scrapePage(body, src.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}
	return items, nil
}

func scrapePage(body []byte, pageURL string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	var items []Item
	doc.Find("article").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if item, ok := articleItem(s, base); ok {
			items = append(items, item)
		}
		return len(items) < maxPageItems
	})
	if len(items) > 0 {
		return items, nil
	}

	// No <article> markup: try list entries that pair a headline link with a date.
	doc.Find("li, .post, .entry").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find("time").Length() == 0 {
			return true
		}
		if item, ok := articleItem(s, base); ok {
			items = append(items, item)
		}
		return len(items) < maxPageItems
	})
	return items, nil
}

func articleItem(s *goquery.Selection, base *url.URL) (PageItem, bool) {
	heading := s.Find("h1, h2, h3, h4").First()
	title := collapse(heading.Text())

	link := heading.Find("a").First()
	if link.Length() == 0 {
		link = s.Find("a[href]").First()
	}
	if title == "" {
		title = collapse(link.Text())
	}
	if title == "" {
		return PageItem{}, false
	}

	item := PageItem{
		Title: title,
		Text:  collapse(s.Find("p").Text()),
		Link:  resolve(base, link.AttrOr("href", "")),
	}

	ts := s.Find("time").First()
	raw := ts.AttrOr("datetime", "")
	if raw == "" {
		raw = ts.Text()
	}
	if t, ok := parseTime(raw); ok {
		item.Published = &t
	}
	return item, true
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
