package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// Field aliases tried in order when decoding API records.
var (
	listKeys      = []string{"items", "data", "hits", "results", "articles", "entries"}
	titleKeys     = []string{"title", "headline", "name"}
	bodyKeys      = []string{"description", "summary", "body", "story_text", "content", "text"}
	urlKeys       = []string{"url", "link", "story_url", "permalink"}
	publishedKeys = []string{"published_at", "publishedAt", "published", "created_at", "createdAt", "date", "pubDate", "timestamp", "created_at_i", "creation_date"}
)

// APIFetcher reads JSON APIs that return a list of records, either as the
// top-level value or under one of a handful of well-known keys.
type APIFetcher struct {
	client *Client
}

func NewAPIFetcher(client *Client) *APIFetcher {
	return &APIFetcher{client: client}
}

func (f *APIFetcher) Fetch(ctx context.Context, src source.Source) ([]Item, error) {
	body, err := f.client.get(ctx, src.URL, "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}
	items, err := decodeAPI(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src.Name, err)
	}
	return items, nil
}

func decodeAPI(body []byte) ([]Item, error) {
	records, err := recordList(body)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(records))
	for _, raw := range records {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rec); err != nil {
			// not an object; skip the record, keep the rest
			continue
		}
		item := APIItem{
			Title: firstString(rec, titleKeys),
			Body:  firstString(rec, bodyKeys),
			URL:   firstString(rec, urlKeys),
		}
		if t, ok := firstTime(rec, publishedKeys); ok {
			item.Published = &t
		}
		if item.Title == "" && item.Body == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func recordList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for _, k := range listKeys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
	}
	return nil, fmt.Errorf("no record list found (looked for %v)", listKeys)
}

func firstString(rec map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		raw, ok := rec[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func firstTime(rec map[string]json.RawMessage, keys []string) (time.Time, bool) {
	for _, k := range keys {
		raw, ok := rec[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if t, ok := parseTime(s); ok {
				return t, true
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if v, err := n.Int64(); err == nil {
				return unixTime(v), true
			}
		}
	}
	return time.Time{}, false
}
