package classify

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/feed"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxDescription = 300
	maxTitle       = 200
)

// Reasons an item is dropped. Callers skip the item and move on.
var (
	ErrMalformed     = errors.New("malformed item")
	ErrNoTimestamp   = errors.New("item has no publish time")
	ErrOutsideWindow = errors.New("item outside timeframe")
	ErrOffTopic      = errors.New("item off topic")
)

var strict = bluemonday.StrictPolicy()

// Normalize turns one raw item into an Alert, or returns the reason it was
// dropped. The result depends only on its arguments.
func Normalize(item feed.Item, src source.Source, tf alert.Timeframe, now time.Time) (alert.Alert, error) {
	var (
		title, body, link string
		published         *time.Time
	)
	switch it := item.(type) {
	case feed.FeedItem:
		title, body, link = it.Title, it.Description, it.Link
		if strings.TrimSpace(body) == "" {
			body = it.Content
		}
		published = it.Published
		if published == nil {
			published = it.Updated
		}
	case feed.APIItem:
		title, body, link, published = it.Title, it.Body, it.URL, it.Published
	case feed.PageItem:
		title, body, link, published = it.Title, it.Text, it.Link, it.Published
	default:
		return alert.Alert{}, fmt.Errorf("%w: unsupported item type %T", ErrMalformed, item)
	}

	title = truncate(Sanitize(title), maxTitle)
	if title == "" {
		return alert.Alert{}, fmt.Errorf("%w: empty title", ErrMalformed)
	}
	if published == nil || published.IsZero() {
		return alert.Alert{}, ErrNoTimestamp
	}
	if !tf.Contains(now, *published) {
		return alert.Alert{}, ErrOutsideWindow
	}

	clean := Sanitize(body)
	text := strings.ToLower(title + " " + clean)
	if !OnTopic(text) {
		return alert.Alert{}, ErrOffTopic
	}

	sev := Severity(text, src.Category)
	tags := Tags(text, src.Category)
	return alert.Alert{
		ID:                alertID(src.Name, link, title),
		Title:             title,
		Description:       truncate(clean, MaxDescription),
		Category:          src.Category,
		Severity:          sev,
		Source:            src.Name,
		URL:               link,
		Timestamp:         published.UTC(),
		Tags:              tags,
		RelevanceScore:    Relevance(text, src.Category),
		EducationalImpact: EducationalImpact(text, src.Category),
		ActionItems:       ActionItems(text, src.Category, sev, tags),
	}, nil
}

// Sanitize strips markup, decodes entities and collapses whitespace.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func alertID(sourceName, link, title string) string {
	key := link
	if key == "" {
		key = title
	}
	h := sha256.Sum256([]byte(sourceName + "\x00" + key))
	return fmt.Sprintf("%x", h[:16])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
