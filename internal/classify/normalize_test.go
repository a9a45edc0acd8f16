package classify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/feed"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now         = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	securitySrc = source.Source{Name: "Advisories", Kind: source.KindFeed, Category: source.Security}
	eduSrc      = source.Source{Name: "Academy", Kind: source.KindCurated, Category: source.Education}
)

func at(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestNormalizeScenarioA(t *testing.T) {
	item := feed.FeedItem{
		Title:     "Critical vulnerability found in multisig wallet implementation",
		Link:      "https://example.com/multisig",
		Published: at(2 * time.Hour),
	}
	a, err := Normalize(item, securitySrc, alert.Last24Hours, now)
	require.NoError(t, err)

	assert.Equal(t, alert.Critical, a.Severity)
	assert.Contains(t, a.Tags, "security")
	assert.Contains(t, a.Tags, "wallet")
	assert.Equal(t, source.Security, a.Category)
	assert.Equal(t, "Advisories", a.Source)
	assert.Equal(t, "https://example.com/multisig", a.URL)
	assert.Contains(t, a.ActionItems, "Review security implications")
	assert.Contains(t, a.ActionItems, "Update security warnings")
	assert.Len(t, a.ID, 32)
}

func TestNormalizeScenarioB(t *testing.T) {
	item := feed.FeedItem{Title: "Bitcoin wallet news", Published: at(10 * 24 * time.Hour)}
	_, err := Normalize(item, securitySrc, alert.Last24Hours, now)
	assert.True(t, errors.Is(err, ErrOutsideWindow))
}

func TestNormalizeWindowBoundary(t *testing.T) {
	item := feed.APIItem{Title: "Bitcoin", Published: at(time.Hour)}
	_, err := Normalize(item, securitySrc, alert.LastHour, now)
	assert.NoError(t, err)

	item.Published = at(time.Hour + time.Second)
	_, err = Normalize(item, securitySrc, alert.LastHour, now)
	assert.ErrorIs(t, err, ErrOutsideWindow)
}

func TestNormalizeDropsMisdatedFutureItems(t *testing.T) {
	item := feed.FeedItem{Title: "Bitcoin Core release candidate", Published: at(-30 * time.Minute)}
	_, err := Normalize(item, securitySrc, alert.Last24Hours, now)
	assert.NoError(t, err)

	item.Published = at(-365 * 24 * time.Hour)
	_, err = Normalize(item, securitySrc, alert.Last7Days, now)
	assert.ErrorIs(t, err, ErrOutsideWindow)
}

func TestNormalizeDropsUndated(t *testing.T) {
	_, err := Normalize(feed.PageItem{Title: "Bitcoin tutorial"}, eduSrc, alert.Last7Days, now)
	assert.ErrorIs(t, err, ErrNoTimestamp)
}

func TestNormalizeDropsOffTopic(t *testing.T) {
	item := feed.FeedItem{Title: "Central bank holds rates", Description: "Inflation steady.", Published: at(time.Hour)}
	_, err := Normalize(item, securitySrc, alert.Last24Hours, now)
	assert.ErrorIs(t, err, ErrOffTopic)
}

func TestNormalizeDropsEmptyTitle(t *testing.T) {
	item := feed.FeedItem{Title: "<b> </b>", Description: "bitcoin", Published: at(time.Hour)}
	_, err := Normalize(item, securitySrc, alert.Last24Hours, now)
	assert.ErrorIs(t, err, ErrMalformed)
}

type bogusItem struct{}

func (bogusItem) Transport() source.Kind { return "bogus" }

func TestNormalizeRejectsUnknownItem(t *testing.T) {
	_, err := Normalize(bogusItem{}, securitySrc, alert.Last24Hours, now)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNormalizeFeedFallbacks(t *testing.T) {
	item := feed.FeedItem{
		Title:   "Lightning update",
		Content: "<p>Content used when description is empty</p>",
		Updated: at(30 * time.Minute),
	}
	a, err := Normalize(item, securitySrc, alert.LastHour, now)
	require.NoError(t, err)
	assert.Equal(t, "Content used when description is empty", a.Description)
	assert.True(t, now.Add(-30*time.Minute).Equal(a.Timestamp))
}

func TestNormalizeSanitizesAndCaps(t *testing.T) {
	long := "<div>" + strings.Repeat("bitcoin  &amp; <i>wallet</i>   ", 60) + "</div>"
	item := feed.APIItem{Title: "Bitcoin <em>daily</em>", Body: long, Published: at(time.Minute)}
	a, err := Normalize(item, eduSrc, alert.Last24Hours, now)
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin daily", a.Title)
	assert.LessOrEqual(t, len([]rune(a.Description)), MaxDescription)
	assert.NotContains(t, a.Description, "<")
	assert.NotContains(t, a.Description, "  ")
	assert.Contains(t, a.Description, "bitcoin & wallet")
	assert.True(t, strings.HasSuffix(a.Description, "..."))
}

func TestNormalizeIsDeterministic(t *testing.T) {
	item := feed.FeedItem{
		Title:       "Interactive bitcoin course on lightning security",
		Description: "A hands-on tutorial for BTC wallets.",
		Link:        "https://example.com/course",
		Published:   at(3 * time.Hour),
	}
	first, err := Normalize(item, eduSrc, alert.Last24Hours, now)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Normalize(item, eduSrc, alert.Last24Hours, now)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 100, first.RelevanceScore)
}

func TestAlertID(t *testing.T) {
	id1 := alertID("src", "https://example.com/post-1", "")
	id2 := alertID("src", "https://example.com/post-2", "")
	id1again := alertID("src", "https://example.com/post-1", "ignored")
	other := alertID("other", "https://example.com/post-1", "")
	byTitle := alertID("src", "", "A title")

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id1, id1again)
	assert.NotEqual(t, id1, other)
	assert.Len(t, byTitle, 32)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"こんにちは世界です", 5, "こん..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.input, tt.n), "truncate(%q, %d)", tt.input, tt.n)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"<a href=\"url\">Link</a> text", "Link text"},
		{"Fish &amp; chips", "Fish & chips"},
		{"<script>alert(1)</script>Safe", "Safe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.input), "Sanitize(%q)", tt.input)
	}
}
