package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleReport(t *testing.T, at time.Time) *report.Report {
	t.Helper()
	alerts := []alert.Alert{
		{ID: "a1", Title: "Wallet exploit", Category: source.Security, Severity: alert.Critical, Source: "Advisories", Timestamp: at.Add(-time.Hour), Tags: []string{"security", "wallet"}, RelevanceScore: 70},
		{ID: "a2", Title: "Intro to keys", Category: source.Education, Severity: alert.Info, Source: "Academy", Timestamp: at.Add(-2 * time.Hour), Tags: []string{"education"}, RelevanceScore: 80},
	}
	return report.NewBuilder(clock.NewManual(at), nil).Build(alerts, alert.Last24Hours)
}

func TestLoadLatestSummaryPlaceholder(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"), nil)

	latest, err := s.LoadLatestSummary()
	require.NoError(t, err)
	assert.False(t, latest.Found)
	assert.Nil(t, latest.Summary)
	assert.NotEmpty(t, latest.Message)
	assert.Contains(t, latest.SuggestedAction, "gather")
}

func TestSaveCreatesDirectoriesAndFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "intel")
	s := New(dir, clock.NewManual(now))
	r := sampleReport(t, now)

	require.NoError(t, s.Save(r))
	require.NoError(t, s.Save(r), "saving twice should be idempotent")

	_, err := os.Stat(filepath.Join(dir, "reports", r.ReportID+".json"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "latest_summary.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, k := range []string{"last_updated", "total_alerts", "critical_count", "high_count", "key_recommendations", "top_threats", "education_opportunities"} {
		assert.Contains(t, doc, k)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveThenLoad(t *testing.T) {
	s := New(t.TempDir(), clock.NewManual(now))
	r := sampleReport(t, now)
	require.NoError(t, s.Save(r))

	latest, err := s.LoadLatestSummary()
	require.NoError(t, err)
	require.True(t, latest.Found)
	assert.Equal(t, 2, latest.Summary.TotalAlerts)
	assert.Equal(t, 1, latest.Summary.CriticalCount)
	assert.True(t, latest.Summary.LastUpdated.Equal(r.GeneratedAt))

	loaded, err := s.LoadReport(r.ReportID)
	require.NoError(t, err)
	assert.Equal(t, r.ReportID, loaded.ReportID)
	assert.Equal(t, r.Summary, loaded.Summary)
	assert.Equal(t, r.Recommendations, loaded.Recommendations)
	require.Len(t, loaded.CriticalAlerts, 1)
	assert.Equal(t, "a1", loaded.CriticalAlerts[0].ID)
}

func TestLatestSummaryOverwritten(t *testing.T) {
	s := New(t.TempDir(), nil)
	first := sampleReport(t, now)
	second := sampleReport(t, now.Add(time.Hour))
	second.TotalAlerts = 9

	require.NoError(t, s.Save(first))
	require.NoError(t, s.Save(second))

	latest, err := s.LoadLatestSummary()
	require.NoError(t, err)
	assert.Equal(t, 9, latest.Summary.TotalAlerts)

	entries, err := s.ListReports()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ReportID, entries[0].ID)
}

func TestLoadReportErrors(t *testing.T) {
	s := New(t.TempDir(), nil)

	_, err := s.LoadReport("intel_20260101T000000Z_deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadReport("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestSaveRejectsBadID(t *testing.T) {
	s := New(t.TempDir(), nil)
	r := sampleReport(t, now)
	r.ReportID = "a/b"
	assert.ErrorIs(t, s.Save(r), ErrInvalidID)
}

func TestSaveFailsOnUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := New(blocker, nil)
	assert.Error(t, s.Save(sampleReport(t, now)))
}

func TestPrune(t *testing.T) {
	clk := clock.NewManual(now)
	s := New(t.TempDir(), clk)

	old := sampleReport(t, now.Add(-40*24*time.Hour))
	recent := sampleReport(t, now.Add(-time.Hour))
	require.NoError(t, s.Save(old))
	require.NoError(t, s.Save(recent))

	deleted, err := s.Prune(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	entries, err := s.ListReports()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, recent.ReportID, entries[0].ID)

	latest, err := s.LoadLatestSummary()
	require.NoError(t, err)
	assert.True(t, latest.Found)
}

func TestListReportsEmpty(t *testing.T) {
	entries, err := New(t.TempDir(), nil).ListReports()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGeneratedAtFromID(t *testing.T) {
	mod := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, generatedAt("intel_20260310T120000Z_abcd1234", mod).Equal(now))
	assert.True(t, generatedAt("custom-report", mod).Equal(mod))
}
