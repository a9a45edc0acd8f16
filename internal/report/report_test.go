package report

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func mk(id string, cat source.Category, sev alert.Severity, score int, tags ...string) alert.Alert {
	return alert.Alert{
		ID:                id,
		Title:             "Alert " + id,
		Category:          cat,
		Severity:          sev,
		Source:            "src-" + string(cat),
		Timestamp:         now.Add(-time.Hour),
		Tags:              tags,
		RelevanceScore:    score,
		EducationalImpact: "Low: general awareness for learners",
		ActionItems:       []string{"Monitor for follow-up coverage"},
	}
}

func population() []alert.Alert {
	return []alert.Alert{
		mk("1", source.Security, alert.Critical, 70, "security", "wallet"),
		mk("2", source.Security, alert.High, 60, "security"),
		mk("3", source.News, alert.Critical, 90, "lightning"),
		mk("4", source.Education, alert.Info, 80, "education"),
		mk("5", source.Regulatory, alert.Medium, 50, "regulatory"),
		mk("6", source.News, alert.Low, 55, "education"),
		mk("7", source.News, alert.Low, 50),
	}
}

func newTestBuilder(s Synthesizer) *Builder {
	return NewBuilder(clock.NewManual(now), s)
}

func ids(alerts []alert.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func TestBuildViewsAreExactFilters(t *testing.T) {
	all := population()
	r := newTestBuilder(nil).Build(all, alert.Last24Hours)

	assert.Equal(t, 7, r.TotalAlerts)
	if diff := cmp.Diff([]string{"3", "1"}, ids(r.CriticalAlerts)); diff != "" {
		t.Errorf("critical view mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"2"}, ids(r.HighAlerts))
	assert.Equal(t, []string{"4", "6"}, ids(r.EducationalOpportunities))

	full := map[string]bool{}
	for _, a := range all {
		full[a.ID] = true
	}
	for _, a := range r.CriticalAlerts {
		assert.True(t, full[a.ID])
		assert.Equal(t, alert.Critical, a.Severity)
	}
	critical := 0
	for _, a := range all {
		if a.Severity == alert.Critical {
			critical++
		}
	}
	assert.Len(t, r.CriticalAlerts, critical)
}

func TestBuildDoesNotReorderInput(t *testing.T) {
	all := population()
	before := ids(all)
	newTestBuilder(DataDriven{}).Build(all, alert.Last24Hours)
	assert.Equal(t, before, ids(all))
}

func TestViewsTieBreakOnTimestamp(t *testing.T) {
	older := mk("old", source.Security, alert.Critical, 70)
	older.Timestamp = now.Add(-3 * time.Hour)
	newer := mk("new", source.Security, alert.Critical, 70)

	r := newTestBuilder(nil).Build([]alert.Alert{older, newer}, alert.Last24Hours)
	assert.Equal(t, []string{"new", "old"}, ids(r.CriticalAlerts))
}

func TestBuildSummaryText(t *testing.T) {
	r := newTestBuilder(nil).Build(population(), alert.Last24Hours)

	assert.Contains(t, r.Summary, "Found 7 alerts in the last 24h")
	assert.Contains(t, r.Summary, "2 critical, 1 high")
	assert.Contains(t, r.Summary, "news (3)")
	assert.Contains(t, r.Summary, "security (2)")
	assert.NotContains(t, r.Summary, "regulatory (1)")
}

func TestBuildNoAlerts(t *testing.T) {
	r := newTestBuilder(nil).Build(nil, alert.Last6Hours)

	assert.Equal(t, 0, r.TotalAlerts)
	assert.NotEmpty(t, r.Summary)
	assert.True(t, strings.HasPrefix(r.Summary, "No alerts found"))
	assert.Empty(t, r.Recommendations)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null", "empty lists should encode as []")
}

func TestRecommendationsNonEmptyWhenAlertsExist(t *testing.T) {
	for _, a := range population() {
		r := newTestBuilder(nil).Build([]alert.Alert{a}, alert.Last24Hours)
		assert.NotEmpty(t, r.Recommendations, "alert %s", a.ID)
	}

	r := newTestBuilder(nil).Build(population(), alert.Last24Hours)
	assert.Contains(t, r.Recommendations[0], "2 critical")
}

func TestScenarioEducationOnly(t *testing.T) {
	edu := []alert.Alert{
		mk("e1", source.Education, alert.Info, 85, "education"),
		mk("e2", source.Education, alert.Info, 75, "education", "lightning"),
	}
	for name, s := range map[string]Synthesizer{"data": DataDriven{}, "curated": Curated{}} {
		t.Run(name, func(t *testing.T) {
			r := newTestBuilder(s).Build(edu, alert.Last24Hours)
			assert.Empty(t, r.ThreatLandscape.NewThreats)
			assert.NotEmpty(t, r.EducationalInsights.NewResources)
		})
	}
}

func TestNewThreatsFromSecurityAlerts(t *testing.T) {
	r := newTestBuilder(DataDriven{}).Build(population(), alert.Last24Hours)
	assert.Equal(t, []string{"Alert 1 (src-security)", "Alert 2 (src-security)"}, r.ThreatLandscape.NewThreats)
	assert.Equal(t, []string{"Alert 5 (src-regulatory)"}, r.MarketIntelligence.RegulatoryUpdates)
	assert.Contains(t, r.MarketIntelligence.AdoptionTrends, "lightning activity in 1 alert(s)")
	assert.Contains(t, r.ThreatLandscape.TrendingRisks, "2 critical alert(s) this period")
}

func TestCuratedAddsStatementsForMix(t *testing.T) {
	data := DataDriven{}.Synthesize(population())
	curated := Curated{}.Synthesize(population())

	assert.Greater(t, len(curated.Threats.MitigationStrategies), len(data.Threats.MitigationStrategies))
	assert.Contains(t, curated.Threats.MitigationStrategies, "Teach seed phrase backup and verification")
	assert.Contains(t, curated.Market.RegulatoryUpdates, "Track compliance implications for custodial services")
	assert.NotContains(t, curated.Market.EconomicFactors, "Relate monetary policy news to bitcoin's fixed supply schedule")
}

func TestContentGaps(t *testing.T) {
	gaps := contentGaps(population(), []alert.Alert{mk("4", source.Education, alert.Info, 80, "education")})
	require.NotEmpty(t, gaps)
	assert.True(t, strings.HasPrefix(gaps[0], "security topics (2 alert(s)"))
}

func TestReportID(t *testing.T) {
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^intel_20260310T120000Z_[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewID(now))
}

func TestReportJSONShape(t *testing.T) {
	r := newTestBuilder(nil).Build(population(), alert.Last24Hours)
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"report_id", "generated_at", "period", "summary", "total_alerts",
		"critical_alerts", "high_alerts", "educational_opportunities",
		"threat_landscape", "market_intelligence", "educational_insights",
		"recommendations",
	}, keys)
}

func TestCondense(t *testing.T) {
	r := newTestBuilder(nil).Build(population(), alert.Last24Hours)
	r.Recommendations = []string{"a", "b", "c", "d", "e", "f"}
	r.ThreatLandscape.NewThreats = []string{"t1", "t2", "t3", "t4"}

	s := Condense(r)
	want := Summary{
		LastUpdated:            now,
		TotalAlerts:            7,
		CriticalCount:          2,
		HighCount:              1,
		KeyRecommendations:     []string{"a", "b", "c", "d", "e"},
		TopThreats:             []string{"t1", "t2", "t3"},
		EducationOpportunities: []string{"Alert 4", "Alert 6"},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Condense mismatch (-want +got):\n%s", diff)
	}
}
