// Package report turns a cycle's alerts into the persisted intelligence
// report and its condensed summary.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

type ThreatLandscape struct {
	NewThreats           []string `json:"new_threats"`
	TrendingRisks        []string `json:"trending_risks"`
	MitigationStrategies []string `json:"mitigation_strategies"`
}

type MarketIntelligence struct {
	EconomicFactors   []string `json:"economic_factors"`
	RegulatoryUpdates []string `json:"regulatory_updates"`
	AdoptionTrends    []string `json:"adoption_trends"`
}

type EducationalInsights struct {
	NewResources       []string `json:"new_resources"`
	CourseImprovements []string `json:"course_improvements"`
	ContentGaps        []string `json:"content_gaps"`
}

// SourceStatus records how one source fared in the cycle. It is shown by
// the CLI but not persisted.
type SourceStatus struct {
	Name   string
	Alerts int
	Cached bool
	Err    string
}

// Report is the output of one gather cycle.
type Report struct {
	ReportID                 string              `json:"report_id"`
	GeneratedAt              time.Time           `json:"generated_at"`
	Period                   alert.Timeframe     `json:"period"`
	Summary                  string              `json:"summary"`
	TotalAlerts              int                 `json:"total_alerts"`
	CriticalAlerts           []alert.Alert       `json:"critical_alerts"`
	HighAlerts               []alert.Alert       `json:"high_alerts"`
	EducationalOpportunities []alert.Alert       `json:"educational_opportunities"`
	ThreatLandscape          ThreatLandscape     `json:"threat_landscape"`
	MarketIntelligence       MarketIntelligence  `json:"market_intelligence"`
	EducationalInsights      EducationalInsights `json:"educational_insights"`
	Recommendations          []string            `json:"recommendations"`

	Alerts  []alert.Alert  `json:"-"`
	Sources []SourceStatus `json:"-"`
}

// Summary is the condensed view of the latest report.
type Summary struct {
	LastUpdated            time.Time `json:"last_updated"`
	TotalAlerts            int       `json:"total_alerts"`
	CriticalCount          int       `json:"critical_count"`
	HighCount              int       `json:"high_count"`
	KeyRecommendations     []string  `json:"key_recommendations"`
	TopThreats             []string  `json:"top_threats"`
	EducationOpportunities []string  `json:"education_opportunities"`
}

// Builder assembles reports. It is safe for concurrent use.
type Builder struct {
	clock clock.Clock
	synth Synthesizer
	newID func(time.Time) string
}

// NewBuilder returns a Builder. A nil synthesizer means Curated.
func NewBuilder(clk clock.Clock, synth Synthesizer) *Builder {
	if clk == nil {
		clk = clock.Real()
	}
	if synth == nil {
		synth = Curated{}
	}
	return &Builder{clock: clk, synth: synth, newID: NewID}
}

// NewID returns a report id of the form intel_<UTC timestamp>_<8 hex>.
func NewID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("intel_%s_%s", at.UTC().Format("20060102T150405Z"), suffix)
}

func (b *Builder) Build(alerts []alert.Alert, tf alert.Timeframe) *Report {
	now := b.clock.Now().UTC()

	r := &Report{
		ReportID:    b.newID(now),
		GeneratedAt: now,
		Period:      tf,
		TotalAlerts: len(alerts),
		Alerts:      alerts,
		CriticalAlerts: view(alerts, func(a alert.Alert) bool {
			return a.Severity == alert.Critical
		}),
		HighAlerts: view(alerts, func(a alert.Alert) bool {
			return a.Severity == alert.High
		}),
		EducationalOpportunities: view(alerts, alert.Alert.IsEducational),
	}

	s := b.synth.Synthesize(alerts)
	r.ThreatLandscape = ThreatLandscape{
		NewThreats:           orEmpty(s.Threats.NewThreats),
		TrendingRisks:        orEmpty(s.Threats.TrendingRisks),
		MitigationStrategies: orEmpty(s.Threats.MitigationStrategies),
	}
	r.MarketIntelligence = MarketIntelligence{
		EconomicFactors:   orEmpty(s.Market.EconomicFactors),
		RegulatoryUpdates: orEmpty(s.Market.RegulatoryUpdates),
		AdoptionTrends:    orEmpty(s.Market.AdoptionTrends),
	}
	r.EducationalInsights = EducationalInsights{
		NewResources:       orEmpty(s.Education.NewResources),
		CourseImprovements: orEmpty(s.Education.CourseImprovements),
		ContentGaps:        orEmpty(s.Education.ContentGaps),
	}

	r.Summary = summaryText(r)
	r.Recommendations = recommendations(r)
	return r
}

// Condense produces the summary stored alongside each report.
func Condense(r *Report) Summary {
	return Summary{
		LastUpdated:        r.GeneratedAt,
		TotalAlerts:        r.TotalAlerts,
		CriticalCount:      len(r.CriticalAlerts),
		HighCount:          len(r.HighAlerts),
		KeyRecommendations: orEmpty(head(r.Recommendations, 5)),
		TopThreats:         orEmpty(head(r.ThreatLandscape.NewThreats, 3)),
		EducationOpportunities: orEmpty(head(lo.Map(r.EducationalOpportunities, func(a alert.Alert, _ int) string {
			return a.Title
		}), 3)),
	}
}

// view filters alerts by keep and ranks the result by relevance, newest
// first among equals. The input is not modified.
func view(alerts []alert.Alert, keep func(alert.Alert) bool) []alert.Alert {
	out := lo.Filter(alerts, func(a alert.Alert, _ int) bool { return keep(a) })
	sortByRank(out)
	return out
}

func sortByRank(alerts []alert.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].RelevanceScore != alerts[j].RelevanceScore {
			return alerts[i].RelevanceScore > alerts[j].RelevanceScore
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
}

func summaryText(r *Report) string {
	if r.TotalAlerts == 0 {
		return fmt.Sprintf("No alerts found in the last %s. Sources returned nothing in the window or could not be reached.", r.Period)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d alerts in the last %s: %d critical, %d high.",
		r.TotalAlerts, r.Period, len(r.CriticalAlerts), len(r.HighAlerts))

	cats := categoryCounts(r.Alerts)
	if len(cats) > 2 {
		cats = cats[:2]
	}
	parts := lo.Map(cats, func(c categoryCount, _ int) string {
		return fmt.Sprintf("%s (%d)", c.category, c.count)
	})
	fmt.Fprintf(&sb, " Top categories: %s.", strings.Join(parts, ", "))

	if active := activeSources(r.Alerts); active != "" {
		fmt.Fprintf(&sb, " Most active sources: %s.", active)
	}
	return sb.String()
}

func recommendations(r *Report) []string {
	if r.TotalAlerts == 0 {
		return []string{}
	}
	var recs []string
	if n := len(r.CriticalAlerts); n > 0 {
		recs = append(recs, fmt.Sprintf("Review %d critical alert(s) and update affected course material immediately", n))
	}
	if n := len(r.HighAlerts); n > 0 {
		recs = append(recs, fmt.Sprintf("Assess %d high-severity alert(s) for inclusion in security lessons", n))
	}
	if n := len(r.EducationalOpportunities); n > 0 {
		recs = append(recs, fmt.Sprintf("Incorporate %d new educational resource(s) into the curriculum", n))
	}
	counts := lo.CountValuesBy(r.Alerts, func(a alert.Alert) source.Category { return a.Category })
	if n := counts[source.Regulatory]; n > 0 {
		recs = append(recs, fmt.Sprintf("Update regulatory content with %d recent development(s)", n))
	}
	if n := counts[source.Economics]; n > 0 {
		recs = append(recs, fmt.Sprintf("Refresh market context lessons using %d economic signal(s)", n))
	}
	if len(r.EducationalInsights.ContentGaps) > 0 {
		recs = append(recs, "Plan new material for: "+r.EducationalInsights.ContentGaps[0])
	}
	recs = append(recs, "Keep monitoring sources for follow-up coverage")
	return recs
}

type categoryCount struct {
	category source.Category
	count    int
}

// categoryCounts returns populated categories, busiest first. Ties keep
// the canonical category order.
func categoryCounts(alerts []alert.Alert) []categoryCount {
	counts := lo.CountValuesBy(alerts, func(a alert.Alert) source.Category { return a.Category })
	var out []categoryCount
	for _, c := range source.AllCategories() {
		if n := counts[c]; n > 0 {
			out = append(out, categoryCount{c, n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
