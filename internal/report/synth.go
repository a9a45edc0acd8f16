package report

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// Sections are the synthesized parts of a report.
type Sections struct {
	Threats   ThreatLandscape
	Market    MarketIntelligence
	Education EducationalInsights
}

// Synthesizer derives the narrative sections from a cycle's alerts.
// Implementations must be deterministic for a given input.
type Synthesizer interface {
	Synthesize(alerts []alert.Alert) Sections
}

const maxListed = 5

// DataDriven builds every statement from the observed alerts only.
type DataDriven struct{}

func (DataDriven) Synthesize(alerts []alert.Alert) Sections {
	ranked := make([]alert.Alert, len(alerts))
	copy(ranked, alerts)
	sortByRank(ranked)

	byCat := lo.GroupBy(ranked, func(a alert.Alert) source.Category { return a.Category })
	security := byCat[source.Security]
	educational := lo.Filter(ranked, func(a alert.Alert, _ int) bool { return a.IsEducational() })
	risky := lo.Filter(ranked, func(a alert.Alert, _ int) bool {
		return a.Category == source.Security || a.Severity.Rank() <= alert.High.Rank()
	})

	var s Sections

	s.Threats.NewThreats = headlines(security)
	if n := lo.CountBy(alerts, func(a alert.Alert) bool { return a.Severity == alert.Critical }); n > 0 {
		s.Threats.TrendingRisks = append(s.Threats.TrendingRisks, fmt.Sprintf("%d critical alert(s) this period", n))
	}
	for _, term := range trending(risky, alerts) {
		s.Threats.TrendingRisks = append(s.Threats.TrendingRisks, fmt.Sprintf("Recurring risk topic: %s", term))
	}
	s.Threats.MitigationStrategies = head(lo.Uniq(lo.FlatMap(security, func(a alert.Alert, _ int) []string {
		return a.ActionItems
	})), maxListed)

	s.Market.EconomicFactors = headlines(byCat[source.Economics])
	s.Market.RegulatoryUpdates = headlines(byCat[source.Regulatory])
	for _, tag := range []string{"lightning", "mining", "wallet"} {
		if n := lo.CountBy(alerts, func(a alert.Alert) bool { return a.HasTag(tag) }); n > 0 {
			s.Market.AdoptionTrends = append(s.Market.AdoptionTrends, fmt.Sprintf("%s activity in %d alert(s)", tag, n))
		}
	}

	s.Education.NewResources = headlines(educational)
	s.Education.CourseImprovements = commonImpacts(ranked)
	s.Education.ContentGaps = contentGaps(ranked, educational)
	return s
}

func headlines(alerts []alert.Alert) []string {
	return head(lo.Map(alerts, func(a alert.Alert, _ int) string {
		return fmt.Sprintf("%s (%s)", a.Title, a.Source)
	}), maxListed)
}

// commonImpacts lists educational impact notes, most frequent first.
func commonImpacts(alerts []alert.Alert) []string {
	counts := map[string]int{}
	var order []string
	for _, a := range alerts {
		if a.EducationalImpact == "" {
			continue
		}
		if counts[a.EducationalImpact] == 0 {
			order = append(order, a.EducationalImpact)
		}
		counts[a.EducationalImpact]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return head(order, maxListed)
}

// contentGaps names tags seen in the news that no educational alert covers.
func contentGaps(all, educational []alert.Alert) []string {
	covered := map[string]bool{}
	for _, a := range educational {
		for _, t := range a.Tags {
			covered[t] = true
		}
	}
	counts := map[string]int{}
	var order []string
	for _, a := range all {
		if a.IsEducational() {
			continue
		}
		for _, t := range a.Tags {
			if covered[t] || t == "education" {
				continue
			}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return head(lo.Map(order, func(t string, _ int) string {
		return fmt.Sprintf("%s topics (%d alert(s), no matching learning material)", t, counts[t])
	}), maxListed)
}

// Curated extends DataDriven with editorial statements chosen by the mix of
// categories and tags present.
type Curated struct {
	Base Synthesizer
}

type curatedRule struct {
	when func(mix) bool
	add  func(*Sections)
}

type mix struct {
	categories map[source.Category]int
	tags       map[string]int
	critical   int
}

var curatedRules = []curatedRule{
	{
		when: func(m mix) bool { return m.categories[source.Security] > 0 },
		add: func(s *Sections) {
			s.Threats.MitigationStrategies = append(s.Threats.MitigationStrategies,
				"Teach seed phrase backup and verification",
				"Encourage hardware wallets for long-term storage")
		},
	},
	{
		when: func(m mix) bool { return m.critical > 0 },
		add: func(s *Sections) {
			s.Threats.TrendingRisks = append(s.Threats.TrendingRisks,
				"Phishing campaigns often follow public vulnerability disclosures")
		},
	},
	{
		when: func(m mix) bool { return m.tags["wallet"] > 0 },
		add: func(s *Sections) {
			s.Threats.MitigationStrategies = append(s.Threats.MitigationStrategies,
				"Verify wallet downloads against published signatures")
		},
	},
	{
		when: func(m mix) bool { return m.categories[source.Regulatory] > 0 },
		add: func(s *Sections) {
			s.Market.RegulatoryUpdates = append(s.Market.RegulatoryUpdates,
				"Track compliance implications for custodial services")
		},
	},
	{
		when: func(m mix) bool { return m.categories[source.Economics] > 0 },
		add: func(s *Sections) {
			s.Market.EconomicFactors = append(s.Market.EconomicFactors,
				"Relate monetary policy news to bitcoin's fixed supply schedule")
		},
	},
	{
		when: func(m mix) bool { return m.tags["lightning"] > 0 },
		add: func(s *Sections) {
			s.Market.AdoptionTrends = append(s.Market.AdoptionTrends,
				"Lightning payments keep drawing developer attention")
		},
	},
	{
		when: func(m mix) bool { return m.categories[source.Education] > 0 },
		add: func(s *Sections) {
			s.Education.CourseImprovements = append(s.Education.CourseImprovements,
				"Pair new resources with a short hands-on exercise")
		},
	},
	{
		when: func(m mix) bool { return m.categories[source.Education] == 0 && len(m.categories) > 0 },
		add: func(s *Sections) {
			s.Education.ContentGaps = append(s.Education.ContentGaps,
				"Few fresh learning resources this period; consider original material")
		},
	},
}

func (c Curated) Synthesize(alerts []alert.Alert) Sections {
	base := c.Base
	if base == nil {
		base = DataDriven{}
	}
	s := base.Synthesize(alerts)

	m := mix{
		categories: lo.CountValuesBy(alerts, func(a alert.Alert) source.Category { return a.Category }),
		tags:       lo.CountValues(lo.FlatMap(alerts, func(a alert.Alert, _ int) []string { return a.Tags })),
		critical:   lo.CountBy(alerts, func(a alert.Alert) bool { return a.Severity == alert.Critical }),
	}
	for _, r := range curatedRules {
		if r.when(m) {
			r.add(&s)
		}
	}

	s.Threats.MitigationStrategies = lo.Uniq(s.Threats.MitigationStrategies)
	return s
}
