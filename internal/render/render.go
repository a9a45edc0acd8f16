// Package render formats reports, summaries and the source list for the
// terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

const maxAlertsPerView = 10

// Report renders a full report. now anchors the relative timestamps.
func Report(r *report.Report, now time.Time, width int) string {
	if width < 40 {
		width = 80
	}
	var lines []string

	lines = append(lines, titleStyle.Render(fmt.Sprintf("Intelligence report · last %s", r.Period)))
	lines = append(lines, metaStyle.Render(fmt.Sprintf("%s · generated %s", r.ReportID, r.GeneratedAt.Local().Format("Jan 2 15:04"))))
	lines = append(lines, summaryBoxStyle.Width(width-4).Render(bodyStyle.Render(r.Summary)))

	lines = append(lines, alertSection("Critical", r.CriticalAlerts, now, width)...)
	lines = append(lines, alertSection("High", r.HighAlerts, now, width)...)
	lines = append(lines, alertSection("Educational opportunities", r.EducationalOpportunities, now, width)...)

	lines = append(lines, listSection("New threats", r.ThreatLandscape.NewThreats)...)
	lines = append(lines, listSection("Trending risks", r.ThreatLandscape.TrendingRisks)...)
	lines = append(lines, listSection("Mitigations", r.ThreatLandscape.MitigationStrategies)...)
	lines = append(lines, listSection("Economic factors", r.MarketIntelligence.EconomicFactors)...)
	lines = append(lines, listSection("Regulatory updates", r.MarketIntelligence.RegulatoryUpdates)...)
	lines = append(lines, listSection("Adoption trends", r.MarketIntelligence.AdoptionTrends)...)
	lines = append(lines, listSection("New resources", r.EducationalInsights.NewResources)...)
	lines = append(lines, listSection("Course improvements", r.EducationalInsights.CourseImprovements)...)
	lines = append(lines, listSection("Content gaps", r.EducationalInsights.ContentGaps)...)
	lines = append(lines, numberedSection("Recommendations", r.Recommendations)...)

	if len(r.Sources) > 0 {
		lines = append(lines, SourceStatuses(r.Sources))
	}
	return strings.Join(lines, "\n") + "\n"
}

// SourceStatuses renders the per-source outcome of a cycle.
func SourceStatuses(statuses []report.SourceStatus) string {
	lines := []string{sectionStyle.Render("Sources")}
	for _, s := range statuses {
		var state string
		switch {
		case s.Err != "":
			state = errorStyle.Render("failed: " + truncateStr(s.Err, 60))
		case s.Cached:
			state = metaStyle.Render(fmt.Sprintf("%d alert(s), cached", s.Alerts))
		default:
			state = metaStyle.Render(fmt.Sprintf("%d alert(s)", s.Alerts))
		}
		lines = append(lines, "  "+sourceStyle.Render(s.Name)+" "+state)
	}
	return strings.Join(lines, "\n")
}

// Summary renders the latest summary or the placeholder.
func Summary(l store.Latest, now time.Time) string {
	if !l.Found || l.Summary == nil {
		return bodyStyle.Render(l.Message) + "\n" + metaStyle.Render(l.SuggestedAction) + "\n"
	}
	s := l.Summary
	var lines []string
	lines = append(lines, titleStyle.Render("Latest intelligence summary"))
	lines = append(lines, metaStyle.Render("updated "+relativeTime(s.LastUpdated, now)))
	lines = append(lines, bodyStyle.Render(fmt.Sprintf("%d alerts · %s · %s",
		s.TotalAlerts,
		severityStyle(alert.Critical).Render(fmt.Sprintf("%d critical", s.CriticalCount)),
		severityStyle(alert.High).Render(fmt.Sprintf("%d high", s.HighCount)),
	)))
	lines = append(lines, numberedSection("Key recommendations", s.KeyRecommendations)...)
	lines = append(lines, listSection("Top threats", s.TopThreats)...)
	lines = append(lines, listSection("Education opportunities", s.EducationOpportunities)...)
	return strings.Join(lines, "\n") + "\n"
}

// Sources renders the registry as an aligned table.
func Sources(sources []source.Source) string {
	if len(sources) == 0 {
		return metaStyle.Render("No sources enabled.") + "\n"
	}
	nameWidth := 0
	for _, s := range sources {
		if n := len([]rune(s.Name)); n > nameWidth {
			nameWidth = n
		}
	}
	var lines []string
	for _, s := range sources {
		name := s.Name + strings.Repeat(" ", nameWidth-len([]rune(s.Name)))
		lines = append(lines, fmt.Sprintf("%s  %-7s  %-10s  %-6s  %s",
			sourceStyle.Render(name), s.Kind, s.Category, s.Priority, metaStyle.Render(s.URL)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func alertSection(title string, alerts []alert.Alert, now time.Time, width int) []string {
	if len(alerts) == 0 {
		return nil
	}
	lines := []string{sectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(alerts)))}
	for i, a := range alerts {
		if i == maxAlertsPerView {
			lines = append(lines, metaStyle.Render(fmt.Sprintf("  … %d more", len(alerts)-maxAlertsPerView)))
			break
		}
		lines = append(lines, renderAlert(a, now, width))
	}
	return lines
}

func renderAlert(a alert.Alert, now time.Time, width int) string {
	badge := severityStyle(a.Severity).Render(string(a.Severity))
	title := bodyStyle.Render(truncateStr(a.Title, width-len(a.Severity)-8))
	meta := "    " + sourceStyle.Render(a.Source) + " " +
		metaStyle.Render(fmt.Sprintf("· %s · relevance %d", relativeTime(a.Timestamp, now), a.RelevanceScore))
	out := "  " + badge + " " + title + "\n" + meta
	if a.URL != "" {
		out += "\n    " + metaStyle.Render(a.URL)
	}
	return out
}

func listSection(title string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	lines := []string{sectionStyle.Render(title)}
	for _, it := range items {
		lines = append(lines, bodyStyle.Render("  • "+it))
	}
	return lines
}

func numberedSection(title string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	lines := []string{sectionStyle.Render(title)}
	for i, it := range items {
		lines = append(lines, bodyStyle.Render(fmt.Sprintf("  %d. %s", i+1, it)))
	}
	return lines
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
