package alert

import (
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// Severity ranks how urgent an alert is.
type Severity string

const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
	Info     Severity = "info"
)

// AllSeverities returns severities most-severe first.
func AllSeverities() []Severity {
	return []Severity{Critical, High, Medium, Low, Info}
}

// Rank is 0 for critical and grows as severity drops.
func (s Severity) Rank() int {
	for i, v := range AllSeverities() {
		if v == s {
			return i
		}
	}
	return len(AllSeverities())
}

// Alert is one normalized, classified item from an external feed.
type Alert struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          source.Category `json:"category"`
	Severity          Severity        `json:"severity"`
	Source            string          `json:"source"`
	URL               string          `json:"url"`
	Timestamp         time.Time       `json:"timestamp"`
	Tags              []string        `json:"tags"`
	RelevanceScore    int             `json:"relevance_score"`
	EducationalImpact string          `json:"educational_impact"`
	ActionItems       []string        `json:"action_items"`
}

func (a Alert) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsEducational reports whether the alert belongs in the educational view.
func (a Alert) IsEducational() bool {
	return a.Category == source.Education || a.HasTag("education")
}
