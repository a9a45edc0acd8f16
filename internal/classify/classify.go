package classify

import (
	"strings"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
)

// topicKeywords gate which items are considered on-topic at all.
var topicKeywords = []string{
	"bitcoin", "btc", "blockchain", "wallet", "mining", "lightning", "satoshi", "crypto",
}

var (
	criticalKeywords    = []string{"vulnerability", "exploit", "hack"}
	highKeywords        = []string{"security", "threat", "risk"}
	learningKeywords    = []string{"learn", "tutorial", "course"}
	interactiveKeywords = []string{"interactive", "hands-on"}
)

// tagVocabulary is scanned as substrings of the combined text.
var tagVocabulary = []string{
	"security", "education", "regulatory", "mining", "wallet", "lightning", "interactive", "threat",
}

// OnTopic reports whether lowered text mentions the domain at all.
func OnTopic(text string) bool {
	return containsAny(text, topicKeywords)
}

// Severity applies the first matching rule: keyword rules before category rules.
func Severity(text string, cat source.Category) alert.Severity {
	switch {
	case containsAny(text, criticalKeywords):
		return alert.Critical
	case containsAny(text, highKeywords):
		return alert.High
	case cat == source.Regulatory || cat == source.Economics:
		return alert.Medium
	case cat == source.Education:
		return alert.Info
	default:
		return alert.Low
	}
}

// Relevance scores topical importance on a 0–100 scale.
func Relevance(text string, cat source.Category) int {
	score := 50
	if strings.Contains(text, "bitcoin") {
		score += 20
	}
	if strings.Contains(text, "btc") {
		score += 15
	}
	switch cat {
	case source.Education:
		score += 15
	case source.Security:
		score += 10
	}
	if containsAny(text, learningKeywords) {
		score += 10
	}
	if containsAny(text, interactiveKeywords) {
		score += 10
	}
	return clamp(score, 0, 100)
}

// Tags returns vocabulary terms found in text, in vocabulary order. The
// source category counts as a match when it is itself a vocabulary term.
func Tags(text string, cat source.Category) []string {
	tags := []string{}
	for _, t := range tagVocabulary {
		if strings.Contains(text, t) || string(cat) == t {
			tags = append(tags, t)
		}
	}
	return tags
}

type impactRule struct {
	keywords   []string
	categories []source.Category
	text       string
}

func (r impactRule) matches(text string, cat source.Category) bool {
	for _, c := range r.categories {
		if c == cat {
			return true
		}
	}
	return containsAny(text, r.keywords)
}

var impactRules = []impactRule{
	{keywords: criticalKeywords, text: "High: live security incident worth covering in wallet safety lessons"},
	{keywords: learningKeywords, categories: []source.Category{source.Education}, text: "High: new learning material to evaluate for the curriculum"},
	{categories: []source.Category{source.Regulatory}, text: "Medium: regulatory change may affect compliance lessons"},
	{keywords: highKeywords, categories: []source.Category{source.Security}, text: "Medium: reinforces security best-practice content"},
	{keywords: []string{"lightning", "mining", "wallet"}, text: "Medium: technical development relevant to hands-on modules"},
	{categories: []source.Category{source.Economics}, text: "Low: market context for economics modules"},
}

const defaultImpact = "Low: general awareness for learners"

// EducationalImpact annotates how an alert bears on educational content.
func EducationalImpact(text string, cat source.Category) string {
	for _, r := range impactRules {
		if r.matches(text, cat) {
			return r.text
		}
	}
	return defaultImpact
}

// ActionItems suggests ordered next steps for an alert.
func ActionItems(text string, cat source.Category, sev alert.Severity, tags []string) []string {
	var items []string
	add := func(s ...string) {
		for _, v := range s {
			if !contains(items, v) {
				items = append(items, v)
			}
		}
	}

	if sev == alert.Critical {
		add("Alert learners who use affected software")
	}
	if cat == source.Security || sev == alert.Critical || sev == alert.High {
		add("Review security implications", "Update security warnings")
	}
	if cat == source.Education || containsAny(text, learningKeywords) {
		add("Evaluate resource for curriculum inclusion")
	}
	if containsAny(text, interactiveKeywords) {
		add("Prototype an interactive exercise on this topic")
	}
	if cat == source.Regulatory {
		add("Update regulatory compliance notes")
	}
	if cat == source.Economics {
		add("Refresh market context examples")
	}
	if contains(tags, "wallet") {
		add("Check wallet setup guides are still accurate")
	}
	if contains(tags, "lightning") {
		add("Review the Lightning Network module")
	}
	if contains(tags, "mining") {
		add("Review the mining module")
	}
	if len(items) == 0 {
		add("Monitor for follow-up coverage")
	}
	return items
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
