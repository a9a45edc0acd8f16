package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
)

// activeSources names the three sources with the most alerts.
func activeSources(alerts []alert.Alert) string {
	counts := map[string]int{}
	var order []string
	for _, a := range alerts {
		if counts[a.Source] == 0 {
			order = append(order, a.Source)
		}
		counts[a.Source]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	limit := 3
	if len(order) < limit {
		limit = len(order)
	}

	parts := make([]string, limit)
	for i := 0; i < limit; i++ {
		parts[i] = fmt.Sprintf("%s (%d)", order[i], counts[order[i]])
	}
	return strings.Join(parts, ", ")
}

// trending extracts the top title keywords of subset, weighted by TF-IDF
// against the whole population. Terms must appear at least twice.
func trending(subset, population []alert.Alert) []string {
	df := map[string]int{}
	for _, a := range population {
		seen := map[string]bool{}
		for _, w := range tokenize(a.Title) {
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	tf := map[string]int{}
	for _, a := range subset {
		for _, w := range tokenize(a.Title) {
			tf[w]++
		}
	}

	totalDocs := len(population)
	if totalDocs == 0 {
		totalDocs = 1
	}

	type scored struct {
		term  string
		score float64
	}
	var terms []scored
	for term, freq := range tf {
		if freq < 2 {
			continue
		}
		docFreq := df[term]
		if docFreq == 0 {
			docFreq = 1
		}
		// +1 keeps terms present in every document from scoring zero.
		idf := math.Log(float64(totalDocs)/float64(docFreq)) + 1
		terms = append(terms, scored{term, float64(freq) * idf})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].score != terms[j].score {
			return terms[i].score > terms[j].score
		}
		return terms[i].term < terms[j].term
	})

	limit := 3
	if len(terms) < limit {
		limit = len(terms)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = terms[i].term
	}
	return out
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "is": true, "it": true, "its": true,
	"this": true, "that": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "not": true, "no": true, "nor": true,
	"how": true, "what": true, "when": true, "where": true, "who": true, "which": true,
	"why": true, "all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true, "than": true,
	"too": true, "very": true, "just": true, "about": true, "into": true, "over": true,
	"after": true, "before": true, "between": true, "under": true, "above": true,
	"out": true, "up": true, "down": true, "off": true, "our": true, "your": true,
	"we": true, "you": true, "they": true, "them": true, "their": true, "new": true,
	"use": true, "using": true, "used": true, "bitcoin": true,
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) < 4 {
			continue
		}
		if stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
