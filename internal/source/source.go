package source

import (
	"fmt"
	"strings"
)

// Kind is the transport used to retrieve a source.
type Kind string

const (
	KindFeed    Kind = "feed"    // RSS / Atom syndication feed
	KindAPI     Kind = "api"     // structured JSON API
	KindScrape  Kind = "scrape"  // HTML page scrape
	KindCurated Kind = "curated" // hand-picked site, scraped like a page
)

// Category is the topical area a source covers.
type Category string

const (
	News       Category = "news"
	Security   Category = "security"
	Economics  Category = "economics"
	Education  Category = "education"
	Regulatory Category = "regulatory"
	Technical  Category = "technical"
)

// AllCategories returns all valid categories in canonical order.
func AllCategories() []Category {
	return []Category{News, Security, Economics, Education, Regulatory, Technical}
}

// Priority is informational ordering for operators.
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

// Source describes one external feed. Sources are configuration and are
// never mutated after the registry is built.
type Source struct {
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Kind          Kind     `yaml:"kind"`
	Category      Category `yaml:"category"`
	Priority      Priority `yaml:"priority"`
	UpdateCadence string   `yaml:"update_cadence,omitempty"`
	Enabled       bool     `yaml:"enabled"`
}

func ValidKind(k Kind) bool {
	switch k {
	case KindFeed, KindAPI, KindScrape, KindCurated:
		return true
	}
	return false
}

func ValidCategory(c Category) bool {
	for _, v := range AllCategories() {
		if v == c {
			return true
		}
	}
	return false
}

func ValidPriority(p Priority) bool {
	switch p {
	case High, Medium, Low:
		return true
	}
	return false
}

// Registry is the immutable catalog of sources a gather cycle polls.
type Registry struct {
	sources []Source
}

// NewRegistry builds a registry from sources, preserving their order.
func NewRegistry(sources []Source) (*Registry, error) {
	seen := make(map[string]bool, len(sources))
	out := make([]Source, 0, len(sources))
	for i, s := range sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("source %d: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("source %q: duplicate name", name)
		}
		seen[name] = true
		out = append(out, s)
	}
	return &Registry{sources: out}, nil
}

// List returns the sources in registry order. The slice is a copy.
func (r *Registry) List() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

func (r *Registry) Len() int { return len(r.sources) }
