// Package store persists reports as JSON documents on disk: one file per
// report plus a "latest summary" document that each save overwrites.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/clock"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
)

const (
	reportsDir  = "reports"
	latestFile  = "latest_summary.json"
	idTimestamp = "20060102T150405Z"
)

var (
	ErrNotFound  = errors.New("report not found")
	ErrInvalidID = errors.New("invalid report id")

	validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Latest is the result of reading the latest summary. When nothing has been
// saved yet Found is false and Message/SuggestedAction explain what to do.
type Latest struct {
	Found           bool            `json:"found"`
	Summary         *report.Summary `json:"summary,omitempty"`
	Message         string          `json:"message,omitempty"`
	SuggestedAction string          `json:"suggested_action,omitempty"`
}

// Entry describes one stored report.
type Entry struct {
	ID          string
	GeneratedAt time.Time
	Size        int64
}

type Store struct {
	dir   string
	clock clock.Clock
}

func New(dir string, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real()
	}
	return &Store{dir: dir, clock: clk}
}

func (s *Store) Dir() string { return s.dir }

// Save writes the full report under reports/ and replaces the latest
// summary. Directories are created on first use.
func (s *Store) Save(r *report.Report) error {
	if !validID.MatchString(r.ReportID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, r.ReportID)
	}
	if err := os.MkdirAll(filepath.Join(s.dir, reportsDir), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := writeJSON(s.reportPath(r.ReportID), r); err != nil {
		return fmt.Errorf("writing report %s: %w", r.ReportID, err)
	}
	if err := writeJSON(filepath.Join(s.dir, latestFile), report.Condense(r)); err != nil {
		return fmt.Errorf("writing latest summary: %w", err)
	}
	return nil
}

func (s *Store) LoadLatestSummary() (Latest, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return Latest{
			Found:           false,
			Message:         "No intelligence summary available yet.",
			SuggestedAction: "Run `intelwatch gather` to collect intelligence.",
		}, nil
	}
	if err != nil {
		return Latest{}, fmt.Errorf("reading latest summary: %w", err)
	}
	var sum report.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return Latest{}, fmt.Errorf("decoding latest summary: %w", err)
	}
	return Latest{Found: true, Summary: &sum}, nil
}

func (s *Store) LoadReport(id string) (*report.Report, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	data, err := os.ReadFile(s.reportPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", id, err)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns stored reports, newest first.
func (s *Store) ListReports() ([]Entry, error) {
	dirEntries, err := os.ReadDir(filepath.Join(s.dir, reportsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	var out []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		out = append(out, Entry{ID: id, GeneratedAt: generatedAt(id, info.ModTime()), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Prune deletes reports generated more than olderThan ago. The latest
// summary is left alone.
func (s *Store) Prune(olderThan time.Duration) (int, error) {
	entries, err := s.ListReports()
	if err != nil {
		return 0, err
	}
	cutoff := s.clock.Now().Add(-olderThan)
	deleted := 0
	for _, e := range entries {
		if !e.GeneratedAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(s.reportPath(e.ID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, fmt.Errorf("removing report %s: %w", e.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *Store) reportPath(id string) string {
	return filepath.Join(s.dir, reportsDir, id+".json")
}

// generatedAt reads the timestamp embedded in a report id, falling back to
// the file's modification time for ids in another format.
func generatedAt(id string, modTime time.Time) time.Time {
	parts := strings.Split(id, "_")
	if len(parts) == 3 && parts[0] == "intel" {
		if t, err := time.Parse(idTimestamp, parts[1]); err == nil {
			return t
		}
	}
	return modTime
}

// writeJSON replaces path atomically with the indented JSON encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
