package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/report"
	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/store"
)

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags clears flag state, which cobra keeps between Execute calls.
func resetFlags() {
	flagConfig, flagDataDir, flagJSON, flagSummaryJSON, flagAllSources = "", "", false, false, false
	flagReportJSON, flagReportList, flagOpen, flagCheckUpdate = false, false, 0, false
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `cache:
  backend: memory
sources:
  - name: Local Advisories
    kind: feed
    category: security
    url: https://advisories.example/feed.xml
    enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"gather", "summary", "sources", "watch", "prune", "stats", "version", "report"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "intelwatch 1.2.3") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestSourcesCommand(t *testing.T) {
	out, err := runCmd(t, "sources", "--config", writeConfig(t))
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if !strings.Contains(out, "Local Advisories") {
		t.Errorf("user source missing from output:\n%s", out)
	}
	if !strings.Contains(out, "Bitcoin Optech") {
		t.Errorf("built-in sources should be merged in:\n%s", out)
	}
}

func TestSummaryCommandPlaceholder(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	out, err := runCmd(t, "summary", "--json", "--config", writeConfig(t), "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var got struct {
		Found           bool   `json:"found"`
		SuggestedAction string `json:"suggested_action"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if got.Found {
		t.Error("expected no summary in a fresh data dir")
	}
	if got.SuggestedAction == "" {
		t.Error("expected a suggested action")
	}
}

func TestReportCommand(t *testing.T) {
	cfgPath := writeConfig(t)
	dataDir := filepath.Join(t.TempDir(), "data")

	if _, err := runCmd(t, "report", "--config", cfgPath, "--data-dir", dataDir); err == nil {
		t.Fatal("expected an error with no stored reports")
	}

	r := report.NewBuilder(nil, nil).Build([]alert.Alert{{
		ID:        "a1",
		Title:     "Wallet library patched",
		Source:    "Local Advisories",
		Category:  "security",
		Severity:  alert.Critical,
		Timestamp: time.Now().Add(-time.Hour),
	}}, alert.Last24Hours)
	if err := store.New(dataDir, nil).Save(r); err != nil {
		t.Fatalf("saving report: %v", err)
	}

	out, err := runCmd(t, "report", "--list", "--config", cfgPath, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("report --list: %v", err)
	}
	if !strings.Contains(out, r.ReportID) {
		t.Errorf("list should include %s:\n%s", r.ReportID, out)
	}

	out, err = runCmd(t, "report", r.ReportID, "--json", "--config", cfgPath, "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("report --json: %v", err)
	}
	var got struct {
		ID          string `json:"report_id"`
		TotalAlerts int    `json:"total_alerts"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output %q: %v", out, err)
	}
	if got.ID != r.ReportID || got.TotalAlerts != 1 {
		t.Errorf("unexpected report %+v", got)
	}

	if _, err := runCmd(t, "report", r.ReportID, "--open", "2", "--config", cfgPath, "--data-dir", dataDir); err == nil {
		t.Error("expected an error opening a missing critical alert")
	}
}

func TestTimeframeFlag(t *testing.T) {
	tf, err := timeframeFlag("", alert.Last6Hours)
	if err != nil || tf != alert.Last6Hours {
		t.Errorf("expected fallback 6h, got %q, %v", tf, err)
	}
	tf, err = timeframeFlag("7d", alert.Last6Hours)
	if err != nil || tf != alert.Last7Days {
		t.Errorf("expected 7d, got %q, %v", tf, err)
	}
	if _, err := timeframeFlag("3h", alert.Last6Hours); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * 24 * time.Hour, "30d"},
		{36 * time.Hour, "1d"},
		{5 * time.Hour, "5h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
