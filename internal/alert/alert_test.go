package alert

import (
	"testing"
	"time"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRankOrder(t *testing.T) {
	prev := -1
	for _, s := range AllSeverities() {
		assert.Greater(t, s.Rank(), prev, "severity %s out of order", s)
		prev = s.Rank()
	}
	assert.Equal(t, 0, Critical.Rank())
	assert.Equal(t, len(AllSeverities()), Severity("bogus").Rank())
}

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		input string
		want  Timeframe
		err   bool
	}{
		{"1h", LastHour, false},
		{"6H", Last6Hours, false},
		{" 24h ", Last24Hours, false},
		{"7d", Last7Days, false},
		{"", Last24Hours, false},
		{"30d", "", true},
		{"2h", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTimeframe(tt.input)
		if tt.err {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestTimeframeDuration(t *testing.T) {
	assert.Equal(t, time.Hour, LastHour.Duration())
	assert.Equal(t, 6*time.Hour, Last6Hours.Duration())
	assert.Equal(t, 24*time.Hour, Last24Hours.Duration())
	assert.Equal(t, 7*24*time.Hour, Last7Days.Duration())
}

func TestTimeframeContains(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, Last24Hours.Contains(now, now.Add(-24*time.Hour)))
	assert.False(t, Last24Hours.Contains(now, now.Add(-24*time.Hour-time.Second)))
	assert.False(t, Last24Hours.Contains(now, now.Add(-10*24*time.Hour)))
	assert.True(t, LastHour.Contains(now, now.Add(5*time.Minute)))
	assert.True(t, Last7Days.Contains(now, now.Add(MaxClockSkew)))
	assert.False(t, Last7Days.Contains(now, now.Add(MaxClockSkew+time.Second)))
	assert.False(t, Last24Hours.Contains(now, now.AddDate(1, 0, 0)))
}

func TestIsEducational(t *testing.T) {
	assert.True(t, Alert{Category: source.Education}.IsEducational())
	assert.True(t, Alert{Category: source.News, Tags: []string{"education"}}.IsEducational())
	assert.False(t, Alert{Category: source.Security, Tags: []string{"wallet"}}.IsEducational())
}
