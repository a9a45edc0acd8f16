package alert

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the recency window a gather cycle is asked for.
type Timeframe string

const (
	LastHour    Timeframe = "1h"
	Last6Hours  Timeframe = "6h"
	Last24Hours Timeframe = "24h"
	Last7Days   Timeframe = "7d"
)

const DefaultFrame = Last24Hours

// MaxClockSkew is how far past now a publish time may lie and still count.
const MaxClockSkew = time.Hour

func AllTimeframes() []Timeframe {
	return []Timeframe{LastHour, Last6Hours, Last24Hours, Last7Days}
}

// ParseTimeframe accepts one of 1h, 6h, 24h, 7d. Empty input yields the default.
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultFrame, nil
	}
	for _, tf := range AllTimeframes() {
		if string(tf) == s {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe %q (valid: 1h, 6h, 24h, 7d)", s)
}

// Duration returns the window length. Unknown values fall back to 24h.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case LastHour:
		return time.Hour
	case Last6Hours:
		return 6 * time.Hour
	case Last7Days:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Contains reports whether t lies within the window ending at now. Times
// more than MaxClockSkew in the future are rejected as misdated.
func (tf Timeframe) Contains(now, t time.Time) bool {
	age := now.Sub(t)
	return age <= tf.Duration() && age >= -MaxClockSkew
}
