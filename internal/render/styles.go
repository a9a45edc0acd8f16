package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Sovereigndwp/mcp-agent-kit-sub000/internal/alert"
)

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorOrange    = lipgloss.AdaptiveColor{Light: "#D9730D", Dark: "#F7931A"}
	colorYellow    = lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#E5C07B"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorOrange).
			MarginTop(1)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	sourceStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	severityStyles = map[alert.Severity]lipgloss.Style{
		alert.Critical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#D7263D")).Padding(0, 1),
		alert.High:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		alert.Medium:   lipgloss.NewStyle().Foreground(colorYellow),
		alert.Low:      lipgloss.NewStyle().Foreground(colorSecondary),
		alert.Info:     lipgloss.NewStyle().Foreground(colorDim),
	}
)

func severityStyle(s alert.Severity) lipgloss.Style {
	if st, ok := severityStyles[s]; ok {
		return st
	}
	return bodyStyle
}
