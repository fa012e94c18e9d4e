package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Brand colors
	Primary   = lipgloss.Color("#7D56F4") // Purple
	Secondary = lipgloss.Color("#00D4AA") // Cyan/Teal

	// Risk level colors
	High   = lipgloss.Color("#FF3838") // Red
	Medium = lipgloss.Color("#FFD93D") // Yellow
	Low    = lipgloss.Color("#6BCB77") // Green
	None   = lipgloss.Color("#6B7280") // Gray

	// Status colors
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Errored = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Errored).
			Bold(true)
)

// RiskStyle returns the style for a per-URL risk level.
func RiskStyle(level string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch level {
	case "HIGH":
		return base.Foreground(lipgloss.Color("#FFFFFF")).Background(High)
	case "MEDIUM":
		return base.Foreground(lipgloss.Color("#000000")).Background(Medium)
	case "LOW":
		return base.Foreground(lipgloss.Color("#000000")).Background(Low)
	default:
		return base.Foreground(None)
	}
}

// SeverityStyle returns the style for a per-finding severity.
func SeverityStyle(severity string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch severity {
	case "HIGH":
		return base.Foreground(High)
	case "MEDIUM":
		return base.Foreground(Medium)
	case "LOW":
		return base.Foreground(Low)
	default:
		return base.Foreground(Muted)
	}
}
