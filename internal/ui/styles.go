package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/bite-terminal/internal/models"
)

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red
	colorWarning = lipgloss.Color("#FFD93D") // Yellow
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Score band styles
	bandGoodStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	bandFairStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	bandPoorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	// Utility styles
	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorPrimary).
			Padding(0, 0, 0, 1)

	unselectedStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 2)

	sectionBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			MarginBottom(1)
)

// bandStyle returns the style used to colour a score band
func bandStyle(b models.ScoreBand) lipgloss.Style {
	switch b {
	case models.BandGood:
		return bandGoodStyle
	case models.BandFair:
		return bandFairStyle
	default:
		return bandPoorStyle
	}
}
