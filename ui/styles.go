package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Accent   = lipgloss.Color("#00D09C")
	Danger   = lipgloss.Color("#FF6B6B")
	Muted    = lipgloss.Color("#8A8F98")
	Faint    = lipgloss.Color("#3A3F4B")
	Surface  = lipgloss.Color("#161A23")
	Text     = lipgloss.Color("#FAFAFA")
	Spinning = lipgloss.Color("#FFA500")

	// Main styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent).
			Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Muted).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(Faint)

	TableRowStyle = lipgloss.NewStyle().
			Foreground(Text)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(Text).
				Background(Faint).
				Bold(true)

	// Price glow, shown for a moment after a refresh moves the price
	GlowUpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0F14")).
			Background(Accent)

	GlowDownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0B0F14")).
			Background(Danger)

	PositiveStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	NegativeStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	SymbolStyle = lipgloss.NewStyle().
			Foreground(Muted)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(Spinning).
			Bold(true)

	SearchStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Faint).
			Padding(0, 1)

	SearchFocusedStyle = SearchStyle.Copy().
				BorderForeground(Accent)

	// Panels
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Background(Surface).
			Padding(1, 3)

	ChartPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Faint).
			Padding(0, 1).
			MarginTop(1)

	ChartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)

// ChangeStyle colors a 24h change: non-negative is positive.
func ChangeStyle(change float64) lipgloss.Style {
	if change >= 0 {
		return PositiveStyle
	}
	return NegativeStyle
}

// StyledPercent renders Percent with its sign color.
func StyledPercent(change float64) string {
	return ChangeStyle(change).Render(Percent(change))
}
