package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

type AppTheme struct {
	Primary    string
	Secondary  string
	Accent     string
	Text       string
	Subtle     string
	Error      string
	Warning    string
	Success    string
	Background string
	Surface    string
}

func DefaultTheme() AppTheme {
	return AppTheme{
		Primary:    "#7dd3fc",
		Secondary:  "#1e3a5f",
		Accent:     "#e0f2fe",
		Text:       "#e5e7eb",
		Subtle:     "#9ca3af",
		Error:      "#fca5a5",
		Warning:    "#fcd34d",
		Success:    "#86efac",
		Background: "#0f172a",
		Surface:    "#1e293b",
	}
}

func NewStyles(theme AppTheme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)).
			Bold(true).
			MarginLeft(1).
			MarginBottom(1),

		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Text)),

		Bold: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Text)).
			Bold(true),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Subtle)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Error)),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Warning)),

		Key: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Accent)).
			Bold(true),

		SpinnerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Primary)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Success)).
			Bold(true),
	}
}

type Styles struct {
	Title        lipgloss.Style
	Normal       lipgloss.Style
	Bold         lipgloss.Style
	Subtle       lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Key          lipgloss.Style
	SpinnerStyle lipgloss.Style
	Success      lipgloss.Style
}

func NewThemedProgress(theme AppTheme, width int) progress.Model {
	prog := progress.New(
		progress.WithGradient(theme.Secondary, theme.Primary),
	)

	prog.Width = width
	prog.ShowPercentage = true
	prog.PercentFormat = "%.0f%%"
	prog.PercentageStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Text)).
		Bold(true)

	return prog
}