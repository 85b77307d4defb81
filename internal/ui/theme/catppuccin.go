// Package theme holds the Catppuccin Mocha palette the reader is drawn in.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Yellow   = lipgloss.Color("#f9e2af")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green)
	Score = lipgloss.NewStyle().Foreground(Yellow).Bold(true)

	// Bar is the reader's header and footer chrome.
	Bar = lipgloss.NewStyle().Background(Surface0).Foreground(Text).Padding(0, 1)

	Page = lipgloss.NewStyle().
		Background(Mantle).
		Foreground(Text).
		Padding(0, 2)

	ErrorPanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Text).
			Padding(1, 3)

	ErrorTitle = lipgloss.NewStyle().Foreground(Red).Bold(true)
)
