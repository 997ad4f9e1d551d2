package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FFF87"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F"))
	Blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#87D7FF"))
	Magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#D787FF"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	Info    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87D7FF"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F87FF")).
			Padding(0, 1)
)
