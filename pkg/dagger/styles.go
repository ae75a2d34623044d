package dagger

import "github.com/charmbracelet/lipgloss"

var (
	colorMuted  = lipgloss.Color("#656d76")
	colorError  = lipgloss.Color("#cf222e")
	colorAccent = lipgloss.Color("#0969da")
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	dimStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)
