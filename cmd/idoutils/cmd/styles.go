package cmd

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	sectionStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor).Width(16)
	okStyle      = lipgloss.NewStyle().Foreground(successColor)
	warnStyle    = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

func row(label, value string) string {
	return labelStyle.Render(label) + " " + value
}
