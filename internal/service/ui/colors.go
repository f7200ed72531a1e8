package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (cyan) which reads well on light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle uses ANSI 2 (green) for usage lines and arguments.
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle uses ANSI 8 (gray) so descriptions stay visually secondary.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle uses ANSI 3 (yellow) for flags.
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
