// Package display renders command results to the terminal: full paged
// tables for direct invocations, condensed one-liners for agent tool calls,
// and the routing rules that pick between them.
package display

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// IsActiveRow reports whether a row holds the session's active value. Pure
// so highlighting is decided identically everywhere a table is drawn.
func IsActiveRow(value, active string) bool {
	return active != "" && value == active
}
