package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    lipgloss.Style
	successStyle  lipgloss.Style
	pendingStyle  lipgloss.Style
	accentStyle   lipgloss.Style
	mutedStyle    lipgloss.Style
	errorStyle    lipgloss.Style
	newStyle      lipgloss.Style
	selectedStyle lipgloss.Style
	doneStyle     lipgloss.Style
	helpStyle     lipgloss.Style
	borderColor   lipgloss.Color

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func init() { applyTheme("classic") }

// applyTheme mirrors the `ls` themes: neon swaps the palette, mono drops color.
func applyTheme(name string) {
	titleStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	newStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	helpStyle = lipgloss.NewStyle().Faint(true)
	borderColor = lipgloss.Color("8")
	boxChecked, boxUnchecked = "☑", "☐"

	switch strings.ToLower(name) {
	case "neon":
		titleStyle = titleStyle.Foreground(lipgloss.Color("13"))
		accentStyle = accentStyle.Foreground(lipgloss.Color("14"))
		pendingStyle = pendingStyle.Foreground(lipgloss.Color("11"))
		borderColor = lipgloss.Color("13")
		boxChecked, boxUnchecked = "◼", "◻"
	case "mono":
		plain := lipgloss.NewStyle()
		titleStyle, successStyle, pendingStyle, accentStyle = plain.Bold(true), plain, plain, plain
		mutedStyle, errorStyle, newStyle, helpStyle = plain, plain, plain, plain
		selectedStyle, doneStyle = plain.Reverse(true), plain
		borderColor = lipgloss.Color("")
		boxChecked, boxUnchecked = "[x]", "[ ]"
	}
}

func panelString(inner string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(inner)
}
