package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})

	paragraphStyle = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2)
)

// keyword renders a highlighted word in help output.
func keyword(s string) string {
	if !isTerminal() {
		return s
	}
	return keywordStyle.Render(s)
}

// paragraph wraps and indents help text.
func paragraph(s string) string {
	return paragraphStyle.Render(s)
}

func checkmark() string {
	if !isTerminal() {
		return "✔"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✔")
}

func crossmark() string {
	if !isTerminal() {
		return "✘"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✘")
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
