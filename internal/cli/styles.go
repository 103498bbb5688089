// Package cli holds the terminal styling shared by the voicebridge
// commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#1F6FEB")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
	goodColor    = lipgloss.Color("#00AA00")
	warnColor    = lipgloss.Color("#FFA500")
	hotColor     = lipgloss.Color("#D70000")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(hotColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	WarnValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warnColor)
)

// PrintVersion prints version information
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("voicebridge"))
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Fprintln(w)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
