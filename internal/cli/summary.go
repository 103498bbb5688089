package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one key/value line of a summary block.
type Row struct {
	Key   string
	Value string
	// Warn highlights the value.
	Warn bool
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// RenderSummary writes a title followed by aligned key/value sections.
func RenderSummary(w io.Writer, title string, sections ...Section) {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(title))
	sb.WriteString("\n")

	width := 0
	for _, s := range sections {
		for _, r := range s.Rows {
			width = max(width, lipgloss.Width(r.Key))
		}
	}

	for _, s := range sections {
		if s.Title != "" {
			sb.WriteString(SectionStyle.Render(s.Title))
			sb.WriteString("\n")
		}
		for _, r := range s.Rows {
			key := r.Key + ":" + strings.Repeat(" ", width-lipgloss.Width(r.Key))
			value := ValueStyle.Render(r.Value)
			if r.Warn {
				value = WarnValueStyle.Render(r.Value)
			}
			sb.WriteString("  ")
			sb.WriteString(KeyStyle.Render(key))
			sb.WriteString(" ")
			sb.WriteString(value)
			sb.WriteString("\n")
		}
	}

	fmt.Fprint(w, sb.String())
}
