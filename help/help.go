// Package help renders usage text for a compiled pattern set: a
// synopsis line per pattern and a two-column option table, styled with
// lipgloss and measured in display cells so wide runes align.
package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one term with its description: a pattern and its purpose, or
// an option's name forms and its help text.
type Entry struct {
	Term string
	Desc string
}

// Page is everything a usage rendering needs. The zero value renders an
// empty string.
type Page struct {
	// Name is the program name, possibly a delegation chain such as
	// "prog remote add".
	Name string
	// Summary is the one-line program description under the name.
	Summary string
	// Patterns lists each pattern's text and description.
	Patterns []Entry
	// Options lists each declared option's joined name forms and help.
	Options []Entry
	// Width is the wrap width for descriptions; nonpositive disables
	// wrapping.
	Width int
}

var (
	headStyle = lipgloss.NewStyle().Bold(true)
	termStyle = lipgloss.NewStyle().PaddingLeft(2)
	descStyle = lipgloss.NewStyle().Faint(true)
)

// Render produces the usage text. widen pads a term to a display width;
// a nil widen falls back to space padding by lipgloss cell width.
func Render(p Page, widen func(s string, w int) string) string {
	if widen == nil {
		widen = padCells
	}

	var sb strings.Builder

	if p.Name != "" {
		sb.WriteString(headStyle.Render(p.Name))

		if p.Summary != "" {
			sb.WriteString(" - ")
			sb.WriteString(p.Summary)
		}

		sb.WriteString("\n\n")
	}

	if len(p.Patterns) > 0 {
		section(&sb, "usage", p.Patterns, p, widen)
	}

	if len(p.Options) > 0 {
		if len(p.Patterns) > 0 {
			sb.WriteString("\n")
		}

		section(&sb, "options", p.Options, p, widen)
	}

	return sb.String()
}

func section(sb *strings.Builder, title string, entries []Entry, p Page, widen func(string, int) string) {
	sb.WriteString(headStyle.Render(title))
	sb.WriteString("\n")

	col := 0

	for _, e := range entries {
		if w := lipgloss.Width(e.Term); w > col {
			col = w
		}
	}

	for _, e := range entries {
		sb.WriteString(termStyle.Render(widen(e.Term, col)))

		if e.Desc != "" {
			sb.WriteString("  ")
			sb.WriteString(descStyle.Render(wrap(e.Desc, p.Width, col+4)))
		}

		sb.WriteString("\n")
	}
}

// wrap folds text at width, continuing lines under the description
// column. Nonpositive width returns the text unchanged.
func wrap(text string, width, indent int) string {
	if width <= 0 || indent >= width {
		return text
	}

	avail := width - indent
	words := strings.Fields(text)

	if len(words) == 0 {
		return text
	}

	var (
		sb   strings.Builder
		line int
	)

	for i, w := range words {
		n := lipgloss.Width(w)

		switch {
		case i == 0:
			line = n
		case line+1+n > avail:
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))

			line = n
		default:
			sb.WriteString(" ")

			line += 1 + n
		}

		sb.WriteString(w)
	}

	return sb.String()
}

func padCells(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}

	return s + strings.Repeat(" ", w-n)
}
