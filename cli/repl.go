package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/clip/pkg"
	"github.com/ardnew/clip/spec"
)

const replPrompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// repl loads the manifest and runs the interactive loop: each submitted
// line is dispatched as an argument vector against the manifest's
// patterns, with fuzzy completion over its keywords and option names.
func (c *CLI) repl(manifest string) int {
	defer c.pprof.start()()

	m, err := c.loadManifest(manifest)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", pkg.Name, err)

		return 1
	}

	diag := &bytes.Buffer{}

	s, err := c.build(m, spec.WithSink(spec.WriterSink{W: diag}))
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", manifest, err)

		return 1
	}

	name := m.Name
	if name == "" {
		name = manifest
	}

	p := tea.NewProgram(newReplModel(name, s, diag), tea.WithContext(c.ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", pkg.Name, err)

		return 1
	}

	return 0
}

// replModel is the Bubble Tea model for the manifest playground.
type replModel struct {
	name       string
	spec       *spec.Spec
	diag       *bytes.Buffer
	input      textinput.Model
	candidates []string
	matches    fuzzy.Matches
	quitting   bool
}

func newReplModel(name string, s *spec.Spec, diag *bytes.Buffer) replModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(replPrompt)
	ti.Focus()
	ti.CharLimit = 1024

	return replModel{
		name:       name,
		spec:       s,
		diag:       diag,
		input:      ti,
		candidates: append(s.Keywords(), s.OptionNames()...),
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.quitting = true

				return m, tea.Quit
			}

			m.input.SetValue("")
			m.matches = nil

			return m, nil

		case tea.KeyEnter:
			return m.dispatch()

		case tea.KeyTab:
			return m.complete(), nil
		}
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

func (m replModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render(
			"Type arguments and press Enter; Tab completes; Ctrl+C exits"))
	case len(m.matches) > 0:
		words := make([]string, 0, len(m.matches))
		for _, match := range m.matches {
			words = append(words, match.Str)
		}

		b.WriteString(suggestionStyle.Render(strings.Join(words, "  ")))
	}

	b.WriteString("\n")

	return b.String()
}

// dispatch submits the current line as an argument vector.
func (m replModel) dispatch() (replModel, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	echo := tea.Println(promptStyle.Render(replPrompt) + line)

	m.diag.Reset()

	status := m.spec.Process(append([]string{m.name}, strings.Fields(line)...))

	result := resultStyle.Render(fmt.Sprintf("status %d", status))
	if msg := strings.TrimSpace(m.diag.String()); msg != "" {
		result = errorStyle.Render(msg)
	}

	return m, tea.Sequence(echo, tea.Println(result))
}

// complete replaces the word under the cursor with the best candidate.
func (m replModel) complete() replModel {
	if len(m.matches) == 0 {
		return m
	}

	line := m.input.Value()

	start := len(line)
	for start > 0 && line[start-1] != ' ' {
		start--
	}

	m.input.SetValue(line[:start] + m.matches[0].Str)
	m.input.SetCursor(len(m.input.Value()))
	m.matches = nil

	return m
}

// refresh recomputes the completion candidates for the trailing word.
func (m *replModel) refresh() {
	line := m.input.Value()

	i := strings.LastIndexByte(line, ' ')
	word := line[i+1:]

	if word == "" {
		m.matches = nil

		return
	}

	m.matches = fuzzy.Find(word, m.candidates)
	if len(m.matches) > 8 {
		m.matches = m.matches[:8]
	}
}
