package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fbkclanna/vercast/internal/bump"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

var errAborted = errors.New("user aborted")

// --- inputModel: bubbletea model for text input with validation ---

type inputModel struct {
	textInput textinput.Model
	title     string
	validate  func(string) error
	errMsg    string
	done      bool
	aborted   bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			if m.validate != nil {
				if err := m.validate(m.textInput.Value()); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	m.errMsg = ""
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(m.textInput.View() + "\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	return b.String()
}

// --- confirmModel: bubbletea model for yes/no confirmation ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "y", "Y":
			m.value = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.value = false
			m.done = true
			return m, tea.Quit
		case "left", "right", "tab", "h", "l":
			m.value = !m.value
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yes, no := " Yes ", " No "
	if m.value {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}

// --- prompt helpers ---

func promptInput(title, placeholder string, validate func(string) error) (string, error) {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	result, err := tea.NewProgram(inputModel{textInput: ti, title: title, validate: validate}).Run()
	if err != nil {
		return "", err
	}
	rm := result.(inputModel)
	if rm.aborted {
		return "", errAborted
	}
	return strings.TrimSpace(rm.textInput.Value()), nil
}

func promptConfirm(title string, def bool) (bool, error) {
	result, err := tea.NewProgram(confirmModel{title: title, value: def}).Run()
	if err != nil {
		return false, err
	}
	rm := result.(confirmModel)
	if rm.aborted {
		return false, errAborted
	}
	return rm.value, nil
}

// bumpValidator accepts "", a bump type or "type:tag" for a configured type.
func bumpValidator(additional []string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		kind, _, _ := strings.Cut(s, ":")
		if !bump.Valid(kind, additional) {
			return fmt.Errorf("bump must be one of %s", strings.Join(bump.Allowed(additional), ", "))
		}
		return nil
	}
}

// interactiveBumps asks for a bump per package. Packages left empty are
// not part of the change.
func interactiveBumps(packages, additional []string) (map[string]string, error) {
	bumps := make(map[string]string)
	placeholder := strings.Join(bump.Suggestions(), "/")
	for _, name := range packages {
		value, err := promptInput(fmt.Sprintf("Bump for %s (empty to skip)", name), placeholder, bumpValidator(additional))
		if err != nil {
			return nil, err
		}
		if value != "" {
			bumps[name] = value
		}
	}
	if len(bumps) == 0 {
		return nil, fmt.Errorf("no package selected")
	}
	return bumps, nil
}

// interactiveChange collects bumps and a summary for one change file.
func interactiveChange(packages, additional []string) (map[string]string, string, error) {
	bumps, err := interactiveBumps(packages, additional)
	if err != nil {
		return nil, "", err
	}
	summary, err := promptInput("Summary", "What changed, for the changelog", func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("summary is required")
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	selected := make([]string, 0, len(bumps))
	for _, name := range packages {
		if _, ok := bumps[name]; ok {
			selected = append(selected, name)
		}
	}
	slices.Sort(selected)
	var b strings.Builder
	for _, name := range selected {
		fmt.Fprintf(&b, "  %s: %s\n", name, bumps[name])
	}
	fmt.Print(b.String())

	ok, err := promptConfirm("Write this change?", true)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", errAborted
	}
	return bumps, summary, nil
}
