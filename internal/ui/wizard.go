package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork  string
	RPCAlgorithm    string
	ContractAddress string
	Cancelled       bool
}

// WizardOptions seeds the wizard's choices.
type WizardOptions struct {
	Networks        []string
	Algorithms      []string
	ContractAddress string // current value, kept when the input is left empty
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepAlgorithm
	stepContract
	stepDone
)

type wizardModel struct {
	opts    WizardOptions
	step    wizardStep
	result  WizardResult
	cursor  int
	choices []string
	input   string
}

func newWizard(opts WizardOptions) wizardModel {
	return wizardModel{
		opts:    opts,
		step:    stepNetwork,
		choices: opts.Networks,
		result:  WizardResult{ContractAddress: opts.ContractAddress},
	}
}

func (m wizardModel) inputMode() bool { return m.step == stepContract }

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.result.Cancelled = true
		return m, tea.Quit
	case tea.KeyUp:
		if !m.inputMode() && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if !m.inputMode() && m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		m.apply()
		m.advance()
	case tea.KeyBackspace:
		if m.inputMode() && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes:
		if m.inputMode() {
			m.input += string(key.Runes)
		} else {
			switch key.String() {
			case "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "j":
				if m.cursor < len(m.choices)-1 {
					m.cursor++
				}
			case "q":
				m.result.Cancelled = true
				return m, tea.Quit
			}
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) apply() {
	switch m.step {
	case stepNetwork:
		if m.cursor < len(m.choices) {
			m.result.DefaultNetwork = m.choices[m.cursor]
		}
	case stepAlgorithm:
		if m.cursor < len(m.choices) {
			m.result.RPCAlgorithm = m.choices[m.cursor]
		}
	case stepContract:
		// Pasted values sometimes carry brackets or quotes.
		addr := strings.Trim(strings.TrimSpace(m.input), `[]"'`)
		if addr != "" {
			m.result.ContractAddress = addr
		}
	}
}

func (m *wizardModel) advance() {
	m.step++
	m.cursor = 0
	switch m.step {
	case stepAlgorithm:
		m.choices = m.opts.Algorithms
	case stepContract:
		m.choices = nil
		m.input = ""
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices, m.cursor)
	case stepContract:
		s = StyleTitle.Render("Token contract address") + "\n\n"
		s += StyleMeta.Render("Press Enter to keep "+TruncateAddr(m.opts.ContractAddress)) + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · q quit")
	return s
}

// RunWizard launches the interactive setup wizard.
func RunWizard(opts WizardOptions) (*WizardResult, error) {
	p := tea.NewProgram(newWizard(opts))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
