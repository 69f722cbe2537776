package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/itm-bind/binding"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	ctx      context.Context
	err      error
	host     *binding.Host
	engine   string
	result   string
	funcs    []*binding.Function
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

// Defaults pre-filled into the argument form. Heights in meters, frequency
// in MHz, variability in percent.
var paramDefaults = map[string]string{
	"h_tx__meter":      "15",
	"h_rx__meter":      "3",
	"pfl":              "4, 250, 96, 84, 65, 46, 46",
	"tx_site_criteria": "0",
	"rx_site_criteria": "0",
	"d__km":            "10",
	"delta_h__meter":   "90",
	"climate":          "5",
	"N_0":              "301",
	"f__mhz":           "3500",
	"pol":              "1",
	"epsilon":          "15",
	"sigma":            "0.005",
	"mdvar":            "12",
	"time":             "50",
	"location":         "50",
	"situation":        "50",
	"confidence":       "50",
	"reliability":      "50",
}

func newInteractiveModel(ctx context.Context, a *app) *interactiveModel {
	return &interactiveModel{
		ctx:    ctx,
		host:   a.host,
		engine: a.cfg.Engine,
		funcs:  a.host.Registry().Functions(),
		state:  stateSelectFunc,
	}
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab", "shift+tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = witTypeStr(p.Type)
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		ti.SetValue(paramDefaults[p.Name])
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := convertArg(input.Value(), f.Params[i].Type)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", f.Params[i].Name, err)}
		}
		args[i] = v
	}

	out, err := m.host.Call(m.ctx, f.Name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: formatRecord(f.Result, out)}
}

// convertArg parses one form field. Lists are comma or space separated.
func convertArg(value string, t wit.Type) (any, error) {
	value = strings.TrimSpace(value)
	switch t := t.(type) {
	case wit.S32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(v), nil
	case wit.F64:
		return strconv.ParseFloat(value, 64)
	case *wit.TypeDef:
		if l, ok := t.Kind.(*wit.List); ok {
			fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })
			out := make([]any, len(fields))
			for i, field := range fields {
				v, err := convertArg(field, l.Type)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = v
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unsupported parameter type %s", witTypeStr(t))
}

func formatRecord(rec *binding.Record, fields map[string]any) string {
	var b strings.Builder
	for _, name := range rec.Fields() {
		fmt.Fprintf(&b, "%-16s %v\n", name, fields[name])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ITM"))
	b.WriteString(" ")
	b.WriteString(m.engine)
	b.WriteString(" engine\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.Name))
			} else {
				b.WriteString("  " + funcStyle.Render(f.Name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(typeStyle.Render(m.funcs[m.selected].Signature()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit arguments • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(witTypeStr(f.Params[i].Type)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.S32:
		return "s32"
	case wit.F64:
		return "f64"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if l, ok := v.Kind.(*wit.List); ok {
			return "list<" + witTypeStr(l.Type) + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func runInteractive(ctx context.Context, a *app) error {
	m := newInteractiveModel(ctx, a)
	if len(m.funcs) == 0 {
		return fmt.Errorf("no functions bound")
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
