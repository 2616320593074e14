package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/odelang/odebridge/bridge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	derivStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var tuiCmd = &cobra.Command{
	Use:   "tui <model.json>",
	Short: "Interactively step a model with forward Euler",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("tui needs a terminal; use eval for scripted runs")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		m, _, cl, err := compileFile(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		defer cl()
		defer m.Close()

		dt := textinput.New()
		dt.Placeholder = "0.01"
		dt.SetValue("0.01")
		dt.CharLimit = 16
		dt.Width = 12

		sm := &stepModel{
			ctx:   ctx,
			model: m,
			name:  args[0],
			u:     m.InitialStates(),
			p:     m.InitialParams(),
			du:    make([]float64, m.StateCount()),
			dt:    dt,
		}
		sm.evaluate()

		_, err = tea.NewProgram(sm).Run()
		return err
	},
}

type stepModel struct {
	ctx   context.Context
	model *bridge.Model
	err   error
	name  string
	u     []float64
	p     []float64
	du    []float64
	t     float64
	steps int
	dt    textinput.Model
}

func (m *stepModel) Init() tea.Cmd {
	return textinput.Blink
}

// evaluate refreshes du at the current (t, u, p).
func (m *stepModel) evaluate() {
	m.err = m.model.Evaluate(m.ctx, m.du, m.u, m.p, m.t)
}

// step advances one forward Euler step using the current dt field.
func (m *stepModel) step() {
	h, err := strconv.ParseFloat(strings.TrimSpace(m.dt.Value()), 64)
	if err != nil {
		m.err = fmt.Errorf("bad dt: %w", err)
		return
	}
	m.evaluate()
	if m.err != nil {
		return
	}
	for i := range m.u {
		m.u[i] += h * m.du[i]
	}
	m.t += h
	m.steps++
	m.evaluate()
}

func (m *stepModel) reset() {
	m.t = 0
	m.steps = 0
	m.u = m.model.InitialStates()
	m.evaluate()
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "enter", " ", "n":
			m.step()
			return m, nil
		case "r":
			m.reset()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.dt, cmd = m.dt.Update(msg)
	return m, cmd
}

func (m *stepModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("odebridge stepper"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "model: %s\n", m.name)
	fmt.Fprintf(&b, "t = %.6g  (step %d)\n\n", m.t, m.steps)

	for i, v := range m.u {
		fmt.Fprintf(&b, "  u[%d] = %s    du[%d] = %s\n",
			i, stateStyle.Render(fmt.Sprintf("%12.6g", v)),
			i, derivStyle.Render(fmt.Sprintf("%12.6g", m.du[i])))
	}
	if len(m.p) > 0 {
		fmt.Fprintf(&b, "\n  p = %v\n", m.p)
	}

	b.WriteString("\ndt: " + m.dt.View() + "\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("enter/space: step  r: reset  q: quit") + "\n")
	return b.String()
}
