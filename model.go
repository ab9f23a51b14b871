package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusList focus = iota
	focusQASM
)

// buildResult is the outcome of converting one demo.
type buildResult struct {
	name        string
	description string
	prog        *autoqasm.Program
	ir          string
	circuit     *Circuit
	err         error
}

func newBuildResult(d demo, cfg autoqasm.UserConfig) buildResult {
	r := buildResult{name: d.name, description: d.description}
	prog, err := d.build(cfg)
	if err != nil {
		log.Warningf("%s", err)
		r.err = err
		return r
	}
	r.prog = prog
	r.ir = prog.ToIR()
	r.circuit = ParseCircuit(r.ir)
	log.Debugf("built %s (build %s, %d qubits)", d.name, prog.BuildID(), prog.NumQubits())
	return r
}

// buildAll converts every demo concurrently. Each conversion has its own
// context, so the builds share nothing.
func buildAll(demos []demo, cfg autoqasm.UserConfig) []buildResult {
	results := make([]buildResult, len(demos))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range demos {
		g.Go(func() error {
			results[i] = newBuildResult(d, cfg)
			return nil
		})
	}
	// build errors are kept per program in results
	g.Wait()
	return results
}

// Model represents the TUI application state.
type Model struct {
	demos      []demo
	cfg        autoqasm.UserConfig
	results    []buildResult
	selected   int
	focus      focus
	qasmEditor textarea.Model
	lastQASM   string
	width      int
	height     int
	statusMsg  string // transient status message (e.g. save confirmation)
}

func initialModel(demos []demo, cfg autoqasm.UserConfig) Model {
	ta := textarea.New()
	ta.Placeholder = "OpenQASM output"
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		demos:      demos,
		cfg:        cfg,
		results:    buildAll(demos, cfg),
		qasmEditor: ta,
		focus:      focusList,
	}
	m.syncEditor()
	return m
}

// current returns the result of the selected program.
func (m Model) current() buildResult {
	if len(m.results) == 0 {
		return buildResult{err: fmt.Errorf("no programs")}
	}
	return m.results[m.selected]
}

// syncEditor loads the IR of the selected program into the editor, dropping
// any hand edits.
func (m *Model) syncEditor() {
	b := m.current()
	if b.err == nil {
		m.results[m.selected].circuit = ParseCircuit(b.ir)
	}
	m.qasmEditor.SetValue(b.ir)
	m.lastQASM = b.ir
}

// parseQASMInput redraws the circuit after the IR was edited by hand.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM || m.current().err != nil {
		return
	}
	m.results[m.selected].circuit = ParseCircuit(qasm)
	m.lastQASM = qasm
}

func (m *Model) rebuild() {
	m.results = buildAll(m.demos, m.cfg)
	m.syncEditor()
	failed := 0
	for _, r := range m.results {
		if r.err != nil {
			failed++
		}
	}
	m.statusMsg = fmt.Sprintf("Rebuilt %d programs, %d failed", len(m.results), failed)
}

// save writes the editor content to <program>.qasm in the working directory.
func (m *Model) save() {
	b := m.current()
	if b.err != nil {
		m.statusMsg = "Nothing to save: the program failed to build"
		return
	}
	path := b.name + ".qasm"
	if err := os.WriteFile(path, []byte(m.qasmEditor.Value()), 0644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	log.Infof("saved %s", path)
	m.statusMsg = "Saved " + path
}

// layout returns the outer heights of the top row and of the circuit panel.
func (m Model) layout() (topH, circuitH int) {
	avail := m.height - controlsH
	topH = max(avail/2, 8)
	return topH, max(avail-topH, 6)
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		topH, _ := m.layout()
		m.qasmEditor.SetWidth(max(msg.Width-listW-8, 20))
		m.qasmEditor.SetHeight(max(topH-6, 3))

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.save()
			return m, nil
		case "ctrl+r":
			m.rebuild()
			return m, nil
		}

		switch m.focus {
		case focusList:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				cmds = append(cmds, m.qasmEditor.Focus())
			case "up", "k":
				if m.selected > 0 {
					m.selected--
					m.syncEditor()
				}
			case "down", "j":
				if m.selected < len(m.results)-1 {
					m.selected++
					m.syncEditor()
				}
			}

		case focusQASM:
			switch key {
			case "tab", "esc":
				m.focus = focusList
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	topH, circuitH := m.layout()
	listPanel := m.renderProgramList(listW, topH-2)
	qasmPanel := m.renderQASMPanel(m.width-listW-4, topH-2)
	circuitPanel := m.renderCircuitPanel(m.width-2, circuitH-2)
	controlsPanel := m.renderControlsPanel(m.width-2, controlsH-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, qasmPanel)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, circuitPanel, controlsPanel)
}
