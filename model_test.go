package main

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelStartsOnFirstProgram(t *testing.T) {
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})
	assert.Equal(t, "bell", m.current().name)
	assert.Equal(t, m.current().ir, m.qasmEditor.Value())
	assert.Equal(t, focusList, m.focus)
}

func TestModelNavigation(t *testing.T) {
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)
	assert.Equal(t, m.results[1].ir, m.qasmEditor.Value())

	m, _ = press(t, m, runes("j"), runes("k"), runes("k"), runes("k"))
	assert.Equal(t, 0, m.selected, "selection stops at the first program")

	for range len(m.results) + 3 {
		m, _ = press(t, m, runes("j"))
	}
	assert.Equal(t, len(m.results)-1, m.selected, "selection stops at the last program")
}

func TestModelFocusAndQuit(t *testing.T) {
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusQASM, m.focus)

	// q is text while the editor has focus
	m, _ = press(t, m, runes("q"))
	assert.Equal(t, focusQASM, m.focus)
	assert.True(t, strings.HasSuffix(m.qasmEditor.Value(), "q"))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusList, m.focus)

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModelEditRedrawsCircuit(t *testing.T) {
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})
	require.Len(t, m.current().circuit.Ops, 4)

	m.qasmEditor.SetValue("OPENQASM 3.0;\nqubit[2] __qubits__;\nx __qubits__[1];\n")
	m.parseQASMInput()
	assert.Equal(t, []string{"X"}, opTypes(m.current().circuit))

	// switching programs restores the built IR
	m, _ = press(t, m, runes("j"), runes("k"))
	assert.Equal(t, m.current().ir, m.qasmEditor.Value())
}

func TestModelSave(t *testing.T) {
	t.Chdir(t.TempDir())
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Saved bell.qasm", m.statusMsg)
	data, err := os.ReadFile("bell.qasm")
	require.NoError(t, err)
	assert.Equal(t, m.current().ir, string(data))

	// the status is cleared by the next key
	m, _ = press(t, m, runes("j"))
	assert.Empty(t, m.statusMsg)
}

func TestModelShowsBuildErrors(t *testing.T) {
	cfg := autoqasm.UserConfig{Device: autoqasm.DeviceConfig{Name: "sv1"}}
	m := initialModel(builtinDemos(), cfg)
	for m.current().name != "verbatim" {
		m, _ = press(t, m, runes("j"))
	}
	require.Error(t, m.current().err)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Contains(t, m.statusMsg, "Nothing to save")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Contains(t, m.statusMsg, "1 failed")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := next.(Model).View()
	assert.Contains(t, view, "build failed")
	assert.Contains(t, view, "does not support verbatim blocks")
}

func TestModelView(t *testing.T) {
	m := initialModel(builtinDemos(), autoqasm.UserConfig{})
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := next.(Model).View()
	for _, want := range []string{"Programs [ACTIVE]", "OpenQASM 3", "Circuit", "Probabilities", "q[1]", "ghz", "2 qubits"} {
		assert.Contains(t, view, want)
	}
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 40)
}

func TestProgramSummary(t *testing.T) {
	results := buildAll(builtinDemos(), autoqasm.UserConfig{})
	summaries := map[string][]string{}
	for _, r := range results {
		summaries[r.name] = programSummary(r)
	}

	assert.Equal(t, []string{"2 qubits"}, summaries["bell"])
	assert.Equal(t, []string{"3 qubits", "subroutines: coin"}, summaries["coin_flips"])
	assert.Equal(t, []string{"3 qubits", "gates: entangle"}, summaries["custom_gate"])
	assert.Equal(t, []string{"physical qubits only", "pulse calibrations"}, summaries["pulse_rx"])
	assert.Equal(t, []string{"build failed"}, programSummary(buildResult{err: assert.AnError}))
}
