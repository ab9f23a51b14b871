package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}

// gateDisplayName returns the label drawn inside an op's box.
func gateDisplayName(op Op) string {
	switch op.Type {
	case "MEASURE":
		return "M"
	case "RESET":
		return "|0⟩"
	case "CY":
		return "Y"
	case "CPHASESHIFT":
		return "P"
	}
	if len(op.Params) == 0 {
		return op.Type
	}
	params := make([]string, len(op.Params))
	for i, p := range op.Params {
		params[i] = oqpy.FormatAngle(p)
	}
	return op.Type + "(" + strings.Join(params, ",") + ")"
}

// targetSymbol returns the wire symbol for the target of a controlled gate,
// or "" when the target is drawn as a box.
func targetSymbol(gateType string) string {
	switch gateType {
	case "CNOT", "CCNOT":
		return "⊕"
	case "CZ":
		return "●"
	default:
		return ""
	}
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell, each w
// characters wide.
func renderCell(info cellInfo, w int) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", w)
	halfW := w / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", w-halfW-1)
	dashL := (w - 1) / 2
	dashR := w - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}
	wireWith := func(sym string) string {
		return strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR)
	}

	switch {
	case info.isBarrier:
		top, mid, bot = vertRow, wireWith("│"), vertRow

	case info.role == roleControl:
		mid = wireWith(gateStyle.Render("●"))

	case info.role == roleSwap:
		mid = wireWith(gateStyle.Render("×"))

	case info.role == roleTarget && targetSymbol(info.op.Type) != "":
		mid = wireWith(gateStyle.Render(targetSymbol(info.op.Type)))

	case info.op != nil:
		inner := w - 4
		name := padCenter(gateDisplayName(*info.op), inner)
		boxTop := gateStyle.Render("┌" + strings.Repeat("─", inner) + "┐")
		boxBot := gateStyle.Render("└" + strings.Repeat("─", inner) + "┘")
		// multi-qubit boxes keep the connecting wire visible above and below
		if !info.vertAbove {
			top = " " + boxTop + " "
		} else {
			top = " " + gateStyle.Render("┌"+strings.Repeat("─", (inner-1)/2)+"┴"+strings.Repeat("─", inner-(inner-1)/2-1)+"┐") + " "
		}
		mid = "─" + gateStyle.Render("┤"+name+"├") + "─"
		if !info.vertBelow {
			bot = " " + boxBot + " "
		} else {
			bot = " " + gateStyle.Render("└"+strings.Repeat("─", (inner-1)/2)+"┬"+strings.Repeat("─", inner-(inner-1)/2-1)+"┘") + " "
		}

	case info.passThrough:
		top, mid, bot = vertRow, wireWith("┼"), vertRow

	default:
		mid = strings.Repeat("─", w)
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuit draws the circuit grid within width columns.
func renderCircuit(c *Circuit, width int) string {
	var sb strings.Builder

	// How many steps fit
	avail := width - labelVisualW
	widths := c.getStepWidths(0, c.MaxSteps)
	shown := 0
	for used := 0; shown < len(widths) && used+widths[shown] <= avail; shown++ {
		used += widths[shown]
	}

	header := strings.Repeat(" ", labelVisualW)
	for step := range shown {
		header += dimStyle.Render(padCenter(fmt.Sprint(step), widths[step]))
	}
	sb.WriteString(header + "\n")

	for qubit := range c.NumQubits {
		label := fmt.Sprintf("q[%d]", qubit)
		if c.Physical {
			label = fmt.Sprintf("$%d", qubit)
		}
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := range shown {
			top, mid, bot := renderCell(c.getCellInfo(step, qubit), widths[step])
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	if shown < c.MaxSteps {
		fmt.Fprintf(&sb, "  ▶ %d more steps\n", c.MaxSteps-shown)
	}
	return sb.String()
}

// renderProbabilities draws a bar per basis state of the simulated state.
func renderProbabilities(states []BasisState, numQubits int) string {
	var sb strings.Builder
	for _, s := range states {
		bar := int(s.Prob*histogramW + 0.5)
		fmt.Fprintf(&sb, "|%0*b⟩ %s %5.1f%%\n", numQubits, s.Index,
			barStyle.Render(strings.Repeat("█", bar)+strings.Repeat("░", histogramW-bar)), s.Prob*100)
	}
	return sb.String()
}

// renderCircuitPanel renders the circuit of the selected program together
// with its ideal measurement probabilities.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Circuit"))
	sb.WriteString("\n\n")

	b := m.current()
	switch {
	case b.err != nil:
		sb.WriteString(dimStyle.Render("no circuit: the program failed to build"))
	case b.circuit.NumQubits == 0:
		sb.WriteString(dimStyle.Render("no qubits used"))
	default:
		sb.WriteString(renderCircuit(b.circuit, width-4))
		if b.circuit.Classical {
			sb.WriteString(dimStyle.Render("  control flow and subroutine calls are not drawn"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		if sv, err := SimulateCircuit(b.circuit); err != nil {
			sb.WriteString(dimStyle.Render("  no simulation: " + err.Error()))
		} else {
			sb.WriteString(titleStyle.Render("Probabilities"))
			sb.WriteString("\n")
			sb.WriteString(renderProbabilities(sv.BasisStates(), b.circuit.NumQubits))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the OpenQASM panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "OpenQASM 3"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	if err := m.current().err; err != nil {
		sb.WriteString(errorStyle.Render("build failed"))
		sb.WriteString("\n")
		sb.WriteString(err.Error())
	} else {
		sb.WriteString(m.qasmEditor.View())
	}

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Select program  Tab Switch focus")
	sb.WriteString("\n")
	sb.WriteString(activeStyle.Render("Actions:  "))
	sb.WriteString("^R Rebuild  ^S Save .qasm  q/^C Quit")
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeStyle.Render(m.statusMsg))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}
