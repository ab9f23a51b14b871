package main

import (
	"fmt"
	"strings"
)

// programSummary lists what a built program contains, one fact per line.
func programSummary(r buildResult) []string {
	if r.err != nil {
		return []string{"build failed"}
	}
	p := r.prog
	var lines []string
	switch n := p.NumQubits(); n {
	case 0:
		lines = append(lines, "physical qubits only")
	case 1:
		lines = append(lines, "1 qubit")
	default:
		lines = append(lines, fmt.Sprintf("%d qubits", n))
	}
	if subs := p.SubroutineNames(); len(subs) > 0 {
		lines = append(lines, "subroutines: "+strings.Join(subs, ", "))
	}
	if gates := p.GateNames(); len(gates) > 0 {
		lines = append(lines, "gates: "+strings.Join(gates, ", "))
	}
	if p.HasPulseControl() {
		lines = append(lines, "pulse calibrations")
	}
	return lines
}

// renderProgramList renders the demo picker with a summary of the selected
// program underneath.
func (m Model) renderProgramList(width, height int) string {
	var sb strings.Builder

	title := "Programs"
	if m.focus == focusList {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	for i, r := range m.results {
		if i == m.selected {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + r.name))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(r.name))
		}
		if r.err != nil {
			sb.WriteString(errorStyle.Render(" ✗"))
		}
		sb.WriteString("\n")
	}

	cur := m.current()
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(cur.description))
	sb.WriteString("\n")
	for _, line := range programSummary(cur) {
		sb.WriteString(dimStyle.Render("· " + line))
		sb.WriteString("\n")
	}

	return listStyle.Width(width).Height(height).Render(sb.String())
}
