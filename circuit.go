package main

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// Pre-compiled regexps for reading back generated OpenQASM 3.
var (
	qubitDeclRegex = regexp.MustCompile(`^qubit\[(\d+)\]\s+__qubits__;$`)
	gateCallRegex  = regexp.MustCompile(`^([a-z_]\w*)(?:\(([^)]*)\))?\s+([^=;]+);$`)
	measureRegex   = regexp.MustCompile(`^(?:bit(?:\[\d+\])?\s+)?[\w\[\]]+\s*=\s*measure\s+(\S+);$`)
	resetRegex     = regexp.MustCompile(`^reset\s+(\S+);$`)
	barrierRegex   = regexp.MustCompile(`^barrier(?:\s+(.+))?;$`)
	defHeaderRegex = regexp.MustCompile(`^def\s+(\w+)\(`)
	operandRegex   = regexp.MustCompile(`^(?:__qubits__\[(\d+)\]|\$(\d+))$`)
)

// keywords that start a gate-like line but are not gate calls.
var statementKeywords = map[string]bool{
	"measure": true, "reset": true, "barrier": true, "delay": true,
	"return": true, "break": true, "continue": true, "pragma": true,
	"bit": true, "bool": true, "int": true, "float": true, "angle": true,
	"array": true, "qubit": true, "duration": true, "const": true,
	"include": true, "defcalgrammar": true, "input": true, "output": true,
}

// controlledGates are drawn with control dots on every qubit but the last.
var controlledGates = map[string]bool{
	"CNOT": true, "CY": true, "CZ": true, "CPHASESHIFT": true, "CCNOT": true,
}

// Op is an operation placed on the circuit grid.
type Op struct {
	Type   string    // upper-case gate name, MEASURE, RESET or BARRIER
	Qubits []int     // operands in call order; empty for a full barrier
	Params []float64 // angle arguments that could be read back
	Step   int       // column in the circuit timeline
}

// Circuit is the straight-line quantum part of a generated program.
type Circuit struct {
	NumQubits int
	Ops       []Op
	MaxSteps  int

	// Classical reports that the program also contains control flow or
	// subroutine calls, which are not drawn.
	Classical bool
	// Physical reports that operations address hardware qubits ($n).
	Physical bool
}

// span returns the lowest and highest qubit an op touches.
func (op Op) span() (lo, hi int) {
	lo, hi = op.Qubits[0], op.Qubits[0]
	for _, q := range op.Qubits[1:] {
		lo, hi = min(lo, q), max(hi, q)
	}
	return lo, hi
}

func (op Op) references(qubit int) bool {
	return slices.Contains(op.Qubits, qubit)
}

// place schedules op in the earliest step after every op it overlaps. Ops
// overlap when their qubit spans intersect, so vertical wires never cross a
// gate drawn in the same column.
func (c *Circuit) place(op Op, last []int) {
	var lo, hi int
	if len(op.Qubits) == 0 {
		lo, hi = 0, c.NumQubits-1
	} else {
		lo, hi = op.span()
	}
	step := 0
	for q := lo; q <= hi && q < len(last); q++ {
		step = max(step, last[q]+1)
	}
	for q := lo; q <= hi && q < len(last); q++ {
		last[q] = step
	}
	op.Step = step
	c.Ops = append(c.Ops, op)
	c.MaxSteps = max(c.MaxSteps, step+1)
}

// ParseCircuit reads the main-scope operations of a program produced by
// autoqasm. Definitions are skipped; control-flow blocks and subroutine calls
// set Classical.
func ParseCircuit(ir string) *Circuit {
	c := &Circuit{}
	var pending []Op
	var blocks []bool // true for blocks whose content is not drawn
	skipping := func() bool { return slices.Contains(blocks, true) }
	var subroutines []string

	for _, line := range strings.Split(ir, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "}" {
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
			continue
		}
		if strings.HasSuffix(line, "{") {
			if strings.HasPrefix(line, "} else") {
				continue
			}
			if m := defHeaderRegex.FindStringSubmatch(line); m != nil {
				subroutines = append(subroutines, m[1])
			}
			switch strings.Fields(line)[0] {
			case "box":
				blocks = append(blocks, false)
			case "gate", "def", "defcal":
				blocks = append(blocks, true)
			default:
				c.Classical = c.Classical || !skipping()
				blocks = append(blocks, true)
			}
			continue
		}
		if skipping() {
			continue
		}

		if m := qubitDeclRegex.FindStringSubmatch(line); m != nil {
			c.NumQubits, _ = strconv.Atoi(m[1])
			continue
		}
		if callsAny(line, subroutines) {
			c.Classical = true
			continue
		}
		if m := measureRegex.FindStringSubmatch(line); m != nil {
			if qs, ok := c.operands(m[1]); ok {
				pending = append(pending, Op{Type: "MEASURE", Qubits: qs})
			}
			continue
		}
		if m := resetRegex.FindStringSubmatch(line); m != nil {
			if qs, ok := c.operands(m[1]); ok {
				pending = append(pending, Op{Type: "RESET", Qubits: qs})
			}
			continue
		}
		if m := barrierRegex.FindStringSubmatch(line); m != nil {
			op := Op{Type: "BARRIER"}
			if m[1] != "" {
				qs, ok := c.operands(m[1])
				if !ok {
					continue
				}
				op.Qubits = qs
			}
			pending = append(pending, op)
			continue
		}
		if m := gateCallRegex.FindStringSubmatch(line); m != nil && !statementKeywords[m[1]] {
			qs, ok := c.operands(m[3])
			if !ok {
				c.Classical = true
				continue
			}
			op := Op{Type: strings.ToUpper(m[1]), Qubits: qs}
			if m[2] != "" {
				for _, p := range strings.Split(m[2], ",") {
					if v, ok := oqpy.ParseAngle(p); ok {
						op.Params = append(op.Params, v)
					}
				}
			}
			pending = append(pending, op)
		}
	}

	// physical qubits have no declaration; size the grid to fit them
	for _, op := range pending {
		for _, q := range op.Qubits {
			c.NumQubits = max(c.NumQubits, q+1)
		}
	}
	last := make([]int, c.NumQubits)
	for i := range last {
		last[i] = -1
	}
	for _, op := range pending {
		c.place(op, last)
	}
	return c
}

// operands parses a comma-separated list of fixed qubit references.
func (c *Circuit) operands(s string) ([]int, bool) {
	var qs []int
	for _, part := range strings.Split(s, ",") {
		m := operandRegex.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, false
		}
		if m[2] != "" {
			c.Physical = true
			m[1] = m[2]
		}
		q, _ := strconv.Atoi(m[1])
		qs = append(qs, q)
	}
	return qs, true
}

func callsAny(line string, names []string) bool {
	for _, n := range names {
		if strings.Contains(line, n+"(") {
			return true
		}
	}
	return false
}

// GetOpAt returns the op at the given step that uses qubit, or nil.
func (c *Circuit) GetOpAt(step, qubit int) *Op {
	for i := range c.Ops {
		op := &c.Ops[i]
		if op.Step == step && op.references(qubit) {
			return op
		}
	}
	return nil
}

// getStepWidth returns the cell width needed for the given step.
func (c *Circuit) getStepWidth(step int) int {
	w := minCellW
	for _, op := range c.Ops {
		if op.Step != step || op.Type == "BARRIER" {
			continue
		}
		w = max(w, cellWidthForName(gateDisplayName(op))+2)
	}
	return w
}

// getStepWidths returns cell widths for steps in [startStep, startStep+count).
func (c *Circuit) getStepWidths(startStep, count int) []int {
	widths := make([]int, count)
	for i := range count {
		widths[i] = c.getStepWidth(startStep + i)
	}
	return widths
}

// cellRole is what a qubit wire shows in one column.
type cellRole int

const (
	roleNone cellRole = iota
	roleBox
	roleControl
	roleTarget
	roleSwap
)

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	op          *Op
	role        cellRole
	vertAbove   bool
	vertBelow   bool
	passThrough bool
	isBarrier   bool
}

// getCellInfo returns rendering information for the cell at (step, qubit).
func (c *Circuit) getCellInfo(step, qubit int) cellInfo {
	var info cellInfo

	if op := c.GetOpAt(step, qubit); op != nil {
		info.op = op
		switch {
		case op.Type == "SWAP":
			info.role = roleSwap
		case controlledGates[op.Type] && qubit == op.Qubits[len(op.Qubits)-1]:
			info.role = roleTarget
		case controlledGates[op.Type]:
			info.role = roleControl
		default:
			info.role = roleBox
		}
	}

	for i := range c.Ops {
		op := &c.Ops[i]
		if op.Step != step {
			continue
		}
		if op.Type == "BARRIER" && (len(op.Qubits) == 0 || op.references(qubit)) {
			info.isBarrier = true
			info.op = op
			continue
		}
		if len(op.Qubits) < 2 {
			continue
		}
		lo, hi := op.span()
		if qubit < lo || qubit > hi {
			continue
		}
		info.vertAbove = info.vertAbove || qubit > lo
		info.vertBelow = info.vertBelow || qubit < hi
		if info.op == nil {
			info.passThrough = true
		}
	}
	return info
}

// cellWidthForName returns the cell width needed for a gate name.
func cellWidthForName(name string) int {
	n := utf8.RuneCountInString(name)
	if n <= 1 {
		return 3
	}
	return n + 2
}
