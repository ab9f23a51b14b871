package main

import (
	"math"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

func opTypes(c *Circuit) []string {
	types := make([]string, len(c.Ops))
	for i, op := range c.Ops {
		types[i] = op.Type
	}
	return types
}

func TestParseCircuitParallelGates(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		OPENQASM 3.0;
		qubit[4] __qubits__;
		h __qubits__[0];
		h __qubits__[1];
		cnot __qubits__[0], __qubits__[1];
		x __qubits__[2];
	`))

	assert.Equal(t, 4, c.NumQubits)
	assert.False(t, c.Classical)
	assert.False(t, c.Physical)
	require.Equal(t, []string{"H", "H", "CNOT", "X"}, opTypes(c))

	steps := []int{c.Ops[0].Step, c.Ops[1].Step, c.Ops[2].Step, c.Ops[3].Step}
	assert.Equal(t, []int{0, 0, 1, 0}, steps, "independent gates share a step")
	assert.Equal(t, []int{0, 1}, c.Ops[2].Qubits)
	assert.Equal(t, 2, c.MaxSteps)
}

func TestParseCircuitSpanOverlap(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		OPENQASM 3.0;
		qubit[3] __qubits__;
		cnot __qubits__[0], __qubits__[2];
		x __qubits__[1];
		barrier;
		z __qubits__[0];
	`))

	require.Equal(t, []string{"CNOT", "X", "BARRIER", "Z"}, opTypes(c))
	assert.Equal(t, 1, c.Ops[1].Step, "x on q[1] must not sit under the cnot wire")
	assert.Equal(t, 2, c.Ops[2].Step)
	assert.Equal(t, 3, c.Ops[3].Step, "a full barrier orders everything after it")
}

func TestParseCircuitParams(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		OPENQASM 3.0;
		qubit[2] __qubits__;
		rx(pi/2) __qubits__[0];
		cphaseshift(0.25) __qubits__[0], __qubits__[1];
		rz(theta) __qubits__[1];
	`))

	require.Len(t, c.Ops, 3)
	assert.InDelta(t, math.Pi/2, c.Ops[0].Params[0], 1e-12)
	assert.Equal(t, []float64{0.25}, c.Ops[1].Params)
	assert.Empty(t, c.Ops[2].Params, "symbolic angles are not read back")
}

func TestParseCircuitSkipsDefinitions(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		OPENQASM 3.0;
		defcalgrammar "openpulse";
		gate my_gate(theta) q0, q1 {
		    rx(theta) q0;
		    cnot q0, q1;
		}
		defcal rx(angle[32] theta) $0 {
		    shift_phase(q0_rf_frame, theta);
		}
		def flip(qubit q) {
		    x q;
		}
		qubit[2] __qubits__;
		my_gate(pi/2) __qubits__[0], __qubits__[1];
	`))

	assert.False(t, c.Classical)
	assert.Equal(t, []string{"MY_GATE"}, opTypes(c))
}

func TestParseCircuitClassical(t *testing.T) {
	tests := []struct {
		name string
		ir   string
	}{
		{"if block", heredoc.Doc(`
			qubit[1] __qubits__;
			bit __bit_0__ = measure __qubits__[0];
			if (__bit_0__) {
			    x __qubits__[0];
			}
		`)},
		{"subroutine call", heredoc.Doc(`
			def flip(qubit q) {
			    x q;
			}
			qubit[1] __qubits__;
			flip(__qubits__[0]);
		`)},
		{"dynamic operand", heredoc.Doc(`
			qubit[2] __qubits__;
			int[32] i = 1;
			h __qubits__[i];
		`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCircuit(tt.ir)
			assert.True(t, c.Classical)
		})
	}
}

func TestParseCircuitPhysicalQubits(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		OPENQASM 3.0;
		#pragma braket verbatim
		box {
		    rx(pi/2) $0;
		    cz $0, $3;
		}
	`))

	assert.True(t, c.Physical)
	assert.False(t, c.Classical)
	assert.Equal(t, 4, c.NumQubits, "the grid grows to the highest physical qubit")
	assert.Equal(t, []string{"RX", "CZ"}, opTypes(c))
}

func TestParseCircuitFromDemos(t *testing.T) {
	tests := []struct {
		name      string
		numQubits int
		ops       []string
		classical bool
		physical  bool
	}{
		{"bell", 2, []string{"H", "CNOT", "MEASURE", "MEASURE"}, false, false},
		{"ghz", 3, []string{"H", "CNOT", "CNOT", "BARRIER", "MEASURE", "MEASURE", "MEASURE"}, false, false},
		{"superposition", 4, []string{}, true, false},
		{"measure_and_correct", 2, []string{"H", "CNOT", "MEASURE"}, true, false},
		{"recursion", 0, []string{}, true, false},
		{"custom_gate", 3, []string{"ENTANGLE", "ENTANGLE"}, false, false},
		{"verbatim", 2, []string{"RX", "CZ"}, false, true},
		{"pulse_rx", 1, []string{"RX", "RX"}, false, true},
	}

	demos := builtinDemos()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := findDemo(demos, tt.name)
			require.True(t, ok)
			prog, err := d.build(autoqasm.UserConfig{})
			require.NoError(t, err)

			c := ParseCircuit(prog.ToIR())
			assert.Equal(t, tt.numQubits, c.NumQubits)
			assert.Equal(t, tt.ops, opTypes(c))
			assert.Equal(t, tt.classical, c.Classical)
			assert.Equal(t, tt.physical, c.Physical)
		})
	}
}

func TestGetCellInfo(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		qubit[4] __qubits__;
		cnot __qubits__[0], __qubits__[2];
		swap __qubits__[3], __qubits__[2];
	`))

	control := c.getCellInfo(0, 0)
	assert.Equal(t, roleControl, control.role)
	assert.False(t, control.vertAbove)
	assert.True(t, control.vertBelow)

	wire := c.getCellInfo(0, 1)
	assert.Nil(t, wire.op)
	assert.True(t, wire.passThrough)
	assert.True(t, wire.vertAbove)
	assert.True(t, wire.vertBelow)

	target := c.getCellInfo(0, 2)
	assert.Equal(t, roleTarget, target.role)
	assert.True(t, target.vertAbove)
	assert.False(t, target.vertBelow)

	assert.Equal(t, roleNone, c.getCellInfo(0, 3).role)
	assert.Equal(t, roleSwap, c.getCellInfo(1, 3).role)
}

func TestStepWidthFitsLabels(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		qubit[2] __qubits__;
		h __qubits__[0];
		rx(3*pi/4) __qubits__[1];
	`))

	// RX(3*pi/4) is 10 runes wide plus the box edges and wire stubs
	assert.Equal(t, []int{14}, c.getStepWidths(0, c.MaxSteps))
	assert.Equal(t, "RX(3*pi/4)", gateDisplayName(c.Ops[1]))
}

func TestRenderCircuitLabels(t *testing.T) {
	logical := ParseCircuit("qubit[2] __qubits__;\nh __qubits__[1];\n")
	out := renderCircuit(logical, 80)
	assert.Contains(t, out, "q[0]")
	assert.Contains(t, out, "q[1]")

	physical := ParseCircuit("h $1;\n")
	out = renderCircuit(physical, 80)
	assert.Contains(t, out, "$1")
	assert.NotContains(t, out, "q[1]")
}

func TestRenderCircuitTruncates(t *testing.T) {
	c := ParseCircuit(heredoc.Doc(`
		qubit[1] __qubits__;
		h __qubits__[0];
		h __qubits__[0];
		h __qubits__[0];
	`))

	out := renderCircuit(c, labelVisualW+2*minCellW)
	assert.Contains(t, out, "1 more steps")
}
