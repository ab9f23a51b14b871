package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

// sequential builds a circuit that applies ops one step after another.
func sequential(numQubits int, ops ...Op) *Circuit {
	c := &Circuit{NumQubits: numQubits, MaxSteps: len(ops)}
	for i, op := range ops {
		op.Step = i
		c.Ops = append(c.Ops, op)
	}
	return c
}

func on(gate string, qubits ...int) Op { return Op{Type: gate, Qubits: qubits} }

func rot(gate string, theta float64, qubits ...int) Op {
	return Op{Type: gate, Qubits: qubits, Params: []float64{theta}}
}

func simulateDemo(t *testing.T, name string) []BasisState {
	t.Helper()
	d, ok := findDemo(builtinDemos(), name)
	require.True(t, ok)
	prog, err := d.build(autoqasm.UserConfig{})
	require.NoError(t, err)
	sv, err := SimulateCircuit(ParseCircuit(prog.ToIR()))
	require.NoError(t, err)
	return sv.BasisStates()
}

func TestSimulateBell(t *testing.T) {
	states := simulateDemo(t, "bell")
	require.Len(t, states, 2)
	assert.Equal(t, 0, states[0].Index)
	assert.Equal(t, 3, states[1].Index)
	assert.InDelta(t, 0.5, states[0].Prob, 1e-9)
	assert.InDelta(t, 0.5, states[1].Prob, 1e-9)
}

func TestSimulateGHZ(t *testing.T) {
	states := simulateDemo(t, "ghz")
	require.Len(t, states, 2)
	assert.Equal(t, 0, states[0].Index)
	assert.Equal(t, 7, states[1].Index)
}

func TestSimulatePhysicalQubits(t *testing.T) {
	states := simulateDemo(t, "pulse_rx")
	// rx(pi/2) then rx(pi) is rx(3pi/2): an equal superposition
	require.Len(t, states, 2)
	assert.InDelta(t, 0.5, states[0].Prob, 1e-9)
}

func TestGateActions(t *testing.T) {
	tests := []struct {
		name      string
		numQubits int
		ops       []Op
		index     int // the single basis state expected afterwards
	}{
		{"x", 1, []Op{on("X", 0)}, 1},
		{"y", 1, []Op{on("Y", 0)}, 1},
		{"z keeps zero", 1, []Op{on("Z", 0)}, 0},
		{"identity", 1, []Op{on("I", 0)}, 0},
		{"h twice", 1, []Op{on("H", 0), on("H", 0)}, 0},
		{"v twice is x", 1, []Op{on("V", 0), on("V", 0)}, 1},
		{"v then vi", 1, []Op{on("V", 0), on("VI", 0)}, 0},
		{"s si", 1, []Op{on("H", 0), on("S", 0), on("SI", 0), on("H", 0)}, 0},
		{"t ti", 1, []Op{on("H", 0), on("T", 0), on("TI", 0), on("H", 0)}, 0},
		{"s twice is z", 1, []Op{on("H", 0), on("S", 0), on("S", 0), on("H", 0)}, 1},
		{"rx pi", 1, []Op{rot("RX", math.Pi, 0)}, 1},
		{"ry pi", 1, []Op{rot("RY", math.Pi, 0)}, 1},
		{"rz is diagonal", 1, []Op{rot("RZ", 1.3, 0)}, 0},
		{"phaseshift pi is z", 1, []Op{on("H", 0), rot("PHASESHIFT", math.Pi, 0), on("H", 0)}, 1},
		{"cnot control set", 2, []Op{on("X", 0), on("CNOT", 0, 1)}, 3},
		{"cnot control clear", 2, []Op{on("CNOT", 0, 1)}, 0},
		{"cnot reversed", 2, []Op{on("X", 1), on("CNOT", 1, 0)}, 3},
		{"cy", 2, []Op{on("X", 0), on("CY", 0, 1)}, 3},
		{"cz phase kickback", 2, []Op{on("X", 0), on("H", 1), on("CZ", 0, 1), on("H", 1)}, 3},
		{"cphaseshift pi", 2, []Op{on("X", 0), on("H", 1), rot("CPHASESHIFT", math.Pi, 0, 1), on("H", 1)}, 3},
		{"swap", 2, []Op{on("X", 0), on("SWAP", 0, 1)}, 2},
		{"ccnot", 3, []Op{on("X", 0), on("X", 1), on("CCNOT", 0, 1, 2)}, 7},
		{"ccnot one control", 3, []Op{on("X", 0), on("CCNOT", 0, 1, 2)}, 1},
		{"xx pi", 2, []Op{rot("XX", math.Pi, 0, 1)}, 3},
		{"yy pi", 2, []Op{rot("YY", math.Pi, 0, 1)}, 3},
		{"zz is diagonal", 2, []Op{on("X", 1), rot("ZZ", 0.7, 0, 1)}, 2},
		{"reset one", 1, []Op{on("X", 0), on("RESET", 0)}, 0},
		{"reset superposition", 1, []Op{on("H", 0), on("RESET", 0)}, 0},
		{"measure and barrier are no-ops", 2, []Op{on("X", 1), {Type: "BARRIER"}, on("MEASURE", 1)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv, err := SimulateCircuit(sequential(tt.numQubits, tt.ops...))
			require.NoError(t, err)
			states := sv.BasisStates()
			require.Len(t, states, 1, "got %+v", states)
			assert.Equal(t, tt.index, states[0].Index)
			assert.InDelta(t, 1.0, states[0].Prob, 1e-9)
		})
	}
}

func TestIsingPhases(t *testing.T) {
	// exp(-i pi/2 Y⊗Y)|00⟩ = i|11⟩, while X⊗X gives -i|11⟩
	sv, err := SimulateCircuit(sequential(2, rot("YY", math.Pi, 0, 1)))
	require.NoError(t, err)
	assert.InDelta(t, 1, imag(sv.Amplitudes[3]), 1e-9)

	sv, err = SimulateCircuit(sequential(2, rot("XX", math.Pi, 0, 1)))
	require.NoError(t, err)
	assert.InDelta(t, -1, imag(sv.Amplitudes[3]), 1e-9)
}

func TestOrderFollowsSteps(t *testing.T) {
	// listed out of order; H must run before the CNOT
	c := &Circuit{NumQubits: 2, MaxSteps: 2, Ops: []Op{
		{Type: "CNOT", Qubits: []int{0, 1}, Step: 1},
		{Type: "H", Qubits: []int{0}, Step: 0},
	}}
	sv, err := SimulateCircuit(c)
	require.NoError(t, err)
	assert.Len(t, sv.BasisStates(), 2)
}

func TestQubitProbabilities(t *testing.T) {
	sv, err := SimulateCircuit(sequential(2, on("H", 0), on("CNOT", 0, 1)))
	require.NoError(t, err)
	for _, p := range sv.GetQubitProbabilities() {
		assert.InDelta(t, 0.5, p.Prob0, 1e-9)
		assert.InDelta(t, 0.5, p.Prob1, 1e-9)
	}
}

func TestSimulateRejects(t *testing.T) {
	tests := []struct {
		name    string
		circuit *Circuit
		errMsg  string
	}{
		{"classical", &Circuit{NumQubits: 1, Classical: true}, "classical control flow"},
		{"too many qubits", &Circuit{NumQubits: maxSimQubits + 1}, "simulator limit"},
		{"custom gate", sequential(2, on("ENTANGLE", 0, 1)), "gate ENTANGLE cannot be simulated"},
		{"wrong arity", sequential(2, on("H", 0, 1)), "gate H cannot be simulated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SimulateCircuit(tt.circuit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sv := NewStateVector(1)
	cp := sv.Clone()
	cp.ApplyOp(on("X", 0))
	assert.Equal(t, complex(1, 0), sv.Amplitudes[0])
	assert.Equal(t, complex(0, 0), cp.Amplitudes[0])
}
