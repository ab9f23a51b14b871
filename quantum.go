package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"slices"
)

// maxSimQubits bounds the state vector the previewer is willing to allocate.
const maxSimQubits = 12

type Complex = complex128

// matrix is a single-qubit operator in row-major order.
type matrix [2][2]Complex

type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

func NewStateVector(numQubits int) *StateVector {
	amps := make([]Complex, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	return &StateVector{Amplitudes: slices.Clone(s.Amplitudes), NumQubits: s.NumQubits}
}

func phase(theta float64) Complex { return cmplx.Exp(complex(0, theta)) }

// singleQubitGate returns the matrix of a one-qubit gate, using the angle
// conventions of the gates autoqasm emits.
func singleQubitGate(name string, params []float64) (matrix, bool) {
	theta := 0.0
	if len(params) > 0 {
		theta = params[0]
	}
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	h := complex(1/math.Sqrt2, 0)

	switch name {
	case "I":
		return matrix{{1, 0}, {0, 1}}, true
	case "H":
		return matrix{{h, h}, {h, -h}}, true
	case "X":
		return matrix{{0, 1}, {1, 0}}, true
	case "Y":
		return matrix{{0, -1i}, {1i, 0}}, true
	case "Z":
		return matrix{{1, 0}, {0, -1}}, true
	case "S":
		return matrix{{1, 0}, {0, 1i}}, true
	case "SI":
		return matrix{{1, 0}, {0, -1i}}, true
	case "T":
		return matrix{{1, 0}, {0, phase(math.Pi / 4)}}, true
	case "TI":
		return matrix{{1, 0}, {0, phase(-math.Pi / 4)}}, true
	case "V":
		return matrix{{(1 + 1i) / 2, (1 - 1i) / 2}, {(1 - 1i) / 2, (1 + 1i) / 2}}, true
	case "VI":
		return matrix{{(1 - 1i) / 2, (1 + 1i) / 2}, {(1 + 1i) / 2, (1 - 1i) / 2}}, true
	case "RX":
		return matrix{{c, -1i * s}, {-1i * s, c}}, true
	case "RY":
		return matrix{{c, -s}, {s, c}}, true
	case "RZ":
		return matrix{{phase(-theta / 2), 0}, {0, phase(theta / 2)}}, true
	case "PHASESHIFT":
		return matrix{{1, 0}, {0, phase(theta)}}, true
	}
	return matrix{}, false
}

// apply applies u to target on the amplitudes whose control bits are all set.
func (s *StateVector) apply(u matrix, target int, controls ...int) {
	tBit := 1 << target
	cMask := 0
	for _, c := range controls {
		cMask |= 1 << c
	}
	for i := range s.Amplitudes {
		if i&tBit != 0 || i&cMask != cMask {
			continue
		}
		j := i | tBit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = u[0][0]*a0 + u[0][1]*a1
		s.Amplitudes[j] = u[1][0]*a0 + u[1][1]*a1
	}
}

func (s *StateVector) applySwap(q1, q2 int) {
	bit1, bit2 := 1<<q1, 1<<q2
	for i := range s.Amplitudes {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// applyIsing applies exp(-i theta/2 P⊗P) for P in {X, Y, Z}.
func (s *StateVector) applyIsing(pauli string, q1, q2 int, theta float64) {
	bit1, bit2 := 1<<q1, 1<<q2
	c, sn := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	if pauli == "ZZ" {
		for i := range s.Amplitudes {
			if (i&bit1 == 0) == (i&bit2 == 0) {
				s.Amplitudes[i] *= phase(-theta / 2)
			} else {
				s.Amplitudes[i] *= phase(theta / 2)
			}
		}
		return
	}
	for i := range s.Amplitudes {
		if i&bit1 != 0 {
			continue
		}
		j := i ^ bit1 ^ bit2
		a, b := s.Amplitudes[i], s.Amplitudes[j]
		// Y⊗Y flips the sign of the coupling between |00⟩ and |11⟩
		k := -1i * sn
		if pauli == "YY" && i&bit2 == 0 {
			k = 1i * sn
		}
		s.Amplitudes[i] = c*a + k*b
		s.Amplitudes[j] = k*a + c*b
	}
}

func (s *StateVector) applyReset(q int) {
	bit := 1 << q
	prob0 := 0.0
	for i, a := range s.Amplitudes {
		if i&bit == 0 {
			prob0 += real(a * cmplx.Conj(a))
		}
	}

	// |1⟩ with certainty: flip it back to |0⟩
	if prob0 < 1e-12 {
		s.apply(matrix{{0, 1}, {1, 0}}, q)
		return
	}
	norm := complex(math.Sqrt(prob0), 0)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			s.Amplitudes[i] /= norm
		} else {
			s.Amplitudes[i] = 0
		}
	}
}

// ApplyOp applies one circuit op. It returns false for gates the simulator
// does not know, such as custom gates.
func (s *StateVector) ApplyOp(op Op) bool {
	qs := op.Qubits
	switch op.Type {
	case "BARRIER", "MEASURE":
		return true
	case "RESET":
		s.applyReset(qs[0])
		return true
	case "SWAP":
		s.applySwap(qs[0], qs[1])
		return true
	case "XX", "YY", "ZZ":
		theta := 0.0
		if len(op.Params) > 0 {
			theta = op.Params[0]
		}
		s.applyIsing(op.Type, qs[0], qs[1], theta)
		return true
	case "CNOT", "CCNOT":
		u, _ := singleQubitGate("X", nil)
		s.apply(u, qs[len(qs)-1], qs[:len(qs)-1]...)
		return true
	case "CY", "CZ", "CPHASESHIFT":
		u, _ := singleQubitGate(op.Type[1:], op.Params)
		s.apply(u, qs[1], qs[0])
		return true
	}
	u, ok := singleQubitGate(op.Type, op.Params)
	if !ok || len(qs) != 1 {
		return false
	}
	s.apply(u, qs[0])
	return true
}

// BasisState is one computational basis state with non-zero probability.
type BasisState struct {
	Index int
	Prob  float64
	Phase float64
}

// BasisStates returns the basis states with non-negligible probability, in
// index order.
func (s *StateVector) BasisStates() []BasisState {
	var states []BasisState
	for i, amp := range s.Amplitudes {
		if prob := real(amp * cmplx.Conj(amp)); prob > 1e-10 {
			states = append(states, BasisState{Index: i, Prob: prob, Phase: cmplx.Phase(amp)})
		}
	}
	return states
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

func (s *StateVector) GetQubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, amp := range s.Amplitudes {
		prob := real(amp * cmplx.Conj(amp))
		for q := range s.NumQubits {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// SimulateCircuit runs the circuit on |0…0⟩. Measurements are treated as
// terminal, so the result is the distribution they would sample from.
func SimulateCircuit(c *Circuit) (*StateVector, error) {
	switch {
	case c.Classical:
		return nil, fmt.Errorf("program has classical control flow")
	case c.NumQubits > maxSimQubits:
		return nil, fmt.Errorf("%d qubits exceed the simulator limit of %d", c.NumQubits, maxSimQubits)
	}

	ops := slices.Clone(c.Ops)
	slices.SortStableFunc(ops, func(a, b Op) int { return a.Step - b.Step })

	state := NewStateVector(c.NumQubits)
	for _, op := range ops {
		if !state.ApplyOp(op) {
			return nil, fmt.Errorf("gate %s cannot be simulated", op.Type)
		}
	}
	return state, nil
}
