package autoqasm

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinGates(t *testing.T) {
	tests := []struct {
		apply func(ctx *Context) error
		want  string
	}{
		{func(ctx *Context) error { return H(ctx, 0) }, "h __qubits__[0];"},
		{func(ctx *Context) error { return X(ctx, 0) }, "x __qubits__[0];"},
		{func(ctx *Context) error { return Y(ctx, 0) }, "y __qubits__[0];"},
		{func(ctx *Context) error { return Z(ctx, 0) }, "z __qubits__[0];"},
		{func(ctx *Context) error { return I(ctx, 0) }, "i __qubits__[0];"},
		{func(ctx *Context) error { return S(ctx, 0) }, "s __qubits__[0];"},
		{func(ctx *Context) error { return Si(ctx, 0) }, "si __qubits__[0];"},
		{func(ctx *Context) error { return T(ctx, 0) }, "t __qubits__[0];"},
		{func(ctx *Context) error { return Ti(ctx, 0) }, "ti __qubits__[0];"},
		{func(ctx *Context) error { return V(ctx, 0) }, "v __qubits__[0];"},
		{func(ctx *Context) error { return Vi(ctx, 0) }, "vi __qubits__[0];"},
		{func(ctx *Context) error { return Rx(ctx, 0, math.Pi) }, "rx(pi) __qubits__[0];"},
		{func(ctx *Context) error { return Ry(ctx, 0, -math.Pi/2) }, "ry(-pi/2) __qubits__[0];"},
		{func(ctx *Context) error { return Rz(ctx, 0, 0.1) }, "rz(0.1) __qubits__[0];"},
		{func(ctx *Context) error { return PhaseShift(ctx, 0, 1) }, "phaseshift(1.0) __qubits__[0];"},
		{func(ctx *Context) error { return CNot(ctx, 0, 1) }, "cnot __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return CY(ctx, 0, 1) }, "cy __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return CZ(ctx, 0, 1) }, "cz __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return Swap(ctx, 0, 1) }, "swap __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return CPhaseShift(ctx, 0, 1, math.Pi/4) }, "cphaseshift(pi/4) __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return XX(ctx, 0, 1, 0.5) }, "xx(0.5) __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return YY(ctx, 0, 1, 0.5) }, "yy(0.5) __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return ZZ(ctx, 0, 1, 0.5) }, "zz(0.5) __qubits__[0], __qubits__[1];"},
		{func(ctx *Context) error { return CCNot(ctx, 0, 1, 2) }, "ccnot __qubits__[0], __qubits__[1], __qubits__[2];"},
	}
	for _, tt := range tests {
		name, _, _ := strings.Cut(tt.want, " ")
		t.Run(name, func(t *testing.T) {
			prog, err := Main("gate", tt.apply).Build()
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(prog.ToIR()), "\n")
			assert.Equal(t, tt.want, lines[len(lines)-1])
		})
	}
}

func TestGateShapesMatchFunctions(t *testing.T) {
	assert.Len(t, builtinGates, 24)
	assert.Equal(t, gateShape{qubits: 2, angles: 1}, builtinGates["cphaseshift"])
	assert.Equal(t, gateShape{qubits: 3}, builtinGates["ccnot"])
}

func TestQubitOperands(t *testing.T) {
	ir := build(t, func(ctx *Context) error {
		if err := X(ctx, "$3"); err != nil {
			return err
		}
		i, err := IntVar(ctx, 1)
		if err != nil {
			return err
		}
		return H(ctx, i)
	}, WithNumQubits(2))
	assert.Equal(t, "OPENQASM 3.0;\nint[32] __int_0__ = 1;\nqubit[2] __qubits__;\nx $3;\nh __qubits__[__int_0__];\n", ir)

	bad := []Value{-1, "3", "$x", 1.5, true}
	for _, q := range bad {
		_, err := Main("main", func(ctx *Context) error { return H(ctx, q) }).Build()
		var invalid *InvalidArgumentsError
		assert.ErrorAs(t, err, &invalid, "%v", q)
	}
}

func TestGateAngleMustBeNumeric(t *testing.T) {
	_, err := Main("main", func(ctx *Context) error {
		b, err := BoolVar(ctx, true)
		if err != nil {
			return err
		}
		return Rx(ctx, 0, b)
	}).Build()
	var invalid *InvalidArgumentsError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "is not an angle")
}

func TestGateOutsideProgram(t *testing.T) {
	var outside *OutsideProgramError
	assert.ErrorAs(t, H(nil, 0), &outside)
	assert.ErrorAs(t, CNot(NewProgramConversionContext(UserConfig{}), 0, 1), &outside)
}
