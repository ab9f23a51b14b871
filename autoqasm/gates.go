package autoqasm

import (
	"fmt"

	"github.com/hershlalwani/autoqasm/oqpy"
)

type gateShape struct {
	qubits, angles int
}

// builtinGates lists the native gates and their operand counts.
var builtinGates = map[string]gateShape{
	"h": {1, 0}, "x": {1, 0}, "y": {1, 0}, "z": {1, 0}, "i": {1, 0},
	"s": {1, 0}, "si": {1, 0}, "t": {1, 0}, "ti": {1, 0}, "v": {1, 0}, "vi": {1, 0},
	"rx": {1, 1}, "ry": {1, 1}, "rz": {1, 1}, "phaseshift": {1, 1},
	"cnot": {2, 0}, "cy": {2, 0}, "cz": {2, 0}, "swap": {2, 0},
	"cphaseshift": {2, 1}, "xx": {2, 1}, "yy": {2, 1}, "zz": {2, 1},
	"ccnot": {3, 0},
}

// applyGate emits a gate call after checking that unitary operations are
// allowed and, inside a gate definition, that the operands are arguments of
// that definition.
func (c *Context) applyGate(name string, qubits, angles []Value) error {
	if !InActiveProgramConversionContext(c) {
		return &OutsideProgramError{Operation: fmt.Sprintf("gate %q", name)}
	}
	prog, err := c.GetOqpyProgram(ScopeCurrent, ModeUnitary)
	if err != nil {
		return err
	}
	targets, indices, err := c.resolveQubits(qubits)
	if err != nil {
		return err
	}
	args := make([]oqpy.Expr, len(angles))
	for i, a := range angles {
		if args[i], err = angleOperand(a); err != nil {
			return err
		}
	}
	if err := c.ValidateGateTargets(targets, args); err != nil {
		return err
	}
	for _, i := range indices {
		c.RegisterQubit(i)
	}
	prog.Gate(targets, name, args...)
	return nil
}

// angleOperand turns Go numbers into angle literals so that multiples of pi
// print as such.
func angleOperand(a Value) (oqpy.Expr, error) {
	if f, ok := toFloat(a); ok && !isQasmType(a) {
		return oqpy.AngleLit(f), nil
	}
	e, err := wrapValue(a)
	if err != nil {
		return nil, err
	}
	if t := e.ExprType(); t != nil && !t.IsNumeric() {
		return nil, &InvalidArgumentsError{Function: "gate", Reason: fmt.Sprintf("%s %s is not an angle", t, e.IR())}
	}
	return e, nil
}

func H(ctx *Context, target Value) error  { return ctx.applyGate("h", []Value{target}, nil) }
func X(ctx *Context, target Value) error  { return ctx.applyGate("x", []Value{target}, nil) }
func Y(ctx *Context, target Value) error  { return ctx.applyGate("y", []Value{target}, nil) }
func Z(ctx *Context, target Value) error  { return ctx.applyGate("z", []Value{target}, nil) }
func I(ctx *Context, target Value) error  { return ctx.applyGate("i", []Value{target}, nil) }
func S(ctx *Context, target Value) error  { return ctx.applyGate("s", []Value{target}, nil) }
func Si(ctx *Context, target Value) error { return ctx.applyGate("si", []Value{target}, nil) }
func T(ctx *Context, target Value) error  { return ctx.applyGate("t", []Value{target}, nil) }
func Ti(ctx *Context, target Value) error { return ctx.applyGate("ti", []Value{target}, nil) }
func V(ctx *Context, target Value) error  { return ctx.applyGate("v", []Value{target}, nil) }
func Vi(ctx *Context, target Value) error { return ctx.applyGate("vi", []Value{target}, nil) }

// Rotations and phase shifts take one qubit and one angle.

func Rx(ctx *Context, target, angle Value) error {
	return ctx.applyGate("rx", []Value{target}, []Value{angle})
}

func Ry(ctx *Context, target, angle Value) error {
	return ctx.applyGate("ry", []Value{target}, []Value{angle})
}

func Rz(ctx *Context, target, angle Value) error {
	return ctx.applyGate("rz", []Value{target}, []Value{angle})
}

func PhaseShift(ctx *Context, target, angle Value) error {
	return ctx.applyGate("phaseshift", []Value{target}, []Value{angle})
}

func CNot(ctx *Context, control, target Value) error {
	return ctx.applyGate("cnot", []Value{control, target}, nil)
}

func CY(ctx *Context, control, target Value) error {
	return ctx.applyGate("cy", []Value{control, target}, nil)
}

func CZ(ctx *Context, control, target Value) error {
	return ctx.applyGate("cz", []Value{control, target}, nil)
}

func Swap(ctx *Context, a, b Value) error {
	return ctx.applyGate("swap", []Value{a, b}, nil)
}

func CPhaseShift(ctx *Context, control, target, angle Value) error {
	return ctx.applyGate("cphaseshift", []Value{control, target}, []Value{angle})
}

// Ising couplings.

func XX(ctx *Context, a, b, angle Value) error {
	return ctx.applyGate("xx", []Value{a, b}, []Value{angle})
}

func YY(ctx *Context, a, b, angle Value) error {
	return ctx.applyGate("yy", []Value{a, b}, []Value{angle})
}

func ZZ(ctx *Context, a, b, angle Value) error {
	return ctx.applyGate("zz", []Value{a, b}, []Value{angle})
}

// CCNot is the Toffoli gate.
func CCNot(ctx *Context, control0, control1, target Value) error {
	return ctx.applyGate("ccnot", []Value{control0, control1, target}, nil)
}
