package autoqasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// qubitOperand resolves a qubit argument. Ints address the global register
// (physical qubits inside a verbatim block), "$n" strings address physical
// qubits, qubit variables are used as they are, and int expressions index the
// register at runtime. Qubits of the global register are registered.
func (c *Context) qubitOperand(q Value) (oqpy.Expr, error) {
	e, index, err := c.resolveQubit(q)
	if err != nil {
		return nil, err
	}
	if index >= 0 {
		c.RegisterQubit(index)
	}
	return e, nil
}

// resolveQubit is qubitOperand without registration. index is -1 unless the
// operand is a fixed element of the global register.
func (c *Context) resolveQubit(q Value) (e oqpy.Expr, index int, err error) {
	switch x := q.(type) {
	case int:
		if x < 0 {
			return nil, -1, &InvalidArgumentsError{Function: "qubit", Reason: fmt.Sprintf("negative qubit index %d", x)}
		}
		if c.inVerbatimBlock {
			return oqpy.PhysicalQubit(x), -1, nil
		}
		return &oqpy.Index{Base: qubitRegister, Index: oqpy.IntLit(x)}, x, nil
	case string:
		n, err := strconv.Atoi(strings.TrimPrefix(x, "$"))
		if !strings.HasPrefix(x, "$") || err != nil || n < 0 {
			return nil, -1, &InvalidArgumentsError{Function: "qubit", Reason: fmt.Sprintf("%q is not a physical qubit such as \"$0\"", x)}
		}
		return oqpy.PhysicalQubit(n), -1, nil
	case oqpy.PhysicalQubit:
		return x, -1, nil
	case oqpy.Expr:
		t := x.ExprType()
		if t != nil && t.Kind == oqpy.KindQubit {
			return x, -1, nil
		}
		if t != nil && t.Kind == oqpy.KindInt {
			if _, ok := c.DeclaredQubits(); !ok {
				return nil, -1, &UnknownQubitCountError{}
			}
			return &oqpy.Index{Base: qubitRegister, Index: x}, -1, nil
		}
		return nil, -1, &InvalidArgumentsError{Function: "qubit", Reason: fmt.Sprintf("cannot use %s %s as a qubit", t, x.IR())}
	}
	return nil, -1, &InvalidArgumentsError{Function: "qubit", Reason: fmt.Sprintf("cannot use %T as a qubit", q)}
}

func (c *Context) resolveQubits(qubits []Value) ([]oqpy.Expr, []int, error) {
	exprs := make([]oqpy.Expr, len(qubits))
	var indices []int
	for i, q := range qubits {
		e, index, err := c.resolveQubit(q)
		if err != nil {
			return nil, nil, err
		}
		exprs[i] = e
		if index >= 0 {
			indices = append(indices, index)
		}
	}
	return exprs, indices, nil
}

// Measure measures the given qubits. One qubit gives a bit variable, several
// give a bit register with one element per qubit.
func Measure(ctx *Context, qubits ...Value) (*oqpy.Var, error) {
	prog, err := currentProgram(ctx, "measure")
	if err != nil {
		return nil, err
	}
	if len(qubits) == 0 {
		return nil, &InvalidArgumentsError{Function: "measure", Reason: "no qubits to measure"}
	}
	targets, indices, err := ctx.resolveQubits(qubits)
	if err != nil {
		return nil, err
	}
	for _, i := range indices {
		ctx.RegisterQubit(i)
	}

	name, err := ctx.NextVarName(oqpy.KindBit)
	if err != nil {
		return nil, err
	}
	if len(targets) == 1 {
		v := oqpy.NewVar(name, Bit, &oqpy.MeasureExpr{Qubit: targets[0]})
		return v, prog.Declare(v)
	}

	t := oqpy.BitType(len(targets))
	v := oqpy.NewVar(name, t, t.Zero())
	if err := prog.Declare(v); err != nil {
		return nil, err
	}
	for i, q := range targets {
		prog.AddStatement(&oqpy.Assign{
			Target: &oqpy.Index{Base: v, Index: oqpy.IntLit(i)},
			Value:  &oqpy.MeasureExpr{Qubit: q},
		})
	}
	return v, nil
}

// Reset returns a qubit to the zero state.
func Reset(ctx *Context, qubit Value) error {
	prog, err := currentProgram(ctx, "reset")
	if err != nil {
		return err
	}
	q, err := ctx.qubitOperand(qubit)
	if err != nil {
		return err
	}
	prog.Reset(q)
	return nil
}

// Barrier prevents reordering across it; with no qubits it spans all of them.
func Barrier(ctx *Context, qubits ...Value) error {
	prog, err := currentProgram(ctx, "barrier")
	if err != nil {
		return err
	}
	targets, indices, err := ctx.resolveQubits(qubits)
	if err != nil {
		return err
	}
	for _, i := range indices {
		ctx.RegisterQubit(i)
	}
	prog.Barrier(targets...)
	return nil
}
