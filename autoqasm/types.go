package autoqasm

import (
	"fmt"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// Type descriptors for signatures.
var (
	Int   = oqpy.IntType()
	Float = oqpy.FloatType()
	Bool  = oqpy.BoolType()
	Bit   = oqpy.BitType(0)
	Angle = oqpy.AngleType()
	Qubit = oqpy.QubitType(0)
)

// Array describes an array of elem with the given dimensions.
func Array(elem *oqpy.Type, dims ...int) *oqpy.Type { return oqpy.ArrayType(elem, dims...) }

// BitRegister describes a register of n bits.
func BitRegister(n int) *oqpy.Type { return oqpy.BitType(n) }

// IntVar returns a fresh int[32] variable initialized to init, which may be nil.
// The variable is declared at the top of the current program.
func IntVar(ctx *Context, init Value) (*oqpy.Var, error) { return newVar(ctx, Int, init) }

func FloatVar(ctx *Context, init Value) (*oqpy.Var, error) { return newVar(ctx, Float, init) }

func BoolVar(ctx *Context, init Value) (*oqpy.Var, error) { return newVar(ctx, Bool, init) }

func BitVar(ctx *Context, init Value) (*oqpy.Var, error) { return newVar(ctx, Bit, init) }

// ArrayVar returns a fresh array variable. Arrays must be initialized, so a
// nil init is replaced by the zero value of the array type.
func ArrayVar(ctx *Context, elem *oqpy.Type, dims []int, init Value) (*oqpy.Var, error) {
	t := Array(elem, dims...)
	if init == nil {
		init = t.Zero()
	}
	return newVar(ctx, t, init)
}

func newVar(ctx *Context, t *oqpy.Type, init Value) (*oqpy.Var, error) {
	if !InActiveProgramConversionContext(ctx) {
		return nil, &OutsideProgramError{Operation: fmt.Sprintf("declaring a %s variable", t)}
	}
	prog, err := ctx.GetOqpyProgram(ScopeCurrent, ModeNone)
	if err != nil {
		return nil, err
	}
	name, err := ctx.NextVarName(t.Kind)
	if err != nil {
		return nil, err
	}
	var e oqpy.Expr
	if init != nil {
		if e, err = wrapValue(init); err != nil {
			return nil, err
		}
		if !assignable(t, e.ExprType()) {
			return nil, &InvalidArgumentsError{Function: name, Reason: fmt.Sprintf("cannot initialize %s with %s", t, e.ExprType())}
		}
	}
	v := oqpy.NewVar(name, t, e)
	prog.AddUndeclared(v)
	return v, nil
}

// isQasmType reports whether v only has a value when the program runs.
func isQasmType(v Value) bool {
	_, ok := v.(oqpy.Expr)
	return ok
}

// qasmType returns the OpenQASM type a value maps to, nil when it has none.
func qasmType(v Value) *oqpy.Type {
	switch x := v.(type) {
	case oqpy.Expr:
		return x.ExprType()
	case bool:
		return Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return Int
	case float32, float64:
		return Float
	}
	if e, err := oqpy.ToExpr(v); err == nil {
		return e.ExprType()
	}
	return nil
}

// wrapValue converts v into an expression.
func wrapValue(v Value) (oqpy.Expr, error) {
	e, err := oqpy.ToExpr(v)
	if err != nil {
		return nil, fmt.Errorf("autoqasm: %w", err)
	}
	return e, nil
}

// makeReturnInstance is the value a stubbed call to a function returning t
// evaluates to.
func makeReturnInstance(t *oqpy.Type) oqpy.Expr {
	return t.Zero()
}

// assignable reports whether a value of type from may be stored in a variable
// of type to. An unknown source type is accepted.
func assignable(to, from *oqpy.Type) bool {
	if from == nil {
		return true
	}
	switch to.Kind {
	case oqpy.KindInt, oqpy.KindFloat, oqpy.KindAngle:
		return from.IsNumeric() || from.Kind == oqpy.KindBit || from.Kind == oqpy.KindBool
	case oqpy.KindBool:
		return from.Kind == oqpy.KindBool || from.Kind == oqpy.KindBit || from.Kind == oqpy.KindInt
	case oqpy.KindBit:
		return from.Kind == oqpy.KindBit || from.Kind == oqpy.KindBool || from.Kind == oqpy.KindInt
	case oqpy.KindArray:
		return from.Kind == oqpy.KindArray && to.Elem.Kind == from.Elem.Kind && len(to.Dims) == len(from.Dims)
	default:
		return to.Kind == from.Kind
	}
}
