package autoqasm

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// sourceError records where in user code an operator was called when a body
// it ran failed.
type sourceError struct {
	file string
	line int
	err  error
}

func (e *sourceError) Error() string { return fmt.Sprintf("%s:%d: %v", e.file, e.line, e.err) }

func (e *sourceError) Unwrap() error { return e.err }

// atCaller tags err with the position of the caller of the exported operator
// that calls it. Errors already tagged keep their innermost position.
func atCaller(err error) error {
	if err == nil {
		return nil
	}
	var se *sourceError
	if errors.As(err, &se) {
		return err
	}
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return err
	}
	return &sourceError{file: filepath.Base(file), line: line, err: err}
}

func noop() error { return nil }

// If runs then when cond holds and els otherwise; els may be nil. A Go bool
// selects the branch while converting. A bool or bit expression emits an
// OpenQASM if statement containing both branches.
func If(ctx *Context, cond Value, then, els func() error) error {
	if then == nil {
		then = noop
	}
	if c, ok := cond.(bool); ok {
		if c {
			return atCaller(then())
		}
		if els != nil {
			return atCaller(els())
		}
		return nil
	}

	e, err := conditionExpr(cond)
	if err != nil {
		return err
	}
	prog, err := currentProgram(ctx, "if")
	if err != nil {
		return err
	}
	return atCaller(prog.If(e, then, els))
}

// QasmRange is a range iterated by an OpenQASM for loop rather than unrolled.
type QasmRange struct {
	start, stop, step Value
}

// Range returns the half-open range [start, stop) with an optional step.
func Range(start, stop Value, step ...Value) *QasmRange {
	r := &QasmRange{start: start, stop: stop}
	if len(step) > 0 {
		r.step = step[0]
	}
	return r
}

// expr renders the range inclusively, the way OpenQASM ranges are written.
func (r *QasmRange) expr() (*oqpy.Range, error) {
	start, err := wrapValue(r.start)
	if err != nil {
		return nil, err
	}
	out := &oqpy.Range{Start: start}

	descending := false
	if r.step != nil {
		if out.Step, err = wrapValue(r.step); err != nil {
			return nil, err
		}
		if n, ok := r.step.(int); ok && n < 0 {
			descending = true
		}
	}

	switch stop := r.stop.(type) {
	case int:
		if descending {
			out.Stop = oqpy.IntLit(stop + 1)
		} else {
			out.Stop = oqpy.IntLit(stop - 1)
		}
	default:
		e, err := wrapValue(stop)
		if err != nil {
			return nil, err
		}
		op := "-"
		if descending {
			op = "+"
		}
		out.Stop = &oqpy.Binary{Op: op, L: e, R: oqpy.IntLit(1)}
	}
	return out, nil
}

// For runs body for each element of iter. An int n iterates 0..n-1 and a
// slice or array its elements, both unrolled while converting. A *QasmRange
// emits an OpenQASM for loop whose int[32] loop variable is passed to body.
func For(ctx *Context, iter Value, body func(i Value) error) error {
	switch it := iter.(type) {
	case int:
		for i := 0; i < it; i++ {
			if err := body(i); err != nil {
				return atCaller(err)
			}
		}
		return nil
	case *QasmRange:
		r, err := it.expr()
		if err != nil {
			return err
		}
		prog, err := currentProgram(ctx, "for")
		if err != nil {
			return err
		}
		name, err := ctx.NextVarName(oqpy.KindInt)
		if err != nil {
			return err
		}
		v := oqpy.NewVar(name, Int, nil)
		return atCaller(prog.ForIn(v, r, func() error { return body(v) }))
	}

	rv := reflect.ValueOf(iter)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return &InvalidArgumentsError{Function: "for", Reason: fmt.Sprintf("cannot iterate over %T", iter)}
	}
	for i := 0; i < rv.Len(); i++ {
		if err := body(rv.Index(i).Interface()); err != nil {
			return atCaller(err)
		}
	}
	return nil
}

// While runs body as long as cond holds. cond is evaluated once when it
// returns an expression, in which case an OpenQASM while loop is emitted.
func While(ctx *Context, cond func() (Value, error), body func() error) error {
	c, err := cond()
	if err != nil {
		return atCaller(err)
	}
	if b, ok := c.(bool); ok {
		for b {
			if err := body(); err != nil {
				return atCaller(err)
			}
			if c, err = cond(); err != nil {
				return atCaller(err)
			}
			if b, ok = c.(bool); !ok {
				return &UnsupportedConditionalExpressionError{Type: fmt.Sprintf("%T (condition changed from bool)", c)}
			}
		}
		return nil
	}

	e, err := conditionExpr(c)
	if err != nil {
		return err
	}
	prog, err := currentProgram(ctx, "while")
	if err != nil {
		return err
	}
	return atCaller(prog.While(e, body))
}

// Break emits a break statement for the enclosing OpenQASM loop.
func Break(ctx *Context) error {
	prog, err := currentProgram(ctx, "break")
	if err != nil {
		return err
	}
	prog.Break()
	return nil
}

func Continue(ctx *Context) error {
	prog, err := currentProgram(ctx, "continue")
	if err != nil {
		return err
	}
	prog.Continue()
	return nil
}

// Return emits a return statement in the subroutine being converted. value
// may be nil.
func Return(ctx *Context, value Value) error {
	prog, err := currentProgram(ctx, "return")
	if err != nil {
		return err
	}
	if value == nil {
		prog.Return(nil)
		return nil
	}
	e, err := wrapValue(value)
	if err != nil {
		return err
	}
	prog.Return(e)
	return nil
}

// Assign stores value under name. Go values are returned untouched. An
// expression is assigned to the variable called name, which is declared
// with the expression's type on first use.
func Assign(ctx *Context, name string, value Value) (Value, error) {
	if !isQasmType(value) {
		return value, nil
	}
	e := value.(oqpy.Expr)
	prog, err := currentProgram(ctx, "assignment")
	if err != nil {
		return nil, err
	}

	if ctx.IsVarNameUsed(name) {
		v, _ := prog.Lookup(name)
		if !assignable(v.Type, e.ExprType()) {
			return nil, &InvalidArgumentsError{
				Function: "assignment",
				Reason:   fmt.Sprintf("cannot assign %s to %s %s", e.ExprType(), v.Type, name),
			}
		}
		prog.AddStatement(&oqpy.Assign{Target: v, Value: e})
		return v, nil
	}

	t := e.ExprType()
	if t == nil || t.Kind == oqpy.KindQubit {
		return nil, &InvalidArgumentsError{Function: "assignment", Reason: fmt.Sprintf("cannot declare %s from %s", name, e.IR())}
	}
	v := oqpy.NewVar(name, t, e)
	if err := prog.Declare(v); err != nil {
		return nil, err
	}
	return v, nil
}

func Eq(ctx *Context, a, b Value) (Value, error) { return compare(ctx, "==", a, b) }
func Ne(ctx *Context, a, b Value) (Value, error) { return compare(ctx, "!=", a, b) }
func Lt(ctx *Context, a, b Value) (Value, error) { return compare(ctx, "<", a, b) }
func Le(ctx *Context, a, b Value) (Value, error) { return compare(ctx, "<=", a, b) }
func Gt(ctx *Context, a, b Value) (Value, error) { return compare(ctx, ">", a, b) }
func Ge(ctx *Context, a, b Value) (Value, error) { return compare(ctx, ">=", a, b) }

// And is the logical conjunction of a and b.
func And(ctx *Context, a, b Value) (Value, error) { return logical(ctx, "&&", a, b) }

// Or is the logical disjunction of a and b.
func Or(ctx *Context, a, b Value) (Value, error) { return logical(ctx, "||", a, b) }

// Not negates a.
func Not(ctx *Context, a Value) (Value, error) {
	if b, ok := a.(bool); ok {
		return !b, nil
	}
	e, err := conditionExpr(a)
	if err != nil {
		return nil, err
	}
	return boolResult(ctx, &oqpy.Unary{Op: "!", X: e})
}

func Add(a, b Value) (Value, error) { return arith("+", a, b) }
func Sub(a, b Value) (Value, error) { return arith("-", a, b) }
func Mul(a, b Value) (Value, error) { return arith("*", a, b) }
func Div(a, b Value) (Value, error) { return arith("/", a, b) }

func compare(ctx *Context, op string, a, b Value) (Value, error) {
	if !isQasmType(a) && !isQasmType(b) {
		return compareStatic(op, a, b)
	}
	l, err := wrapValue(a)
	if err != nil {
		return nil, err
	}
	r, err := wrapValue(b)
	if err != nil {
		return nil, err
	}
	return boolResult(ctx, &oqpy.Binary{Op: op, L: l, R: r})
}

func compareStatic(op string, a, b Value) (Value, error) {
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok || (op != "==" && op != "!=") {
			return nil, &InvalidArgumentsError{Function: op, Reason: fmt.Sprintf("cannot compare %T and %T", a, b)}
		}
		return (ab == bb) == (op == "=="), nil
	}
	x, okx := toFloat(a)
	y, oky := toFloat(b)
	if !okx || !oky {
		return nil, &InvalidArgumentsError{Function: op, Reason: fmt.Sprintf("cannot compare %T and %T", a, b)}
	}
	switch op {
	case "==":
		return x == y, nil
	case "!=":
		return x != y, nil
	case "<":
		return x < y, nil
	case "<=":
		return x <= y, nil
	case ">":
		return x > y, nil
	default:
		return x >= y, nil
	}
}

func logical(ctx *Context, op string, a, b Value) (Value, error) {
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		if op == "&&" {
			return ab && bb, nil
		}
		return ab || bb, nil
	}
	l, err := conditionExpr(a)
	if err != nil {
		return nil, err
	}
	r, err := conditionExpr(b)
	if err != nil {
		return nil, err
	}
	return boolResult(ctx, &oqpy.Binary{Op: op, L: l, R: r})
}

// boolResult stores a boolean expression in a fresh variable of the current
// program.
func boolResult(ctx *Context, e oqpy.Expr) (Value, error) {
	prog, err := currentProgram(ctx, "comparison")
	if err != nil {
		return nil, err
	}
	name, err := ctx.NextVarName(oqpy.KindBool)
	if err != nil {
		return nil, err
	}
	v := oqpy.NewVar(name, Bool, nil)
	prog.Set(v, e)
	return v, nil
}

func arith(op string, a, b Value) (Value, error) {
	if !isQasmType(a) && !isQasmType(b) {
		ai, aInt := a.(int)
		bi, bInt := b.(int)
		if aInt && bInt {
			switch op {
			case "+":
				return ai + bi, nil
			case "-":
				return ai - bi, nil
			case "*":
				return ai * bi, nil
			}
			if bi == 0 {
				return nil, &InvalidArgumentsError{Function: op, Reason: "integer division by zero"}
			}
			return ai / bi, nil
		}
		x, okx := toFloat(a)
		y, oky := toFloat(b)
		if !okx || !oky {
			return nil, &InvalidArgumentsError{Function: op, Reason: fmt.Sprintf("unsupported operands %T and %T", a, b)}
		}
		switch op {
		case "+":
			return x + y, nil
		case "-":
			return x - y, nil
		case "*":
			return x * y, nil
		default:
			return x / y, nil
		}
	}
	l, err := wrapValue(a)
	if err != nil {
		return nil, err
	}
	r, err := wrapValue(b)
	if err != nil {
		return nil, err
	}
	if !l.ExprType().IsNumeric() && l.ExprType() != nil || !r.ExprType().IsNumeric() && r.ExprType() != nil {
		return nil, &InvalidArgumentsError{Function: op, Reason: fmt.Sprintf("unsupported operands %s and %s", l.ExprType(), r.ExprType())}
	}
	return &oqpy.Binary{Op: op, L: l, R: r}, nil
}

func toFloat(v Value) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// conditionExpr checks that v can be used as an OpenQASM condition.
func conditionExpr(v Value) (oqpy.Expr, error) {
	switch x := v.(type) {
	case bool:
		return oqpy.BoolLit(x), nil
	case oqpy.Expr:
		if x.ExprType().IsCondition() {
			return x, nil
		}
		return nil, &UnsupportedConditionalExpressionError{Type: x.ExprType().String()}
	}
	return nil, &UnsupportedConditionalExpressionError{Type: fmt.Sprintf("%T", v)}
}

// currentProgram returns the program classical statements are written to.
func currentProgram(ctx *Context, op string) (*oqpy.Program, error) {
	if !InActiveProgramConversionContext(ctx) {
		return nil, &OutsideProgramError{Operation: op}
	}
	return ctx.GetOqpyProgram(ScopeCurrent, ModeNone)
}
