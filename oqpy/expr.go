package oqpy

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Expr is an OpenQASM expression.
type Expr interface {
	// IR renders the expression as OpenQASM source.
	IR() string
	// ExprType is the static type of the expression, or nil when unknown.
	ExprType() *Type
}

type IntLit int64

func (l IntLit) IR() string    { return strconv.FormatInt(int64(l), 10) }
func (IntLit) ExprType() *Type { return IntType() }

type FloatLit float64

func (l FloatLit) IR() string    { return formatFloat(float64(l)) }
func (FloatLit) ExprType() *Type { return FloatType() }

// AngleLit is a float literal printed in pi notation where possible.
type AngleLit float64

func (l AngleLit) IR() string    { return FormatAngle(float64(l)) }
func (AngleLit) ExprType() *Type { return AngleType() }

type BoolLit bool

func (l BoolLit) IR() string    { return strconv.FormatBool(bool(l)) }
func (BoolLit) ExprType() *Type { return BoolType() }

// BitString is a bit-register literal such as "0101".
type BitString string

func (l BitString) IR() string      { return strconv.Quote(string(l)) }
func (l BitString) ExprType() *Type { return BitType(len(l)) }

type DurationLit time.Duration

func (l DurationLit) IR() string {
	d := time.Duration(l)
	switch {
	case d == 0:
		return "0ns"
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	case d%time.Millisecond == 0:
		return fmt.Sprintf("%dms", d/time.Millisecond)
	case d%time.Microsecond == 0:
		return fmt.Sprintf("%dus", d/time.Microsecond)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
func (DurationLit) ExprType() *Type { return DurationType() }

// Ident refers to a named value that is not tracked as a Var, such as an
// externally defined frame or waveform.
type Ident struct {
	Name string
	Type *Type
}

func (i *Ident) IR() string      { return i.Name }
func (i *Ident) ExprType() *Type { return i.Type }

// PhysicalQubit is a hardware qubit reference ($n).
type PhysicalQubit int

func (q PhysicalQubit) IR() string    { return fmt.Sprintf("$%d", int(q)) }
func (PhysicalQubit) ExprType() *Type { return QubitType(0) }

// Index selects one element of a register or array.
type Index struct {
	Base  Expr
	Index Expr
}

func (x *Index) IR() string { return fmt.Sprintf("%s[%s]", x.Base.IR(), x.Index.IR()) }

func (x *Index) ExprType() *Type {
	t := x.Base.ExprType()
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindQubit:
		return QubitType(0)
	case KindBit:
		return BitType(0)
	case KindArray:
		if len(t.Dims) <= 1 {
			return t.Elem
		}
		return ArrayType(t.Elem, t.Dims[1:]...)
	default:
		return nil
	}
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true, "&&": true, "||": true,
}

// Binary is a binary operation. Nested binary operands are parenthesized.
type Binary struct {
	Op   string
	L, R Expr
}

func (b *Binary) IR() string {
	return fmt.Sprintf("%s %s %s", operand(b.L), b.Op, operand(b.R))
}

func (b *Binary) ExprType() *Type {
	if comparisonOps[b.Op] {
		return BoolType()
	}
	lt, rt := b.L.ExprType(), b.R.ExprType()
	if lt != nil && lt.Kind == KindFloat || rt != nil && rt.Kind == KindFloat {
		return FloatType()
	}
	if lt != nil && lt.Kind == KindAngle {
		return AngleType()
	}
	return IntType()
}

// Unary is a prefix operation such as ! or -.
type Unary struct {
	Op string
	X  Expr
}

func (u *Unary) IR() string { return u.Op + operand(u.X) }

func (u *Unary) ExprType() *Type {
	if u.Op == "!" {
		return BoolType()
	}
	return u.X.ExprType()
}

func operand(e Expr) string {
	if _, ok := e.(*Binary); ok {
		return "(" + e.IR() + ")"
	}
	return e.IR()
}

// Call invokes a subroutine or extern function.
type Call struct {
	Name    string
	Args    []Expr
	Returns *Type
}

func (c *Call) IR() string      { return c.Name + "(" + joinIR(c.Args) + ")" }
func (c *Call) ExprType() *Type { return c.Returns }

// MeasureExpr measures a qubit into a bit.
type MeasureExpr struct {
	Qubit Expr
}

func (m *MeasureExpr) IR() string    { return "measure " + m.Qubit.IR() }
func (*MeasureExpr) ExprType() *Type { return BitType(0) }

// Range is an inclusive OpenQASM range [start:step:stop]. Step may be nil.
type Range struct {
	Start, Stop, Step Expr
}

func (r *Range) IR() string {
	if r.Step == nil {
		return fmt.Sprintf("[%s:%s]", r.Start.IR(), r.Stop.IR())
	}
	return fmt.Sprintf("[%s:%s:%s]", r.Start.IR(), r.Step.IR(), r.Stop.IR())
}
func (*Range) ExprType() *Type { return IntType() }

// ArrayLit is a brace-enclosed array initializer.
type ArrayLit struct {
	Elems []Expr
	Type  *Type
}

func (a *ArrayLit) IR() string      { return "{" + joinIR(a.Elems) + "}" }
func (a *ArrayLit) ExprType() *Type { return a.Type }

func joinIR(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.IR()
	}
	return strings.Join(parts, ", ")
}

// ToExpr converts a Go value into an expression. Expressions are returned as is.
func ToExpr(v any) (Expr, error) {
	switch x := v.(type) {
	case Expr:
		return x, nil
	case bool:
		return BoolLit(x), nil
	case int:
		return IntLit(x), nil
	case int8:
		return IntLit(x), nil
	case int16:
		return IntLit(x), nil
	case int32:
		return IntLit(x), nil
	case int64:
		return IntLit(x), nil
	case uint:
		return IntLit(x), nil
	case uint8:
		return IntLit(x), nil
	case uint16:
		return IntLit(x), nil
	case uint32:
		return IntLit(x), nil
	case float32:
		return FloatLit(x), nil
	case float64:
		return FloatLit(x), nil
	case time.Duration:
		return DurationLit(x), nil
	case nil:
		return nil, fmt.Errorf("oqpy: cannot convert nil to an expression")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("oqpy: cannot convert %T to an expression", v)
	}
	if rv.Len() == 0 {
		return nil, fmt.Errorf("oqpy: cannot convert empty %T to an array", v)
	}
	elems := make([]Expr, rv.Len())
	for i := range elems {
		e, err := ToExpr(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("oqpy: element %d: %w", i, err)
		}
		elems[i] = e
	}
	first := elems[0].ExprType()
	if first == nil {
		return nil, fmt.Errorf("oqpy: untyped array element in %T", v)
	}
	var t *Type
	if first.Kind == KindArray {
		t = ArrayType(first.Elem, append([]int{len(elems)}, first.Dims...)...)
	} else {
		t = ArrayType(first, len(elems))
	}
	return &ArrayLit{Elems: elems, Type: t}, nil
}
