// Package oqpy builds OpenQASM 3 programs statement by statement.
//
// A Program keeps a stack of open blocks so that callers can nest if/for/while
// bodies, subroutine bodies and gate bodies without juggling slices themselves.
// ToIR renders the finished program as OpenQASM 3 text.
package oqpy

import (
	"fmt"
	"strings"
)

// Kind identifies the family of an OpenQASM type.
type Kind int

const (
	KindBit Kind = iota + 1
	KindBool
	KindInt
	KindFloat
	KindAngle
	KindArray
	KindQubit
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindBit:
		return "bit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindAngle:
		return "angle"
	case KindArray:
		return "array"
	case KindQubit:
		return "qubit"
	case KindDuration:
		return "duration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is an OpenQASM classical or quantum type.
// Size is the bit width for int/float/angle, the register length for bit and
// qubit (0 means a single bit or qubit). Arrays carry Elem and Dims.
type Type struct {
	Kind Kind
	Size int
	Elem *Type
	Dims []int
}

func IntType() *Type      { return &Type{Kind: KindInt, Size: 32} }
func FloatType() *Type    { return &Type{Kind: KindFloat, Size: 64} }
func BoolType() *Type     { return &Type{Kind: KindBool} }
func AngleType() *Type    { return &Type{Kind: KindAngle, Size: 32} }
func DurationType() *Type { return &Type{Kind: KindDuration} }

// BitType returns bit (size 0) or bit[size].
func BitType(size int) *Type { return &Type{Kind: KindBit, Size: size} }

// QubitType returns qubit (size 0) or qubit[size].
func QubitType(size int) *Type { return &Type{Kind: KindQubit, Size: size} }

// ArrayType returns array[elem, dims...].
func ArrayType(elem *Type, dims ...int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Dims: append([]int(nil), dims...)}
}

// String renders the type as it appears in a declaration.
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindBit, KindQubit:
		if t.Size > 0 {
			return fmt.Sprintf("%s[%d]", t.Kind, t.Size)
		}
		return t.Kind.String()
	case KindInt, KindFloat, KindAngle:
		return fmt.Sprintf("%s[%d]", t.Kind, t.Size)
	case KindArray:
		dims := make([]string, len(t.Dims))
		for i, d := range t.Dims {
			dims[i] = fmt.Sprint(d)
		}
		return fmt.Sprintf("array[%s, %s]", t.Elem, strings.Join(dims, ", "))
	default:
		return t.Kind.String()
	}
}

// Equal reports whether two types are structurally identical.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Size != o.Size || len(t.Dims) != len(o.Dims) {
		return false
	}
	for i := range t.Dims {
		if t.Dims[i] != o.Dims[i] {
			return false
		}
	}
	if t.Kind == KindArray {
		return t.Elem.Equal(o.Elem)
	}
	return true
}

// IsNumeric reports whether values of the type take part in arithmetic.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KindInt || t.Kind == KindFloat || t.Kind == KindAngle)
}

// IsCondition reports whether values of the type may be used as an if/while condition.
func (t *Type) IsCondition() bool {
	return t != nil && (t.Kind == KindBool || (t.Kind == KindBit && t.Size == 0))
}

// Zero returns the default value of the type, or nil for types without one
// (qubits).
func (t *Type) Zero() Expr {
	switch t.Kind {
	case KindBool:
		return BoolLit(false)
	case KindInt:
		return IntLit(0)
	case KindFloat, KindAngle:
		return FloatLit(0)
	case KindDuration:
		return DurationLit(0)
	case KindBit:
		if t.Size > 0 {
			return BitString(strings.Repeat("0", t.Size))
		}
		return IntLit(0)
	case KindArray:
		return zeroArray(t.Elem, t.Dims)
	default:
		return nil
	}
}

func zeroArray(elem *Type, dims []int) Expr {
	if len(dims) == 0 {
		return elem.Zero()
	}
	items := make([]Expr, dims[0])
	for i := range items {
		items[i] = zeroArray(elem, dims[1:])
	}
	return &ArrayLit{Elems: items, Type: ArrayType(elem, dims...)}
}
