package oqpy

// Var is a named, typed OpenQASM variable. Init is the initializer used when
// the variable is declared; it may be nil.
type Var struct {
	Name string
	Type *Type
	Init Expr
}

// NewVar returns a variable of the given type.
func NewVar(name string, t *Type, init Expr) *Var {
	return &Var{Name: name, Type: t, Init: init}
}

func (v *Var) IR() string      { return v.Name }
func (v *Var) ExprType() *Type { return v.Type }

// IsQubit reports whether the variable names a qubit or qubit register.
func (v *Var) IsQubit() bool { return v.Type != nil && v.Type.Kind == KindQubit }

// declaration renders "type name" or "type name = init".
func (v *Var) declaration() string {
	if v.Init == nil {
		return v.Type.String() + " " + v.Name
	}
	return v.Type.String() + " " + v.Name + " = " + v.Init.IR()
}
