package oqpy

import (
	"fmt"
	"strings"
)

// Statement is a single OpenQASM statement.
type Statement interface {
	write(p *printer)
}

type printer struct {
	sb    strings.Builder
	depth int
}

func (p *printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("    ", p.depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) body(stmts []Statement) {
	p.depth++
	for _, s := range stmts {
		s.write(p)
	}
	p.depth--
}

func (p *printer) block(header string, stmts []Statement) {
	p.line("%s {", header)
	p.body(stmts)
	p.line("}")
}

// Declare declares a variable, with its initializer when it has one.
type Declare struct {
	Var *Var
}

func (s *Declare) write(p *printer) { p.line("%s;", s.Var.declaration()) }

// Assign stores Value into Target.
type Assign struct {
	Target Expr
	Value  Expr
}

func (s *Assign) write(p *printer) { p.line("%s = %s;", s.Target.IR(), s.Value.IR()) }

// ExprStatement evaluates an expression for its side effects.
type ExprStatement struct {
	Expr Expr
}

func (s *ExprStatement) write(p *printer) { p.line("%s;", s.Expr.IR()) }

// GateCall applies a gate.
type GateCall struct {
	Name   string
	Args   []Expr
	Qubits []Expr
}

func (s *GateCall) write(p *printer) {
	if len(s.Args) == 0 {
		p.line("%s %s;", s.Name, joinIR(s.Qubits))
		return
	}
	p.line("%s(%s) %s;", s.Name, joinIR(s.Args), joinIR(s.Qubits))
}

type Reset struct {
	Qubit Expr
}

func (s *Reset) write(p *printer) { p.line("reset %s;", s.Qubit.IR()) }

type Barrier struct {
	Qubits []Expr
}

func (s *Barrier) write(p *printer) {
	if len(s.Qubits) == 0 {
		p.line("barrier;")
		return
	}
	p.line("barrier %s;", joinIR(s.Qubits))
}

// Delay idles the targets (qubits or frames) for Duration.
type Delay struct {
	Duration Expr
	Targets  []Expr
}

func (s *Delay) write(p *printer) { p.line("delay[%s] %s;", s.Duration.IR(), joinIR(s.Targets)) }

type If struct {
	Cond Expr
	Then []Statement
	Else []Statement
}

func (s *If) write(p *printer) {
	p.line("if (%s) {", s.Cond.IR())
	p.body(s.Then)
	if len(s.Else) == 0 {
		p.line("}")
		return
	}
	p.line("} else {")
	p.body(s.Else)
	p.line("}")
}

// ForIn loops Var over the values of Iter.
type ForIn struct {
	Var  *Var
	Iter Expr
	Body []Statement
}

func (s *ForIn) write(p *printer) {
	p.block(fmt.Sprintf("for %s %s in %s", s.Var.Type, s.Var.Name, s.Iter.IR()), s.Body)
}

type While struct {
	Cond Expr
	Body []Statement
}

func (s *While) write(p *printer) { p.block(fmt.Sprintf("while (%s)", s.Cond.IR()), s.Body) }

type Break struct{}

func (Break) write(p *printer) { p.line("break;") }

type Continue struct{}

func (Continue) write(p *printer) { p.line("continue;") }

// Return leaves a subroutine. Value may be nil.
type Return struct {
	Value Expr
}

func (s *Return) write(p *printer) {
	if s.Value == nil {
		p.line("return;")
		return
	}
	p.line("return %s;", s.Value.IR())
}

// Pragma is a pragma line; it has no trailing semicolon.
type Pragma struct {
	Text string
}

func (s *Pragma) write(p *printer) { p.line("#pragma %s", s.Text) }

type Box struct {
	Body []Statement
}

func (s *Box) write(p *printer) { p.block("box", s.Body) }

// GateDef defines a unitary gate over angle and qubit arguments.
type GateDef struct {
	Name   string
	Angles []*Var
	Qubits []*Var
	Body   []Statement
}

func (d *GateDef) write(p *printer) {
	qubits := make([]string, len(d.Qubits))
	for i, q := range d.Qubits {
		qubits[i] = q.Name
	}
	header := "gate " + d.Name
	if len(d.Angles) > 0 {
		angles := make([]string, len(d.Angles))
		for i, a := range d.Angles {
			angles[i] = a.Name
		}
		header += "(" + strings.Join(angles, ", ") + ")"
	}
	p.block(header+" "+strings.Join(qubits, ", "), d.Body)
}

// SubroutineDef defines a subroutine. Returns is nil for void subroutines.
type SubroutineDef struct {
	Name    string
	Params  []*Var
	Returns *Type
	Body    []Statement
}

func (d *SubroutineDef) write(p *printer) {
	params := make([]string, len(d.Params))
	for i, v := range d.Params {
		params[i] = v.Type.String() + " " + v.Name
	}
	header := fmt.Sprintf("def %s(%s)", d.Name, strings.Join(params, ", "))
	if d.Returns != nil {
		header += " -> " + d.Returns.String()
	}
	p.block(header, d.Body)
}

// DefCal defines the pulse-level calibration of a gate on physical qubits.
// Angles are either literals or free angle variables.
type DefCal struct {
	Name   string
	Angles []Expr
	Qubits []Expr
	Body   []Statement
}

func (d *DefCal) write(p *printer) {
	header := "defcal " + d.Name
	if len(d.Angles) > 0 {
		args := make([]string, len(d.Angles))
		for i, a := range d.Angles {
			if v, ok := a.(*Var); ok {
				args[i] = v.Type.String() + " " + v.Name
			} else {
				args[i] = a.IR()
			}
		}
		header += "(" + strings.Join(args, ", ") + ")"
	}
	p.block(header+" "+joinIR(d.Qubits), d.Body)
}
