package oqpy

import (
	"fmt"
	"slices"
)

// Program accumulates OpenQASM statements and definitions.
//
// Statements are appended to the innermost open block. Block opens a new one
// for the duration of a callback, which is how if/for/while bodies and
// definition bodies are captured.
type Program struct {
	blocks      [][]Statement
	declared    map[string]*Var
	undeclared  []*Var
	gates       []*GateDef
	subroutines []*SubroutineDef
	defcals     []*DefCal

	pulseGrammar bool
}

// NewProgram returns an empty program with a single open top-level block.
func NewProgram() *Program {
	return &Program{
		blocks:   [][]Statement{nil},
		declared: make(map[string]*Var),
	}
}

// Depth is the number of open blocks, 1 at top level.
func (p *Program) Depth() int { return len(p.blocks) }

// AddStatement appends a statement to the innermost open block.
func (p *Program) AddStatement(s Statement) {
	top := len(p.blocks) - 1
	p.blocks[top] = append(p.blocks[top], s)
}

// Prepend inserts a statement at the start of the top-level block.
func (p *Program) Prepend(s Statement) {
	p.blocks[0] = slices.Insert(p.blocks[0], 0, s)
}

// Block runs fn with a fresh block open and returns the statements it added.
// The block is closed on every exit path.
func (p *Program) Block(fn func() error) ([]Statement, error) {
	p.blocks = append(p.blocks, nil)
	defer func() { p.blocks = p.blocks[:len(p.blocks)-1] }()
	if err := fn(); err != nil {
		return nil, err
	}
	return p.blocks[len(p.blocks)-1], nil
}

// Declare adds a declaration of v at the current position.
func (p *Program) Declare(v *Var) error {
	if _, ok := p.declared[v.Name]; ok {
		return fmt.Errorf("oqpy: variable %q already declared", v.Name)
	}
	p.MarkDeclared(v)
	p.AddStatement(&Declare{Var: v})
	return nil
}

// MarkDeclared records v as declared without emitting a statement. It is used
// for parameters and loop variables.
func (p *Program) MarkDeclared(v *Var) {
	p.declared[v.Name] = v
	p.undeclared = slices.DeleteFunc(p.undeclared, func(u *Var) bool { return u.Name == v.Name })
}

// AddUndeclared registers v for automatic declaration at the top of the program.
func (p *Program) AddUndeclared(v *Var) {
	if p.IsVarNameUsed(v.Name) {
		return
	}
	p.undeclared = append(p.undeclared, v)
}

// Set assigns value to v, scheduling v for automatic declaration if needed.
func (p *Program) Set(v *Var, value Expr) {
	p.AddUndeclared(v)
	p.AddStatement(&Assign{Target: v, Value: value})
}

// IsVarNameUsed reports whether name is declared or waiting to be declared.
func (p *Program) IsVarNameUsed(name string) bool {
	if _, ok := p.declared[name]; ok {
		return true
	}
	return slices.ContainsFunc(p.undeclared, func(v *Var) bool { return v.Name == name })
}

// Lookup returns the declared or pending variable with the given name.
func (p *Program) Lookup(name string) (*Var, bool) {
	if v, ok := p.declared[name]; ok {
		return v, true
	}
	for _, v := range p.undeclared {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// DeclaredVars returns the names of all declared variables, sorted.
func (p *Program) DeclaredVars() []string {
	names := make([]string, 0, len(p.declared))
	for name := range p.declared {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UndeclaredVars returns the variables awaiting automatic declaration.
func (p *Program) UndeclaredVars() []*Var { return slices.Clone(p.undeclared) }

// Gate applies gate name with the given arguments to qubits.
func (p *Program) Gate(qubits []Expr, name string, args ...Expr) {
	p.AddStatement(&GateCall{Name: name, Args: args, Qubits: qubits})
}

func (p *Program) Reset(q Expr) { p.AddStatement(&Reset{Qubit: q}) }

func (p *Program) Barrier(qubits ...Expr) { p.AddStatement(&Barrier{Qubits: qubits}) }

func (p *Program) Delay(d Expr, targets ...Expr) {
	p.AddStatement(&Delay{Duration: d, Targets: targets})
}

func (p *Program) Pragma(text string) { p.AddStatement(&Pragma{Text: text}) }

func (p *Program) Break() { p.AddStatement(Break{}) }

func (p *Program) Continue() { p.AddStatement(Continue{}) }

// Return adds a return statement; value may be nil.
func (p *Program) Return(value Expr) { p.AddStatement(&Return{Value: value}) }

// If adds an if statement. els may be nil.
func (p *Program) If(cond Expr, then, els func() error) error {
	thenBody, err := p.Block(then)
	if err != nil {
		return err
	}
	var elseBody []Statement
	if els != nil {
		if elseBody, err = p.Block(els); err != nil {
			return err
		}
	}
	p.AddStatement(&If{Cond: cond, Then: thenBody, Else: elseBody})
	return nil
}

// ForIn adds a for loop binding v to each value of iter.
func (p *Program) ForIn(v *Var, iter Expr, body func() error) error {
	p.MarkDeclared(v)
	stmts, err := p.Block(body)
	if err != nil {
		return err
	}
	p.AddStatement(&ForIn{Var: v, Iter: iter, Body: stmts})
	return nil
}

func (p *Program) While(cond Expr, body func() error) error {
	stmts, err := p.Block(body)
	if err != nil {
		return err
	}
	p.AddStatement(&While{Cond: cond, Body: stmts})
	return nil
}

func (p *Program) Box(body func() error) error {
	stmts, err := p.Block(body)
	if err != nil {
		return err
	}
	p.AddStatement(&Box{Body: stmts})
	return nil
}

// AddGate registers a gate definition, replacing one with the same name.
func (p *Program) AddGate(def *GateDef) {
	if i := slices.IndexFunc(p.gates, func(g *GateDef) bool { return g.Name == def.Name }); i >= 0 {
		p.gates[i] = def
		return
	}
	p.gates = append(p.gates, def)
}

func (p *Program) HasGate(name string) bool {
	return slices.ContainsFunc(p.gates, func(g *GateDef) bool { return g.Name == name })
}

// Gates returns the gate definitions in registration order.
func (p *Program) Gates() []*GateDef { return slices.Clone(p.gates) }

// AddSubroutine registers a subroutine definition, replacing one with the same name.
func (p *Program) AddSubroutine(def *SubroutineDef) {
	if i := slices.IndexFunc(p.subroutines, func(s *SubroutineDef) bool { return s.Name == def.Name }); i >= 0 {
		p.subroutines[i] = def
		return
	}
	p.subroutines = append(p.subroutines, def)
}

func (p *Program) HasSubroutine(name string) bool {
	_, ok := p.Subroutine(name)
	return ok
}

func (p *Program) Subroutine(name string) (*SubroutineDef, bool) {
	for _, s := range p.subroutines {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Subroutines returns the subroutine definitions in registration order.
func (p *Program) Subroutines() []*SubroutineDef { return slices.Clone(p.subroutines) }

func (p *Program) AddDefCal(def *DefCal) { p.defcals = append(p.defcals, def) }

func (p *Program) DefCals() []*DefCal { return slices.Clone(p.defcals) }

// EnablePulseGrammar makes ToIR announce the openpulse calibration grammar.
func (p *Program) EnablePulseGrammar() { p.pulseGrammar = true }

// Statements returns the top-level statements.
func (p *Program) Statements() []Statement { return slices.Clone(p.blocks[0]) }

// BodyStatements returns the top-level statements preceded by the automatic
// declarations. It is the body used when the program becomes a definition.
func (p *Program) BodyStatements() []Statement {
	stmts := make([]Statement, 0, len(p.undeclared)+len(p.blocks[0]))
	for _, v := range p.undeclared {
		stmts = append(stmts, &Declare{Var: v})
	}
	return append(stmts, p.blocks[0]...)
}

// Clone returns a copy whose tables and top-level block can be extended
// without affecting p. Statements themselves are shared.
func (p *Program) Clone() *Program {
	c := &Program{
		blocks:       [][]Statement{slices.Clone(p.blocks[0])},
		declared:     make(map[string]*Var, len(p.declared)),
		undeclared:   slices.Clone(p.undeclared),
		gates:        slices.Clone(p.gates),
		subroutines:  slices.Clone(p.subroutines),
		defcals:      slices.Clone(p.defcals),
		pulseGrammar: p.pulseGrammar,
	}
	for k, v := range p.declared {
		c.declared[k] = v
	}
	return c
}

// ToIR renders the program as OpenQASM 3 source.
func (p *Program) ToIR() string {
	pr := &printer{}
	pr.line("OPENQASM 3.0;")
	if p.pulseGrammar || len(p.defcals) > 0 {
		pr.line("defcalgrammar \"openpulse\";")
	}
	for _, g := range p.gates {
		g.write(pr)
	}
	for _, d := range p.defcals {
		d.write(pr)
	}
	for _, s := range p.subroutines {
		s.write(pr)
	}
	for _, s := range p.BodyStatements() {
		s.write(pr)
	}
	return pr.sb.String()
}
