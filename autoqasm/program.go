// Package autoqasm converts Go functions into OpenQASM 3 programs.
//
// A function built with Main, Subroutine or Gate receives a *Context and
// emits instructions through the gate, instruction and operator helpers of
// this package. Calling a Main function outside of any conversion builds a
// whole Program; calling any function from inside a conversion splices a
// subroutine definition, a gate definition or an inlined body into the
// program being built.
package autoqasm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// ProgramScope selects which program of the stack GetOqpyProgram returns.
type ProgramScope int

const (
	// ScopeCurrent is the innermost program, the one statements are written to.
	ScopeCurrent ProgramScope = iota
	// ScopeMain is the root program that receives definitions.
	ScopeMain
)

// ProgramMode is the kind of operation a caller is about to emit.
type ProgramMode int

const (
	ModeNone ProgramMode = iota
	ModeUnitary
	ModePulse
)

// DeviceConfig describes the target device.
type DeviceConfig struct {
	Name    string
	Pragmas []string
}

// SupportsPragma reports whether the device accepts the named pragma. A device
// without a name accepts every pragma.
func (d DeviceConfig) SupportsPragma(name string) bool {
	return d.Name == "" || slices.Contains(d.Pragmas, name)
}

// UserConfig is supplied once when a program build starts. NumQubits 0 means
// the register size is inferred from the qubits used.
type UserConfig struct {
	NumQubits int
	Device    DeviceConfig
}

type gateDefinitionRecord struct {
	name string
	args *GateArgs
}

type calibrationDefinitionRecord struct {
	name   string
	qubits []oqpy.Expr
	angles []oqpy.Expr
}

// ProgramConversionContext holds the state of one top-level program build:
// the stack of nested programs, the definitions being processed, the qubits
// seen and the variable name counter.
type ProgramConversionContext struct {
	userConfig     UserConfig
	returnVariable oqpy.Expr

	// Functions being converted as subroutines, with the stub used when one
	// of them is called again before its conversion finished.
	subroutinesProcessing map[*Function]*subroutineStub

	// Index 0 is the root program; it is never popped.
	oqpyProgramStack []*oqpy.Program

	gateDefinitionsProcessing        []gateDefinitionRecord
	calibrationDefinitionsProcessing []calibrationDefinitionRecord

	qubitsSeen      map[int]struct{}
	varIdx          int
	hasPulseControl bool
	inVerbatimBlock bool

	active  bool
	buildID string
}

// Context is the handle user functions receive.
type Context = ProgramConversionContext

// NewProgramConversionContext returns an inactive context with an empty root
// program. BuildProgram is the usual way to obtain an active one.
func NewProgramConversionContext(cfg UserConfig) *ProgramConversionContext {
	return &ProgramConversionContext{
		userConfig:            cfg,
		subroutinesProcessing: make(map[*Function]*subroutineStub),
		oqpyProgramStack:      []*oqpy.Program{oqpy.NewProgram()},
		qubitsSeen:            make(map[int]struct{}),
		buildID:               uuid.New().String(),
	}
}

// InActiveProgramConversionContext reports whether ctx belongs to a program
// build that has not finished yet.
func InActiveProgramConversionContext(ctx *Context) bool {
	return ctx != nil && ctx.active
}

// BuildProgram runs fn with an active conversion context. When parent is
// already active it is reused and left active on return; otherwise a new
// context is created from cfg and deactivated when fn returns, whatever the
// outcome.
func BuildProgram(parent *Context, cfg UserConfig, fn func(ctx *Context) error) error {
	if InActiveProgramConversionContext(parent) {
		return fn(parent)
	}

	ctx := NewProgramConversionContext(cfg)
	ctx.active = true
	log.Debugf("build %s: started", ctx.buildID)
	defer func() {
		ctx.active = false
		log.Debugf("build %s: finished", ctx.buildID)
	}()
	return fn(ctx)
}

// BuildID identifies the build this context belongs to.
func (c *ProgramConversionContext) BuildID() string { return c.buildID }

// UserConfig returns the configuration the build was started with.
func (c *ProgramConversionContext) UserConfig() UserConfig { return c.userConfig }

// GetOqpyProgram returns the current or root program after checking that an
// operation of the given mode is allowed where the conversion currently is.
func (c *ProgramConversionContext) GetOqpyProgram(scope ProgramScope, mode ProgramMode) (*oqpy.Program, error) {
	if n := len(c.gateDefinitionsProcessing); n > 0 && mode != ModeUnitary {
		return nil, &InvalidGateDefinitionError{
			Gate:   c.gateDefinitionsProcessing[n-1].name,
			Reason: "contains invalid operations; a gate definition must only call unitary gate operations",
		}
	}
	if n := len(c.calibrationDefinitionsProcessing); n > 0 && mode != ModePulse {
		return nil, &InvalidCalibrationDefinitionError{
			Gate:   c.calibrationDefinitionsProcessing[n-1].name,
			Reason: "contains invalid operations; a calibration definition must only call pulse operations",
		}
	}

	if scope == ScopeMain {
		return c.oqpyProgramStack[0], nil
	}
	return c.oqpyProgramStack[len(c.oqpyProgramStack)-1], nil
}

// rootProgram returns the program that receives definitions, whatever the
// current mode restrictions.
func (c *ProgramConversionContext) rootProgram() *oqpy.Program { return c.oqpyProgramStack[0] }

// PushOqpyProgram makes p the current program while fn runs.
func (c *ProgramConversionContext) PushOqpyProgram(p *oqpy.Program, fn func() error) error {
	c.oqpyProgramStack = append(c.oqpyProgramStack, p)
	defer func() { c.oqpyProgramStack = c.oqpyProgramStack[:len(c.oqpyProgramStack)-1] }()
	return fn()
}

// GateDefinition runs fn as the body of gate name. While fn runs only unitary
// operations on the arguments in args are allowed. The definition is added to
// the root program unless one with the same name exists.
func (c *ProgramConversionContext) GateDefinition(name string, args *GateArgs, fn func() error) error {
	c.gateDefinitionsProcessing = append(c.gateDefinitionsProcessing, gateDefinitionRecord{name: name, args: args})
	defer func() {
		c.gateDefinitionsProcessing = c.gateDefinitionsProcessing[:len(c.gateDefinitionsProcessing)-1]
	}()

	prog, err := c.GetOqpyProgram(ScopeCurrent, ModeUnitary)
	if err != nil {
		return err
	}
	body, err := prog.Block(fn)
	if err != nil {
		return err
	}

	root := c.rootProgram()
	if !root.HasGate(name) {
		root.AddGate(&oqpy.GateDef{Name: name, Angles: args.Angles(), Qubits: args.Qubits(), Body: body})
		log.Debugf("build %s: defined gate %s", c.buildID, name)
	}
	return nil
}

// CalibrationDefinition runs fn as the body of a calibration of gate name on
// the given physical qubits and angles. While fn runs only pulse operations
// are allowed.
func (c *ProgramConversionContext) CalibrationDefinition(name string, qubits, angles []oqpy.Expr, fn func() error) (*oqpy.DefCal, error) {
	c.calibrationDefinitionsProcessing = append(c.calibrationDefinitionsProcessing,
		calibrationDefinitionRecord{name: name, qubits: qubits, angles: angles})
	defer func() {
		c.calibrationDefinitionsProcessing = c.calibrationDefinitionsProcessing[:len(c.calibrationDefinitionsProcessing)-1]
	}()

	prog, err := c.GetOqpyProgram(ScopeCurrent, ModePulse)
	if err != nil {
		return nil, err
	}
	body, err := prog.Block(fn)
	if err != nil {
		return nil, err
	}
	return &oqpy.DefCal{Name: name, Angles: angles, Qubits: qubits, Body: body}, nil
}

// RegisterQubit records that the virtual qubit at index was used.
func (c *ProgramConversionContext) RegisterQubit(index int) {
	c.qubitsSeen[index] = struct{}{}
}

// Qubits returns the indices of the qubits used so far, sorted.
func (c *ProgramConversionContext) Qubits() []int {
	qubits := make([]int, 0, len(c.qubitsSeen))
	for q := range c.qubitsSeen {
		qubits = append(qubits, q)
	}
	slices.Sort(qubits)
	return qubits
}

// ValidateGateTargets checks the operands of an instruction about to be
// emitted. Inside a gate definition every qubit, and every angle that is a
// variable, must be one of the gate's arguments.
func (c *ProgramConversionContext) ValidateGateTargets(qubits, angles []oqpy.Expr) error {
	n := len(c.gateDefinitionsProcessing)
	if n == 0 {
		return nil
	}
	rec := c.gateDefinitionsProcessing[n-1]

	for _, q := range qubits {
		if !rec.args.hasQubit(q) {
			return &InvalidGateDefinitionError{
				Gate:    rec.name,
				Operand: q.IR(),
				Reason: fmt.Sprintf("uses qubit %q which is not an argument to the gate; "+
					"gates may only operate on qubits which are passed as arguments", q.IR()),
			}
		}
	}
	for _, a := range angles {
		v, ok := a.(*oqpy.Var)
		if !ok {
			continue
		}
		if !rec.args.hasAngle(v) {
			return &InvalidGateDefinitionError{
				Gate:    rec.name,
				Operand: v.Name,
				Reason: fmt.Sprintf("uses variable %q which is not an argument to the gate; "+
					"gates may only use variables which are passed as arguments", v.Name),
			}
		}
	}
	return nil
}

var varNameTemplates = map[oqpy.Kind]string{
	oqpy.KindArray: "__array_%d__",
	oqpy.KindBit:   "__bit_%d__",
	oqpy.KindBool:  "__bool_%d__",
	oqpy.KindFloat: "__float_%d__",
	oqpy.KindInt:   "__int_%d__",
}

// NextVarName returns a fresh name for a variable of the given kind.
func (c *ProgramConversionContext) NextVarName(kind oqpy.Kind) (string, error) {
	tmpl, ok := varNameTemplates[kind]
	if !ok {
		return "", fmt.Errorf("autoqasm: no variable name template for %s: %w", kind, errors.ErrUnsupported)
	}
	name := fmt.Sprintf(tmpl, c.varIdx)
	c.varIdx++
	return name, nil
}

// IsVarNameUsed reports whether name is declared, or pending declaration, in
// the current program.
func (c *ProgramConversionContext) IsVarNameUsed(name string) bool {
	return c.oqpyProgramStack[len(c.oqpyProgramStack)-1].IsVarNameUsed(name)
}

// DeclaredQubits returns the qubit count set by the user. ok is false when
// the count must be inferred.
func (c *ProgramConversionContext) DeclaredQubits() (n int, ok bool) {
	return c.userConfig.NumQubits, c.userConfig.NumQubits > 0
}

// ReturnVariable is the variable holding the result of the subroutine call
// converted last, or nil for a void subroutine.
func (c *ProgramConversionContext) ReturnVariable() oqpy.Expr { return c.returnVariable }

// MakeProgram wraps the root program into the build result.
func (c *ProgramConversionContext) MakeProgram() *Program {
	if c.hasPulseControl {
		c.oqpyProgramStack[0].EnablePulseGrammar()
	}
	numQubits, ok := c.DeclaredQubits()
	if qubits := c.Qubits(); !ok && len(qubits) > 0 {
		numQubits = qubits[len(qubits)-1] + 1
	}
	return &Program{
		root:            c.oqpyProgramStack[0],
		hasPulseControl: c.hasPulseControl,
		numQubits:       numQubits,
		buildID:         c.buildID,
	}
}

// GateArgs is the ordered argument list of a gate definition.
type GateArgs struct {
	args []*oqpy.Var
}

// AddQubit appends a qubit argument and returns its variable.
func (g *GateArgs) AddQubit(name string) *oqpy.Var {
	v := oqpy.NewVar(name, oqpy.QubitType(0), nil)
	g.args = append(g.args, v)
	return v
}

// AddAngle appends an angle argument and returns its variable.
func (g *GateArgs) AddAngle(name string) *oqpy.Var {
	v := oqpy.NewVar(name, oqpy.AngleType(), nil)
	g.args = append(g.args, v)
	return v
}

func (g *GateArgs) Len() int { return len(g.args) }

func (g *GateArgs) Qubits() []*oqpy.Var {
	return g.pick(true)
}

func (g *GateArgs) Angles() []*oqpy.Var {
	return g.pick(false)
}

// QubitIndices returns the positions of the qubit arguments.
func (g *GateArgs) QubitIndices() []int {
	return g.indices(true)
}

// AngleIndices returns the positions of the angle arguments.
func (g *GateArgs) AngleIndices() []int {
	return g.indices(false)
}

func (g *GateArgs) pick(qubits bool) []*oqpy.Var {
	var out []*oqpy.Var
	for _, v := range g.args {
		if v.IsQubit() == qubits {
			out = append(out, v)
		}
	}
	return out
}

func (g *GateArgs) indices(qubits bool) []int {
	var out []int
	for i, v := range g.args {
		if v.IsQubit() == qubits {
			out = append(out, i)
		}
	}
	return out
}

func (g *GateArgs) hasQubit(e oqpy.Expr) bool {
	v, ok := e.(*oqpy.Var)
	return ok && slices.ContainsFunc(g.Qubits(), func(q *oqpy.Var) bool { return q.Name == v.Name })
}

func (g *GateArgs) hasAngle(v *oqpy.Var) bool {
	return slices.ContainsFunc(g.Angles(), func(a *oqpy.Var) bool { return a.Name == v.Name })
}

// Program is the result of a build.
type Program struct {
	root            *oqpy.Program
	hasPulseControl bool
	numQubits       int
	buildID         string
}

// ToIR renders the program as OpenQASM 3.
func (p *Program) ToIR() string { return p.root.ToIR() }

// BindCalibrations returns a copy of p with the given calibrations defined.
func (p *Program) BindCalibrations(cals ...*GateCalibration) *Program {
	root := p.root.Clone()
	for _, cal := range cals {
		root.AddDefCal(cal.def)
	}
	root.EnablePulseGrammar()
	return &Program{root: root, hasPulseControl: true, numQubits: p.numQubits, buildID: p.buildID}
}

func (p *Program) HasPulseControl() bool { return p.hasPulseControl }

// NumQubits is the size of the qubit register, 0 if the program uses none.
func (p *Program) NumQubits() int { return p.numQubits }

func (p *Program) BuildID() string { return p.buildID }

func (p *Program) SubroutineNames() []string {
	var names []string
	for _, s := range p.root.Subroutines() {
		names = append(names, s.Name)
	}
	return names
}

func (p *Program) GateNames() []string {
	var names []string
	for _, g := range p.root.Gates() {
		names = append(names, g.Name)
	}
	return names
}
