package autoqasm

import (
	"errors"
	"fmt"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// Value is anything a converted function passes around: Go values known while
// converting, or OpenQASM expressions and variables.
type Value = any

// Param is a typed function parameter.
type Param struct {
	Name string
	Type *oqpy.Type
}

// Signature lists the parameters of a function and its return type, nil for
// functions that return nothing.
type Signature struct {
	Params  []Param
	Returns *oqpy.Type
}

// Body is the Go implementation of a converted function.
type Body func(ctx *Context, args ...Value) (Value, error)

type functionKind int

const (
	kindMain functionKind = iota
	kindSubroutine
	kindGate
)

// Function is a Go function registered for conversion. Functions are compared
// by identity: two Functions with the same name are different functions.
type Function struct {
	name string
	kind functionKind
	sig  Signature
	body Body
	cfg  *UserConfig
}

// Option configures a Main function.
type Option func(*UserConfig)

// WithNumQubits fixes the size of the qubit register.
func WithNumQubits(n int) Option {
	return func(c *UserConfig) { c.NumQubits = n }
}

// WithDevice sets the device the program targets.
func WithDevice(d DeviceConfig) Option {
	return func(c *UserConfig) { c.Device = d }
}

// WithConfig copies a whole user configuration, as loaded from autoqasm.toml.
func WithConfig(cfg UserConfig) Option {
	return func(c *UserConfig) { *c = cfg }
}

// Main registers a program entry point.
func Main(name string, body func(ctx *Context) error, opts ...Option) *Function {
	f := &Function{
		name: name,
		kind: kindMain,
		body: func(ctx *Context, _ ...Value) (Value, error) { return nil, body(ctx) },
	}
	if len(opts) > 0 {
		f.cfg = &UserConfig{}
		for _, opt := range opts {
			opt(f.cfg)
		}
	}
	return f
}

// Subroutine registers a function that becomes an OpenQASM subroutine when
// called during a conversion.
func Subroutine(name string, sig Signature, body Body) *Function {
	return &Function{name: name, kind: kindSubroutine, sig: sig, body: body}
}

// Gate registers a custom gate. Its parameters must be of type Qubit or
// Angle, and its body may only apply gates to its own arguments.
func Gate(name string, params []Param, body func(ctx *Context, args ...Value) error) *Function {
	return &Function{
		name: name,
		kind: kindGate,
		sig:  Signature{Params: params},
		body: func(ctx *Context, args ...Value) (Value, error) { return nil, body(ctx, args...) },
	}
}

func (f *Function) Name() string { return f.name }

func (f *Function) Signature() Signature { return f.sig }

// Build converts a Main function into a program. opts override the options
// given to Main.
func (f *Function) Build(opts ...Option) (*Program, error) {
	if f.kind == kindGate {
		return nil, &InvalidArgumentsError{Function: f.name, Reason: "a gate cannot be built as a program"}
	}
	var cfg UserConfig
	if f.cfg != nil {
		cfg = *f.cfg
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	v, err := f.convert(nil, cfg, nil)
	if err != nil {
		return nil, err
	}
	prog, ok := v.(*Program)
	if !ok {
		return nil, &InvalidArgumentsError{Function: f.name, Reason: "Build is only available outside of a conversion"}
	}
	return prog, nil
}

// Call invokes f. Outside of a conversion (ctx nil or finished) f is converted
// as a main program and the result is a *Program. During a conversion a
// subroutine call is emitted and the result is the variable holding its
// return value, or nil; gates are applied and return nil.
func (f *Function) Call(ctx *Context, args ...Value) (Value, error) {
	if f.kind == kindGate {
		if err := f.callGate(ctx, args); err != nil {
			return nil, remapError(err)
		}
		return nil, nil
	}
	var cfg UserConfig
	if f.cfg != nil {
		cfg = *f.cfg
	}
	return f.convert(ctx, cfg, args)
}

func (f *Function) convert(parent *Context, cfg UserConfig, args []Value) (Value, error) {
	if cfg.NumQubits < 0 {
		return nil, &InvalidArgumentsError{
			Function: f.name,
			Reason:   fmt.Sprintf("num_qubits must not be negative, got %d", cfg.NumQubits),
		}
	}
	asSubroutine := InActiveProgramConversionContext(parent)

	var result Value
	err := BuildProgram(parent, cfg, func(ctx *Context) error {
		if asSubroutine {
			if err := f.validateSubroutineArgs(ctx); err != nil {
				return err
			}
			if err := f.convertAsSubroutine(ctx, args); err != nil {
				return err
			}
			if v := ctx.ReturnVariable(); v != nil {
				result = v
			}
			return nil
		}
		if err := f.convertAsMain(ctx, args); err != nil {
			return err
		}
		result = ctx.MakeProgram()
		return nil
	})
	if err != nil {
		return nil, remapError(err)
	}
	return result, nil
}

// validateSubroutineArgs rejects a nested Main function whose qubit count
// differs from the program it is called from.
func (f *Function) validateSubroutineArgs(ctx *Context) error {
	if f.cfg == nil || f.cfg.NumQubits == 0 {
		return nil
	}
	declared, _ := ctx.DeclaredQubits()
	if f.cfg.NumQubits != declared {
		return &InconsistentNumQubitsError{Declared: declared, Requested: f.cfg.NumQubits}
	}
	return nil
}

func (f *Function) convertAsMain(ctx *Context, args []Value) error {
	log.Debugf("build %s: converting %s as main", ctx.buildID, f.name)
	if _, err := f.body(ctx, args...); err != nil {
		return err
	}
	return addQubitDeclaration(ctx)
}

var qubitRegister = &oqpy.Ident{Name: "__qubits__", Type: oqpy.QubitType(0)}

// addQubitDeclaration declares the global qubit register at the beginning of
// the root program, sized from the configuration or from the highest qubit
// index used.
func addQubitDeclaration(ctx *Context) error {
	qubits := ctx.Qubits()
	n, ok := ctx.DeclaredQubits()
	switch {
	case !ok && len(qubits) == 0:
		return nil
	case !ok:
		n = qubits[len(qubits)-1] + 1
	case len(qubits) > 0 && qubits[len(qubits)-1] >= n:
		return &InsufficientQubitCountError{Declared: n, Required: qubits[len(qubits)-1] + 1}
	}

	root, err := ctx.GetOqpyProgram(ScopeMain, ModeNone)
	if err != nil {
		return err
	}
	v := oqpy.NewVar(qubitRegister.Name, oqpy.QubitType(n), nil)
	root.MarkDeclared(v)
	root.Prepend(&oqpy.Declare{Var: v})
	return nil
}

// subroutineStub stands in for a function called again while it is still
// being converted. It carries only the signature and the value a call to it
// returns.
type subroutineStub struct {
	name    string
	params  []*oqpy.Var
	returns *oqpy.Type
	result  oqpy.Expr
}

func newSubroutineStub(f *Function, params []*oqpy.Var) *subroutineStub {
	s := &subroutineStub{name: f.name, params: params, returns: f.sig.Returns}
	if s.returns != nil {
		s.result = makeReturnInstance(s.returns)
	}
	return s
}

// definition is the placeholder definition produced by a call to the stub.
func (s *subroutineStub) definition() *oqpy.SubroutineDef {
	return &oqpy.SubroutineDef{
		Name:    s.name,
		Params:  s.params,
		Returns: s.returns,
		Body:    []oqpy.Statement{&oqpy.Return{Value: s.result}},
	}
}

func (f *Function) checkParamTypes() error {
	for _, p := range f.sig.Params {
		if p.Type == nil {
			return &MissingParameterTypeError{Function: f.name, Param: p.Name}
		}
	}
	return nil
}

func (f *Function) convertAsSubroutine(ctx *Context, args []Value) error {
	prog, err := ctx.GetOqpyProgram(ScopeCurrent, ModeNone)
	if err != nil {
		return err
	}
	if err := f.checkParamTypes(); err != nil {
		return err
	}
	callArgs, err := f.bindArgs(ctx, args)
	if err != nil {
		return err
	}

	root := ctx.rootProgram()
	if stub, ok := ctx.subroutinesProcessing[f]; ok {
		log.Debugf("build %s: recursive call to %s, using stub", ctx.buildID, f.name)
		prog.AddSubroutine(stub.definition())
	} else if !root.HasSubroutine(f.name) {
		if err := f.defineSubroutine(ctx); err != nil {
			return err
		}
	}

	call := &oqpy.Call{Name: f.name, Args: callArgs, Returns: f.sig.Returns}
	if f.sig.Returns == nil {
		prog.AddStatement(&oqpy.ExprStatement{Expr: call})
		ctx.returnVariable = nil
		return nil
	}

	name, err := ctx.NextVarName(f.sig.Returns.Kind)
	if err != nil {
		return err
	}
	ret := oqpy.NewVar(name, f.sig.Returns, call)
	if err := prog.Declare(ret); err != nil {
		return err
	}
	ctx.returnVariable = ret
	return nil
}

// defineSubroutine converts the body of f in its own program and registers
// the resulting definition at the root.
func (f *Function) defineSubroutine(ctx *Context) error {
	sub := oqpy.NewProgram()
	params := make([]*oqpy.Var, len(f.sig.Params))
	bodyArgs := make([]Value, len(f.sig.Params))
	for i, p := range f.sig.Params {
		v := oqpy.NewVar(p.Name, p.Type, nil)
		sub.MarkDeclared(v)
		params[i] = v
		bodyArgs[i] = v
	}

	ctx.subroutinesProcessing[f] = newSubroutineStub(f, params)
	defer delete(ctx.subroutinesProcessing, f)

	err := ctx.PushOqpyProgram(sub, func() error {
		ret, err := f.body(ctx, bodyArgs...)
		if err != nil {
			return err
		}
		if f.sig.Returns == nil {
			return nil
		}
		if ret == nil {
			return &InvalidArgumentsError{
				Function: f.name,
				Reason:   fmt.Sprintf("declares a %s result but returned nothing", f.sig.Returns),
			}
		}
		e, err := wrapValue(ret)
		if err != nil {
			return fmt.Errorf("return value of %s: %w", f.name, err)
		}
		sub.Return(e)
		return nil
	})
	if err != nil {
		return err
	}

	root := ctx.rootProgram()
	if !root.HasSubroutine(f.name) {
		root.AddSubroutine(&oqpy.SubroutineDef{
			Name:    f.name,
			Params:  params,
			Returns: f.sig.Returns,
			Body:    sub.BodyStatements(),
		})
		log.Debugf("build %s: defined subroutine %s", ctx.buildID, f.name)
	}
	return nil
}

// bindArgs converts call arguments into expressions matching the parameters.
func (f *Function) bindArgs(ctx *Context, args []Value) ([]oqpy.Expr, error) {
	if len(args) != len(f.sig.Params) {
		return nil, &InvalidArgumentsError{
			Function: f.name,
			Reason:   fmt.Sprintf("takes %d arguments, got %d", len(f.sig.Params), len(args)),
		}
	}
	exprs := make([]oqpy.Expr, len(args))
	for i, arg := range args {
		p := f.sig.Params[i]
		if p.Type.Kind == oqpy.KindQubit {
			q, err := ctx.qubitOperand(arg)
			if err != nil {
				return nil, err
			}
			exprs[i] = q
			continue
		}
		e, err := wrapValue(arg)
		if err != nil {
			return nil, &InvalidArgumentsError{Function: f.name, Reason: fmt.Sprintf("parameter %q: %v", p.Name, err)}
		}
		if !assignable(p.Type, e.ExprType()) {
			return nil, &InvalidArgumentsError{
				Function: f.name,
				Reason:   fmt.Sprintf("parameter %q expects %s, got %s", p.Name, p.Type, e.ExprType()),
			}
		}
		exprs[i] = e
	}
	return exprs, nil
}

func (f *Function) callGate(ctx *Context, args []Value) error {
	if !InActiveProgramConversionContext(ctx) {
		return &OutsideProgramError{Operation: fmt.Sprintf("gate %q", f.name)}
	}
	if err := f.checkParamTypes(); err != nil {
		return err
	}
	if len(args) != len(f.sig.Params) {
		return &InvalidArgumentsError{
			Function: f.name,
			Reason:   fmt.Sprintf("takes %d arguments, got %d", len(f.sig.Params), len(args)),
		}
	}

	// A gate call is a unitary operation wherever it appears, so a calibration
	// body rejects it before anything is defined.
	if _, err := ctx.GetOqpyProgram(ScopeCurrent, ModeUnitary); err != nil {
		return err
	}
	if !ctx.rootProgram().HasGate(f.name) {
		if err := f.defineGate(ctx); err != nil {
			return err
		}
	}

	var qubits, angles []Value
	for i, p := range f.sig.Params {
		if p.Type.Kind == oqpy.KindQubit {
			qubits = append(qubits, args[i])
		} else {
			angles = append(angles, args[i])
		}
	}
	return ctx.applyGate(f.name, qubits, angles)
}

func (f *Function) defineGate(ctx *Context) error {
	for _, rec := range ctx.gateDefinitionsProcessing {
		if rec.name == f.name {
			return &InvalidGateDefinitionError{Gate: f.name, Reason: "gate definitions cannot be recursive"}
		}
	}

	gateArgs := &GateArgs{}
	bodyArgs := make([]Value, len(f.sig.Params))
	for i, p := range f.sig.Params {
		switch p.Type.Kind {
		case oqpy.KindQubit:
			bodyArgs[i] = gateArgs.AddQubit(p.Name)
		case oqpy.KindAngle, oqpy.KindFloat:
			bodyArgs[i] = gateArgs.AddAngle(p.Name)
		default:
			return &InvalidGateDefinitionError{
				Gate:    f.name,
				Operand: p.Name,
				Reason:  fmt.Sprintf("parameter %q has type %s; gate parameters must be qubits or angles", p.Name, p.Type),
			}
		}
	}
	return ctx.GateDefinition(f.name, gateArgs, func() error {
		_, err := f.body(ctx, bodyArgs...)
		return err
	})
}

// remapError gives user-facing errors their final form. Converter errors are
// returned as they are; foreign errors raised from a body invoked by an
// operator are prefixed with the position of that operator call.
func remapError(err error) error {
	var se *sourceError
	if !errors.As(err, &se) {
		return err
	}
	var domain Error
	if errors.As(se.err, &domain) {
		return se.err
	}
	return fmt.Errorf("%s:%d: %w", se.file, se.line, se.err)
}
