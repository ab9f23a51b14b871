package autoqasm

import (
	"fmt"
	"time"

	"github.com/hershlalwani/autoqasm/oqpy"
)

// Frame is a pulse frame provided by the device, such as q0_drive.
type Frame string

func (f Frame) IR() string         { return string(f) }
func (Frame) ExprType() *oqpy.Type { return nil }

// Waveform is a waveform provided by the device.
type Waveform string

func (w Waveform) IR() string         { return string(w) }
func (Waveform) ExprType() *oqpy.Type { return nil }

// pulseProgram returns the current program for a pulse operation and marks
// the build as using pulse control.
func pulseProgram(ctx *Context, op string) (*oqpy.Program, error) {
	if !InActiveProgramConversionContext(ctx) {
		return nil, &OutsideProgramError{Operation: op}
	}
	prog, err := ctx.GetOqpyProgram(ScopeCurrent, ModePulse)
	if err != nil {
		return nil, err
	}
	ctx.hasPulseControl = true
	return prog, nil
}

func pulseCall(ctx *Context, name string, frame Frame, arg Value) error {
	prog, err := pulseProgram(ctx, name)
	if err != nil {
		return err
	}
	e, err := wrapValue(arg)
	if err != nil {
		return err
	}
	prog.AddStatement(&oqpy.ExprStatement{Expr: &oqpy.Call{Name: name, Args: []oqpy.Expr{frame, e}}})
	return nil
}

// Play plays a waveform on a frame.
func Play(ctx *Context, frame Frame, wf Waveform) error {
	prog, err := pulseProgram(ctx, "play")
	if err != nil {
		return err
	}
	prog.AddStatement(&oqpy.ExprStatement{Expr: &oqpy.Call{Name: "play", Args: []oqpy.Expr{frame, wf}}})
	return nil
}

// ShiftPhase adds phase, in radians, to the phase of frame.
func ShiftPhase(ctx *Context, frame Frame, phase Value) error {
	return pulseCall(ctx, "shift_phase", frame, phase)
}

func SetPhase(ctx *Context, frame Frame, phase Value) error {
	return pulseCall(ctx, "set_phase", frame, phase)
}

// SetFrequency sets the frequency of frame, in Hz.
func SetFrequency(ctx *Context, frame Frame, freq Value) error {
	return pulseCall(ctx, "set_frequency", frame, freq)
}

func ShiftFrequency(ctx *Context, frame Frame, freq Value) error {
	return pulseCall(ctx, "shift_frequency", frame, freq)
}

// Delay idles the targets, frames or qubits, for d.
func Delay(ctx *Context, d time.Duration, targets ...Value) error {
	prog, err := pulseProgram(ctx, "delay")
	if err != nil {
		return err
	}
	exprs := make([]oqpy.Expr, len(targets))
	for i, t := range targets {
		if f, ok := t.(Frame); ok {
			exprs[i] = f
			continue
		}
		if exprs[i], err = ctx.qubitOperand(t); err != nil {
			return err
		}
	}
	prog.Delay(oqpy.DurationLit(d), exprs...)
	return nil
}

// GateCalibration is the pulse implementation of a gate on physical qubits.
type GateCalibration struct {
	gate string
	def  *oqpy.DefCal
}

// Gate is the name of the calibrated gate.
func (g *GateCalibration) Gate() string { return g.gate }

// FreeAngle declares an angle parameter of a calibration that is left to the
// gate call, as in defcal rx(angle[32] theta) $0.
func FreeAngle(name string) *oqpy.Var { return oqpy.NewVar(name, oqpy.AngleType(), nil) }

// NewGateCalibration converts body into a calibration of a native gate. qubits
// must be physical qubits ("$0") and angles fixed numbers or FreeAngle
// parameters; body receives the angles in order and may only call pulse
// operations.
func NewGateCalibration(gate string, qubits, angles []Value, body func(ctx *Context, angles ...Value) error) (*GateCalibration, error) {
	shape, ok := builtinGates[gate]
	if !ok {
		return nil, &InvalidCalibrationDefinitionError{Gate: gate, Reason: "not a native gate"}
	}
	if len(qubits) != shape.qubits || len(angles) != shape.angles {
		return nil, &InvalidCalibrationDefinitionError{
			Gate: gate,
			Reason: fmt.Sprintf("takes %d qubits and %d angles, got %d and %d",
				shape.qubits, shape.angles, len(qubits), len(angles)),
		}
	}

	var def *oqpy.DefCal
	err := BuildProgram(nil, UserConfig{}, func(ctx *Context) error {
		qs := make([]oqpy.Expr, len(qubits))
		for i, q := range qubits {
			e, index, err := ctx.resolveQubit(q)
			if err != nil {
				return err
			}
			if index >= 0 {
				return &InvalidCalibrationDefinitionError{
					Gate:   gate,
					Reason: fmt.Sprintf("qubit %s is virtual; calibrations apply to physical qubits such as \"$0\"", e.IR()),
				}
			}
			qs[i] = e
		}
		as := make([]oqpy.Expr, len(angles))
		bodyArgs := make([]Value, len(angles))
		for i, a := range angles {
			e, err := angleOperand(a)
			if err != nil {
				return err
			}
			as[i], bodyArgs[i] = e, e
		}

		d, err := ctx.CalibrationDefinition(gate, qs, as, func() error { return body(ctx, bodyArgs...) })
		def = d
		return err
	})
	if err != nil {
		return nil, remapError(err)
	}
	log.Debugf("calibration of %s defined", gate)
	return &GateCalibration{gate: gate, def: def}, nil
}
