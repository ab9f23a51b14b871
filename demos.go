package main

import (
	"fmt"
	"math"

	"github.com/hershlalwani/autoqasm/autoqasm"
)

// demo is a program the previewer and the batch printer can build.
type demo struct {
	name        string
	description string
	main        *autoqasm.Function

	// calibrations, when set, are bound to the built program
	calibrations func() ([]*autoqasm.GateCalibration, error)
}

// build converts the demo. Values set in cfg take precedence over the
// options the demo was declared with.
func (d demo) build(cfg autoqasm.UserConfig) (*autoqasm.Program, error) {
	var opts []autoqasm.Option
	if cfg.NumQubits > 0 {
		opts = append(opts, autoqasm.WithNumQubits(cfg.NumQubits))
	}
	if cfg.Device.Name != "" {
		opts = append(opts, autoqasm.WithDevice(cfg.Device))
	}

	prog, err := d.main.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	if d.calibrations == nil {
		return prog, nil
	}
	cals, err := d.calibrations()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	return prog.BindCalibrations(cals...), nil
}

func findDemo(demos []demo, name string) (demo, bool) {
	for _, d := range demos {
		if d.name == name {
			return d, true
		}
	}
	return demo{}, false
}

// ──────────────────────────── Programs ────────────────────────────

var bell = autoqasm.Main("bell", func(ctx *autoqasm.Context) error {
	if err := autoqasm.H(ctx, 0); err != nil {
		return err
	}
	if err := autoqasm.CNot(ctx, 0, 1); err != nil {
		return err
	}
	_, err := autoqasm.Measure(ctx, 0, 1)
	return err
})

var ghz = autoqasm.Main("ghz", func(ctx *autoqasm.Context) error {
	const n = 3
	if err := autoqasm.H(ctx, 0); err != nil {
		return err
	}
	err := autoqasm.For(ctx, n-1, func(i autoqasm.Value) error {
		return autoqasm.CNot(ctx, i, i.(int)+1)
	})
	if err != nil {
		return err
	}
	if err := autoqasm.Barrier(ctx); err != nil {
		return err
	}
	_, err = autoqasm.Measure(ctx, 0, 1, 2)
	return err
})

var superposition = autoqasm.Main("superposition", func(ctx *autoqasm.Context) error {
	return autoqasm.For(ctx, autoqasm.Range(0, 4), func(i autoqasm.Value) error {
		return autoqasm.H(ctx, i)
	})
}, autoqasm.WithNumQubits(4))

var measureAndCorrect = autoqasm.Main("measure_and_correct", func(ctx *autoqasm.Context) error {
	if err := autoqasm.H(ctx, 0); err != nil {
		return err
	}
	if err := autoqasm.CNot(ctx, 0, 1); err != nil {
		return err
	}
	b, err := autoqasm.Measure(ctx, 0)
	if err != nil {
		return err
	}
	return autoqasm.If(ctx, b, func() error { return autoqasm.X(ctx, 1) }, nil)
})

// coin measures a qubit prepared in superposition.
var coin = autoqasm.Subroutine("coin",
	autoqasm.Signature{Params: []autoqasm.Param{{Name: "q", Type: autoqasm.Qubit}}, Returns: autoqasm.Bit},
	func(ctx *autoqasm.Context, args ...autoqasm.Value) (autoqasm.Value, error) {
		if err := autoqasm.H(ctx, args[0]); err != nil {
			return nil, err
		}
		b, err := autoqasm.Measure(ctx, args[0])
		if err != nil {
			return nil, err
		}
		return b, nil
	})

var coinFlips = autoqasm.Main("coin_flips", func(ctx *autoqasm.Context) error {
	first, err := coin.Call(ctx, 0)
	if err != nil {
		return err
	}
	second, err := coin.Call(ctx, 1)
	if err != nil {
		return err
	}
	same, err := autoqasm.Eq(ctx, first, second)
	if err != nil {
		return err
	}
	return autoqasm.If(ctx, same, func() error { return autoqasm.X(ctx, 2) }, nil)
})

var triangle *autoqasm.Function

func init() {
	// triangle(n) = n + triangle(n-1); the inner call goes through the stub
	triangle = autoqasm.Subroutine("triangle",
		autoqasm.Signature{Params: []autoqasm.Param{{Name: "n", Type: autoqasm.Int}}, Returns: autoqasm.Int},
		func(ctx *autoqasm.Context, args ...autoqasm.Value) (autoqasm.Value, error) {
			n := args[0]
			done, err := autoqasm.Le(ctx, n, 1)
			if err != nil {
				return nil, err
			}
			if err := autoqasm.If(ctx, done, func() error { return autoqasm.Return(ctx, n) }, nil); err != nil {
				return nil, err
			}
			prev, err := autoqasm.Sub(n, 1)
			if err != nil {
				return nil, err
			}
			rest, err := triangle.Call(ctx, prev)
			if err != nil {
				return nil, err
			}
			return autoqasm.Add(rest, n)
		})
}

var recursion = autoqasm.Main("recursion", func(ctx *autoqasm.Context) error {
	_, err := triangle.Call(ctx, 4)
	return err
})

var entangle = autoqasm.Gate("entangle",
	[]autoqasm.Param{{Name: "a", Type: autoqasm.Qubit}, {Name: "b", Type: autoqasm.Qubit}, {Name: "theta", Type: autoqasm.Angle}},
	func(ctx *autoqasm.Context, args ...autoqasm.Value) error {
		if err := autoqasm.Ry(ctx, args[0], args[2]); err != nil {
			return err
		}
		return autoqasm.CNot(ctx, args[0], args[1])
	})

var customGate = autoqasm.Main("custom_gate", func(ctx *autoqasm.Context) error {
	if _, err := entangle.Call(ctx, 0, 1, math.Pi/2); err != nil {
		return err
	}
	_, err := entangle.Call(ctx, 1, 2, math.Pi/4)
	return err
})

// nativeDevice accepts verbatim boxes.
var nativeDevice = autoqasm.DeviceConfig{Name: "Garnet", Pragmas: []string{"verbatim"}}

var verbatim = autoqasm.Main("verbatim", func(ctx *autoqasm.Context) error {
	return autoqasm.Verbatim(ctx, func() error {
		if err := autoqasm.Rx(ctx, "$0", math.Pi/2); err != nil {
			return err
		}
		return autoqasm.CZ(ctx, "$0", "$1")
	})
}, autoqasm.WithDevice(nativeDevice))

var pulseRx = autoqasm.Main("pulse_rx", func(ctx *autoqasm.Context) error {
	if err := autoqasm.Rx(ctx, "$0", math.Pi/2); err != nil {
		return err
	}
	return autoqasm.Rx(ctx, "$0", math.Pi)
})

// rxCalibration implements rx on $0 as a phase shift followed by a DRAG pulse.
func rxCalibration() ([]*autoqasm.GateCalibration, error) {
	frame := autoqasm.Frame("q0_rf_frame")
	cal, err := autoqasm.NewGateCalibration("rx", []autoqasm.Value{"$0"}, []autoqasm.Value{autoqasm.FreeAngle("theta")},
		func(ctx *autoqasm.Context, angles ...autoqasm.Value) error {
			if err := autoqasm.ShiftPhase(ctx, frame, angles[0]); err != nil {
				return err
			}
			return autoqasm.Play(ctx, frame, autoqasm.Waveform("drag_gauss"))
		})
	if err != nil {
		return nil, err
	}
	return []*autoqasm.GateCalibration{cal}, nil
}

// builtinDemos lists the demo programs in display order.
func builtinDemos() []demo {
	return []demo{
		{name: "bell", description: "Bell pair, measured", main: bell},
		{name: "ghz", description: "3-qubit GHZ state from an unrolled loop", main: ghz},
		{name: "superposition", description: "OpenQASM for loop over a 4-qubit register", main: superposition},
		{name: "measure_and_correct", description: "if on a measured bit", main: measureAndCorrect},
		{name: "coin_flips", description: "subroutine returning a bit, called twice", main: coinFlips},
		{name: "recursion", description: "recursive subroutine", main: recursion},
		{name: "custom_gate", description: "user-defined gate", main: customGate},
		{name: "verbatim", description: "verbatim box on physical qubits", main: verbatim},
		{name: "pulse_rx", description: "rx bound to a pulse calibration", main: pulseRx, calibrations: rxCalibration},
	}
}
