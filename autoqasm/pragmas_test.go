package autoqasm

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verbatimDevice = DeviceConfig{Name: "Garnet", Pragmas: []string{"verbatim"}}

func TestVerbatimBlock(t *testing.T) {
	ir := build(t, func(ctx *Context) error {
		err := Verbatim(ctx, func() error {
			if err := H(ctx, 0); err != nil {
				return err
			}
			return CNot(ctx, 0, 1)
		})
		if err != nil {
			return err
		}
		return X(ctx, 0)
	}, WithDevice(verbatimDevice))
	assert.Equal(t, heredoc.Doc(`
		OPENQASM 3.0;
		qubit[1] __qubits__;
		#pragma braket verbatim
		box {
		    h $0;
		    cnot $0, $1;
		}
		x __qubits__[0];
	`), ir)
}

func TestVerbatimNotAllowed(t *testing.T) {
	inner := Subroutine("inner", Signature{}, func(ctx *Context, args ...Value) (Value, error) {
		return nil, Verbatim(ctx, func() error { return H(ctx, 0) })
	})
	tests := []struct {
		name   string
		device DeviceConfig
		body   func(ctx *Context) error
	}{
		{"unsupported device", DeviceConfig{Name: "sim"}, func(ctx *Context) error {
			return Verbatim(ctx, func() error { return H(ctx, 0) })
		}},
		{"nested", verbatimDevice, func(ctx *Context) error {
			return Verbatim(ctx, func() error {
				return Verbatim(ctx, func() error { return H(ctx, 0) })
			})
		}},
		{"inside subroutine", verbatimDevice, func(ctx *Context) error {
			_, err := inner.Call(ctx)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Main("main", tt.body, WithDevice(tt.device)).Build()
			var notAllowed *VerbatimBlockNotAllowedError
			require.ErrorAs(t, err, &notAllowed)
		})
	}
}

func TestVerbatimFlagResetAfterFailure(t *testing.T) {
	err := BuildProgram(nil, UserConfig{}, func(ctx *Context) error {
		err := Verbatim(ctx, func() error { return assert.AnError })
		require.ErrorIs(t, err, assert.AnError)
		assert.False(t, ctx.inVerbatimBlock)

		require.NoError(t, H(ctx, 0))
		root, err := ctx.GetOqpyProgram(ScopeMain, ModeNone)
		require.NoError(t, err)
		assert.Len(t, root.Statements(), 1)
		return nil
	})
	require.NoError(t, err)
}
