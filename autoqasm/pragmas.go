package autoqasm

import (
	"fmt"

	"github.com/hershlalwani/autoqasm/oqpy"
)

const verbatimPragma = "verbatim"

// Verbatim runs body as a block the compiler must leave untouched. Qubits
// addressed by int inside the block are physical qubits.
func Verbatim(ctx *Context, body func() error) error {
	prog, err := currentProgram(ctx, "verbatim")
	if err != nil {
		return err
	}
	switch {
	case ctx.inVerbatimBlock:
		return &VerbatimBlockNotAllowedError{Reason: "verbatim blocks cannot be nested"}
	case len(ctx.oqpyProgramStack) > 1:
		return &VerbatimBlockNotAllowedError{Reason: "verbatim blocks are not allowed inside subroutines"}
	case !ctx.userConfig.Device.SupportsPragma(verbatimPragma):
		return &VerbatimBlockNotAllowedError{
			Reason: fmt.Sprintf("device %q does not support verbatim blocks", ctx.userConfig.Device.Name),
		}
	}

	ctx.inVerbatimBlock = true
	defer func() { ctx.inVerbatimBlock = false }()

	stmts, err := prog.Block(body)
	if err != nil {
		return atCaller(err)
	}
	prog.Pragma("braket verbatim")
	prog.AddStatement(&oqpy.Box{Body: stmts})
	return nil
}
