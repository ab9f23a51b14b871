package autoqasm

import (
	"errors"
	"fmt"
)

// ErrAutoQasm matches every error raised by the converter itself, as opposed to
// errors returned by user code.
var ErrAutoQasm = errors.New("autoqasm")

// Error is implemented by all converter errors.
type Error interface {
	error
	autoQasmError()
}

type domainError struct{}

func (domainError) autoQasmError() {}

func (domainError) Is(target error) bool { return target == ErrAutoQasm }

// InconsistentNumQubitsError is returned when a nested conversion asks for a
// qubit count different from the one of the program being built.
type InconsistentNumQubitsError struct {
	domainError
	Declared  int
	Requested int
}

func (e *InconsistentNumQubitsError) Error() string {
	return fmt.Sprintf("inconsistent num_qubits: the program declares %d qubits but a nested call requested %d; "+
		"remove num_qubits from the nested function or make it match the main program", e.Declared, e.Requested)
}

// InvalidGateDefinitionError is returned when a gate body performs a
// non-unitary operation or uses an operand that is not one of its arguments.
type InvalidGateDefinitionError struct {
	domainError
	Gate    string
	Operand string
	Reason  string
}

func (e *InvalidGateDefinitionError) Error() string {
	return fmt.Sprintf("gate definition %q: %s", e.Gate, e.Reason)
}

// InvalidCalibrationDefinitionError is returned when a calibration body
// performs a non-pulse operation or does not match the gate it calibrates.
type InvalidCalibrationDefinitionError struct {
	domainError
	Gate   string
	Reason string
}

func (e *InvalidCalibrationDefinitionError) Error() string {
	return fmt.Sprintf("calibration definition %q: %s", e.Gate, e.Reason)
}

// MissingParameterTypeError is returned when a parameter has no type.
type MissingParameterTypeError struct {
	domainError
	Function string
	Param    string
}

func (e *MissingParameterTypeError) Error() string {
	return fmt.Sprintf("parameter %q of %q is missing a required type", e.Param, e.Function)
}

type VerbatimBlockNotAllowedError struct {
	domainError
	Reason string
}

func (e *VerbatimBlockNotAllowedError) Error() string {
	return "verbatim block not allowed: " + e.Reason
}

// UnknownQubitCountError is returned when a qubit is addressed by a runtime
// expression and the program has no explicit qubit count.
type UnknownQubitCountError struct {
	domainError
}

func (e *UnknownQubitCountError) Error() string {
	return "unknown number of qubits: programs that index qubits with runtime values must set num_qubits"
}

type InsufficientQubitCountError struct {
	domainError
	Declared int
	Required int
}

func (e *InsufficientQubitCountError) Error() string {
	return fmt.Sprintf("program declares %d qubits but uses %d", e.Declared, e.Required)
}

// UnsupportedConditionalExpressionError is returned when a condition is
// neither a Go bool nor a bool/bit expression.
type UnsupportedConditionalExpressionError struct {
	domainError
	Type string
}

func (e *UnsupportedConditionalExpressionError) Error() string {
	return fmt.Sprintf("unsupported conditional expression of type %s: conditions must be bool or bit", e.Type)
}

type InvalidArgumentsError struct {
	domainError
	Function string
	Reason   string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments to %q: %s", e.Function, e.Reason)
}

// OutsideProgramError is returned when an operation that needs an active
// conversion is used without one.
type OutsideProgramError struct {
	domainError
	Operation string
}

func (e *OutsideProgramError) Error() string {
	return fmt.Sprintf("%s must be called while a program is being built", e.Operation)
}
