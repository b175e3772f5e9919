package graphics

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalInit marks failures creating the context, shaders or render
	// targets. There is no fallback path for any of them.
	ErrFatalInit = errors.New("fatal initialization error")
	// ErrInvalidParameter marks arguments that violate a documented range or
	// shape, such as mismatched vertex array lengths.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrStateMisuse marks calls made in the wrong program or target state.
	ErrStateMisuse = errors.New("graphics state misuse")
)

// CompileError carries the driver diagnostic for a shader stage that failed
// to compile.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

func (e *CompileError) Unwrap() error { return ErrFatalInit }

// LinkError carries the linker diagnostic for a program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

func (e *LinkError) Unwrap() error { return ErrFatalInit }
