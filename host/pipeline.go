package host

import (
	"time"

	"github.com/cinderlang/cinder/bytecode"
	"github.com/cinderlang/cinder/compiler"
)

// timeNative returns the implicit clock capability: a zero-argument
// native returning the current epoch time in seconds as a number. It is
// appended after all host-registered natives, so a host entry named
// "time" is shadowed and the capability is always present.
func timeNative() bytecode.NativeFunction {
	return bytecode.NativeFunction{
		Name:  "time",
		Arity: 0,
		Fn: func(_ []bytecode.Value) bytecode.Value {
			return bytecode.Number(float64(time.Now().UnixMilli()) / 1000.0)
		},
	}
}

// CompileResult is the outcome of one compile attempt. Exactly one of
// the machine or the error batch is populated, and each is retrievable
// exactly once: the result transfers ownership rather than handing out
// shared references.
type CompileResult struct {
	success bool
	machine *Machine
	errors  []compiler.CompileError
}

// Success reports whether compilation produced a runnable program.
func (r *CompileResult) Success() bool {
	return r.success
}

// TakeMachine transfers the compiled Machine to the caller. It returns
// nil on a failed compile, and nil again once the machine has already
// been taken.
func (r *CompileResult) TakeMachine() *Machine {
	m := r.machine
	r.machine = nil
	return m
}

// TakeErrors transfers the compile error batch to the caller. It returns
// nil on a successful compile, and nil again once the batch has already
// been taken.
func (r *CompileResult) TakeErrors() []compiler.CompileError {
	errs := r.errors
	r.errors = nil
	return errs
}

// Compile compiles source text with the given native table. Host
// functions are bridged before compilation so name resolution sees them,
// in registration order, followed by the implicit "time" native. On
// failure the result carries the full error batch, never a partial
// program.
func Compile(source string, natives []NativeFunc) *CompileResult {
	bound := bindAll(natives)
	names := make([]string, len(bound))
	for i, n := range bound {
		names[i] = n.Name
	}

	chunk, errs := compiler.Compile(source, names)
	if len(errs) > 0 {
		return &CompileResult{errors: errs}
	}
	return &CompileResult{
		success: true,
		machine: newMachine(chunk, bound),
	}
}

// Restore builds a Machine from a previously compiled program image.
// The native table must match the one the image was compiled against;
// names resolved at compile time that are missing at run time surface as
// runtime errors.
func Restore(img *bytecode.ProgramImage, natives []NativeFunc) *Machine {
	return newMachine(img.Chunk, bindAll(natives))
}
