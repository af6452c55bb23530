package host

import (
	"fmt"
	"io"

	"github.com/cinderlang/cinder/bytecode"
)

// machineState tracks where a Machine is in its lifecycle.
type machineState uint8

const (
	stateReady machineState = iota
	stateSuspended
	stateFinished
)

// Outcome is the result of driving a Machine. Finished with a nil Err is
// normal completion; Finished with a non-nil Err is an execution aborted
// by a runtime error; not Finished means the program is suspended at an
// instruction boundary and can be stepped again.
type Outcome struct {
	Finished bool
	Err      *bytecode.RuntimeError
}

// Machine owns one compiled program's execution. It is single-owner and
// synchronous: exclusivity comes from the host holding the only handle,
// not from locking. A native function must not re-enter Run or Step on
// the machine that invoked it.
type Machine struct {
	vm    *bytecode.VM
	state machineState
}

func newMachine(chunk *bytecode.Chunk, natives []bytecode.NativeFunction) *Machine {
	return &Machine{vm: bytecode.NewVM(chunk, natives)}
}

// SetOutput redirects where the program's print statements write.
func (m *Machine) SetOutput(w io.Writer) {
	m.vm.SetOutput(w)
}

// SetTrace enables per-instruction trace logging on the underlying VM.
func (m *Machine) SetTrace(on bool) {
	m.vm.Trace = on
}

// Run drives the program to completion and returns a finished Outcome.
// Calling Run on a finished Machine panics.
func (m *Machine) Run() Outcome {
	m.ensureRunnable("Run")
	err := m.vm.Run()
	m.state = stateFinished
	return finishedOutcome(err)
}

// Step executes exactly one instruction. It returns an unfinished
// Outcome while more instructions remain and a finished one on the step
// that completes execution, successfully or with a runtime error.
// Calling Step on a finished Machine panics.
func (m *Machine) Step() Outcome {
	m.ensureRunnable("Step")
	more, err := m.vm.Step()
	if err != nil || !more {
		m.state = stateFinished
		return finishedOutcome(err)
	}
	m.state = stateSuspended
	return Outcome{}
}

// Finished reports whether the machine has reached its terminal state.
func (m *Machine) Finished() bool {
	return m.state == stateFinished
}

// ensureRunnable enforces the lifecycle contract: a finished program
// accepts no further drive calls. This is host misuse with no defined
// recovery, so it fails loudly.
func (m *Machine) ensureRunnable(op string) {
	if m.state == stateFinished {
		panic("cinder/host: " + op + " called on a finished Machine")
	}
}

func finishedOutcome(err error) Outcome {
	out := Outcome{Finished: true}
	if err != nil {
		re, ok := err.(*bytecode.RuntimeError)
		if !ok {
			panic(fmt.Sprintf("cinder/host: VM returned unexpected error type %T", err))
		}
		out.Err = re
	}
	return out
}
