package host

import (
	"errors"
	"strings"
	"testing"

	"github.com/cinderlang/cinder/bytecode"
)

// machineFor builds a Machine over a hand-assembled chunk so tests can
// control the exact instruction count.
func machineFor(chunk *bytecode.Chunk) *Machine {
	return newMachine(chunk, nil)
}

func compileMachine(t *testing.T, source string) *Machine {
	t.Helper()
	result := Compile(source, nil)
	if !result.Success() {
		t.Fatalf("Compile failed: %v", result.TakeErrors())
	}
	return result.TakeMachine()
}

// ============ Lifecycle Tests ============

func TestMachineRunCompletes(t *testing.T) {
	m := compileMachine(t, `print 1;`)
	var out strings.Builder
	m.SetOutput(&out)

	outcome := m.Run()
	if !outcome.Finished {
		t.Error("Run must return a finished outcome")
	}
	if outcome.Err != nil {
		t.Errorf("Unexpected error: %v", outcome.Err)
	}
	if !m.Finished() {
		t.Error("Machine should report finished")
	}
}

func TestMachineRunAfterFinishPanics(t *testing.T) {
	m := compileMachine(t, `print 1;`)
	m.SetOutput(&strings.Builder{})
	m.Run()
	expectPanic(t, "Run on a finished machine", func() { m.Run() })
}

func TestMachineStepAfterFinishPanics(t *testing.T) {
	m := compileMachine(t, `print 1;`)
	m.SetOutput(&strings.Builder{})
	m.Run()
	expectPanic(t, "Step on a finished machine", func() { m.Step() })
}

// ============ Stepping Protocol Tests ============

func TestMachineStepProtocol(t *testing.T) {
	// Three instructions: two unfinished steps, then one terminal step.
	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.OpNop, 1)
	chunk.Emit(bytecode.OpNop, 1)
	chunk.Emit(bytecode.OpReturn, 1)

	m := machineFor(chunk)
	for i := 0; i < 2; i++ {
		outcome := m.Step()
		if outcome.Finished {
			t.Fatalf("Step %d finished early", i+1)
		}
		if outcome.Err != nil {
			t.Fatalf("Step %d error: %v", i+1, outcome.Err)
		}
	}
	final := m.Step()
	if !final.Finished || final.Err != nil {
		t.Fatalf("Terminal step = %+v", final)
	}
	expectPanic(t, "stepping past the terminal step", func() { m.Step() })
}

func TestMachineStepErrorOnThirdInstruction(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.OpTrue, 1)
	chunk.Emit(bytecode.OpOne, 1)
	chunk.Emit(bytecode.OpAdd, 1) // type error

	m := machineFor(chunk)
	for i := 0; i < 2; i++ {
		if outcome := m.Step(); outcome.Finished {
			t.Fatalf("Step %d finished early", i+1)
		}
	}
	final := m.Step()
	if !final.Finished {
		t.Error("Erroring step must finish the machine")
	}
	if final.Err == nil {
		t.Fatal("Expected a runtime error outcome")
	}
	if final.Err.Message == "" {
		t.Error("Runtime error must carry a message")
	}
}

// ============ Run/Step Equivalence Tests ============

func TestMachineRunMatchesStepping(t *testing.T) {
	source := `
var total = 0;
var i = 0;
while (i < 4) {
  total = total + i * i;
  i = i + 1;
}
print total;
`
	var runOut, stepOut strings.Builder

	runM := compileMachine(t, source)
	runM.SetOutput(&runOut)
	runOutcome := runM.Run()

	stepM := compileMachine(t, source)
	stepM.SetOutput(&stepOut)
	var stepOutcome Outcome
	for {
		stepOutcome = stepM.Step()
		if stepOutcome.Finished {
			break
		}
	}

	if runOutcome.Finished != stepOutcome.Finished {
		t.Errorf("Finished mismatch: run %v, step %v", runOutcome.Finished, stepOutcome.Finished)
	}
	if (runOutcome.Err == nil) != (stepOutcome.Err == nil) {
		t.Errorf("Error mismatch: run %v, step %v", runOutcome.Err, stepOutcome.Err)
	}
	if runOut.String() != stepOut.String() {
		t.Errorf("Output mismatch: run %q, step %q", runOut.String(), stepOut.String())
	}
}

func TestMachineStepThenRunFinishes(t *testing.T) {
	// Run accepts a suspended machine: stepping partway and then calling
	// Run finishes execution with the same result as a pure Run.
	source := `
var total = 0;
var i = 0;
while (i < 4) {
  total = total + i;
  i = i + 1;
}
print total;
`
	pure := compileMachine(t, source)
	var pureOut strings.Builder
	pure.SetOutput(&pureOut)
	pureOutcome := pure.Run()

	mixed := compileMachine(t, source)
	var mixedOut strings.Builder
	mixed.SetOutput(&mixedOut)
	for i := 0; i < 3; i++ {
		if outcome := mixed.Step(); outcome.Finished {
			t.Fatalf("Program finished unexpectedly at step %d", i+1)
		}
	}
	mixedOutcome := mixed.Run()

	if !mixedOutcome.Finished || mixedOutcome.Err != nil {
		t.Fatalf("Run after stepping = %+v", mixedOutcome)
	}
	if !mixed.Finished() {
		t.Error("Machine should report finished after Run")
	}
	if mixedOutcome.Finished != pureOutcome.Finished {
		t.Errorf("Finished mismatch: mixed %v, pure %v", mixedOutcome.Finished, pureOutcome.Finished)
	}
	if mixedOut.String() != pureOut.String() {
		t.Errorf("Output mismatch: mixed %q, pure %q", mixedOut.String(), pureOut.String())
	}
}

func TestMachineRunMatchesSteppingOnError(t *testing.T) {
	source := `print 1 + true;`

	runM := compileMachine(t, source)
	runM.SetOutput(&strings.Builder{})
	runOutcome := runM.Run()

	stepM := compileMachine(t, source)
	stepM.SetOutput(&strings.Builder{})
	var stepOutcome Outcome
	for {
		stepOutcome = stepM.Step()
		if stepOutcome.Finished {
			break
		}
	}

	if runOutcome.Err == nil || stepOutcome.Err == nil {
		t.Fatalf("Both should error: run %v, step %v", runOutcome.Err, stepOutcome.Err)
	}
	if runOutcome.Err.Message != stepOutcome.Err.Message {
		t.Errorf("Messages differ: %q vs %q", runOutcome.Err.Message, stepOutcome.Err.Message)
	}
}

// ============ Outcome Mapping Tests ============

func TestFinishedOutcomeCarriesRuntimeError(t *testing.T) {
	re := &bytecode.RuntimeError{Line: 2, Message: "boom"}
	out := finishedOutcome(re)
	if !out.Finished || out.Err != re {
		t.Errorf("finishedOutcome = %+v, want finished with the error", out)
	}
	if out := finishedOutcome(nil); !out.Finished || out.Err != nil {
		t.Errorf("finishedOutcome(nil) = %+v, want clean finish", out)
	}
}

func TestFinishedOutcomeRejectsForeignError(t *testing.T) {
	expectPanic(t, "mapping a non-runtime error", func() {
		finishedOutcome(errors.New("not a runtime error"))
	})
}

// ============ Cancellation Tests ============

func TestMachineAbandonMidExecution(t *testing.T) {
	// Cancellation is just ceasing to step; the machine is dropped with
	// partial state and nothing else needs to happen.
	m := compileMachine(t, `var i = 0; while (i < 1000) { i = i + 1; }`)
	for i := 0; i < 10; i++ {
		if outcome := m.Step(); outcome.Finished {
			t.Fatalf("Program finished unexpectedly at step %d", i+1)
		}
	}
	if m.Finished() {
		t.Error("Abandoned machine is merely suspended")
	}
}
