package compiler

import (
	"strings"
	"testing"

	"github.com/cinderlang/cinder/bytecode"
)

// compileRun compiles source and runs it, returning printed output and
// any runtime error. Compile errors fail the test.
func compileRun(t *testing.T, source string, natives []bytecode.NativeFunction) (string, error) {
	t.Helper()
	names := make([]string, len(natives))
	for i, n := range natives {
		names[i] = n.Name
	}
	chunk, errs := Compile(source, names)
	if len(errs) > 0 {
		t.Fatalf("Compile failed: %v", errs)
	}
	var out strings.Builder
	vm := bytecode.NewVM(chunk, natives)
	vm.SetOutput(&out)
	err := vm.Run()
	return out.String(), err
}

// compileErrs compiles source expecting failure and returns the batch.
func compileErrs(t *testing.T, source string) []CompileError {
	t.Helper()
	chunk, errs := Compile(source, nil)
	if chunk != nil {
		t.Fatal("Failed compile must not return a chunk")
	}
	if len(errs) == 0 {
		t.Fatal("Expected compile errors, got none")
	}
	return errs
}

// ============ Expression Tests ============

func TestCompilePrintArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print 1 + 2;", "3"},
		{"print 10 - 4;", "6"},
		{"print 2 * 3 + 4;", "10"},
		{"print 2 + 3 * 4;", "14"},
		{"print (2 + 3) * 4;", "20"},
		{"print -5 + 1;", "-4"},
		{"print 9 / 2;", "4.5"},
		{"print \"foo\" + \"bar\";", "foobar"},
		{"print 1 < 2;", "true"},
		{"print 2 <= 1;", "false"},
		{"print 1 == 1;", "true"},
		{"print 1 != 1;", "false"},
		{"print !true;", "false"},
		{"print !null;", "true"},
		{"print true and false;", "false"},
		{"print true and 7;", "7"},
		{"print false or \"x\";", "x"},
		{"print null;", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			out, err := compileRun(t, tt.source, nil)
			if err != nil {
				t.Fatalf("Runtime error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("Got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileShortCircuit(t *testing.T) {
	called := false
	boom := bytecode.NativeFunction{
		Name:  "boom",
		Arity: 0,
		Fn: func([]bytecode.Value) bytecode.Value {
			called = true
			return bytecode.Null
		},
	}
	out, err := compileRun(t, `print false and boom();`, []bytecode.NativeFunction{boom})
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if called {
		t.Error("Right operand of short-circuited 'and' must not run")
	}
	if got := strings.TrimSpace(out); got != "false" {
		t.Errorf("Got %q, want false", got)
	}
}

// ============ Variable Tests ============

func TestCompileGlobals(t *testing.T) {
	source := `
var a = 1;
var b = a + 2;
a = b * 10;
print a;
`
	out, err := compileRun(t, source, nil)
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "30" {
		t.Errorf("Got %q, want 30", got)
	}
}

func TestCompileLocalsAndScopes(t *testing.T) {
	source := `
var x = "global";
{
  var x = "outer";
  {
    var x = "inner";
    print x;
  }
  print x;
}
print x;
`
	out, err := compileRun(t, source, nil)
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	want := "inner\nouter\nglobal\n"
	if out != want {
		t.Errorf("Got %q, want %q", out, want)
	}
}

func TestCompileLocalAssignment(t *testing.T) {
	source := `
{
  var a = 1;
  var b = 2;
  a = a + b;
  print a;
}
`
	out, err := compileRun(t, source, nil)
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "3" {
		t.Errorf("Got %q, want 3", got)
	}
}

// ============ Control Flow Tests ============

func TestCompileIfElse(t *testing.T) {
	source := `
if (1 < 2) { print "then"; } else { print "else"; }
if (1 > 2) { print "then"; } else { print "else"; }
if (false) print "skipped";
`
	out, err := compileRun(t, source, nil)
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	want := "then\nelse\n"
	if out != want {
		t.Errorf("Got %q, want %q", out, want)
	}
}

func TestCompileWhileLoop(t *testing.T) {
	source := `
var sum = 0;
var i = 1;
while (i <= 5) {
  sum = sum + i;
  i = i + 1;
}
print sum;
`
	out, err := compileRun(t, source, nil)
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "15" {
		t.Errorf("Got %q, want 15", got)
	}
}

// ============ Native Call Tests ============

func TestCompileNativeCall(t *testing.T) {
	add := bytecode.NativeFunction{
		Name:  "add",
		Arity: 2,
		Fn: func(args []bytecode.Value) bytecode.Value {
			return bytecode.Number(args[0].Num + args[1].Num)
		},
	}
	out, err := compileRun(t, `print add(2, 3);`, []bytecode.NativeFunction{add})
	if err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "5" {
		t.Errorf("Got %q, want 5", got)
	}
}

func TestCompileUnknownNativeIsCompileError(t *testing.T) {
	_, errs := Compile(`print nope();`, []string{"other"})
	if len(errs) == 0 {
		t.Fatal("Expected undefined variable error")
	}
	if !strings.Contains(errs[0].Message, "undefined variable 'nope'") {
		t.Errorf("Got %q", errs[0].Message)
	}
}

// ============ Error Reporting Tests ============

func TestCompileErrorHasPosition(t *testing.T) {
	errs := compileErrs(t, "var = 1;")
	e := errs[0]
	if e.Line != 1 {
		t.Errorf("Line %d, want 1", e.Line)
	}
	if e.Start != 4 {
		t.Errorf("Start %d, want 4 (the '=')", e.Start)
	}
	if e.Len != 1 {
		t.Errorf("Len %d, want 1", e.Len)
	}
}

func TestCompileErrorLineNumbers(t *testing.T) {
	errs := compileErrs(t, "var a = 1;\nvar b = ;")
	if errs[0].Line != 2 {
		t.Errorf("Line %d, want 2", errs[0].Line)
	}
}

func TestCompileBatchesMultipleErrors(t *testing.T) {
	source := `
var a = ;
var b = 1;
print c;
`
	errs := compileErrs(t, source)
	if len(errs) < 2 {
		t.Fatalf("Expected at least 2 errors after recovery, got %d: %v", len(errs), errs)
	}
}

func TestCompilePanicModeSuppressesCascade(t *testing.T) {
	// One broken statement should yield one error, not a cascade.
	errs := compileErrs(t, "print 1 + + ;")
	if len(errs) != 1 {
		t.Errorf("Expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestCompileRedeclaredLocal(t *testing.T) {
	errs := compileErrs(t, "{ var a = 1; var a = 2; }")
	if !strings.Contains(errs[0].Message, "already declared") {
		t.Errorf("Got %q", errs[0].Message)
	}
}

func TestCompileInvalidAssignmentTarget(t *testing.T) {
	errs := compileErrs(t, "var a = 1; var b = 2; a + b = 3;")
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "invalid assignment target") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected invalid assignment target, got %v", errs)
	}
}

func TestCompileSelfReferentialInitializer(t *testing.T) {
	errs := compileErrs(t, "{ var a = a; }")
	if !strings.Contains(errs[0].Message, "initializer") &&
		!strings.Contains(errs[0].Message, "undefined") {
		t.Errorf("Got %q", errs[0].Message)
	}
}

// ============ Disassembly Smoke Test ============

func TestCompiledChunkDisassembles(t *testing.T) {
	chunk, errs := Compile(`var a = 1; print a + 2;`, nil)
	if len(errs) > 0 {
		t.Fatalf("Compile failed: %v", errs)
	}
	listing := chunk.Disassemble()
	for _, want := range []string{"DEFINE_GLOBAL", "LOAD_GLOBAL", "ADD", "PRINT", "RETURN"} {
		if !strings.Contains(listing, want) {
			t.Errorf("Listing missing %s:\n%s", want, listing)
		}
	}
}
