package bytecode

// NativeFn is the uniform calling convention for functions implemented
// outside the VM: a slice of argument Values in, a single Value out.
// It is the only interface the VM knows about for foreign code.
type NativeFn func(args []Value) Value

// NativeFunction describes a function implemented by the embedding host
// and made callable from compiled programs.
type NativeFunction struct {
	Name  string
	Arity uint8
	Fn    NativeFn
}
