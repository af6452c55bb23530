package host

import (
	"github.com/cinderlang/cinder/bytecode"
)

// NativeFunc describes a host function made callable from compiled
// programs. The implementation receives marshalled host values in call
// order and must return a value FromHost can classify.
type NativeFunc struct {
	Name  string
	Arity uint8
	Impl  func(args ...any) any
}

// bind wraps a NativeFunc in the VM's uniform calling convention. Each
// invocation marshals every argument out to the host representation,
// calls the implementation synchronously, and marshals the result back.
// The bridge holds no state between calls.
//
// A panicking implementation, or one returning an unmarshallable value,
// is a fatal bridge fault: the VM has no semantics for a native call
// that cannot produce a value, so the panic propagates rather than being
// converted to a runtime error.
func bind(n NativeFunc) bytecode.NativeFunction {
	impl := n.Impl
	return bytecode.NativeFunction{
		Name:  n.Name,
		Arity: n.Arity,
		Fn: func(vals []bytecode.Value) bytecode.Value {
			args := make([]any, len(vals))
			for i, v := range vals {
				args[i] = ToHost(v)
			}
			return FromHost(impl(args...))
		},
	}
}

// bindAll bridges a native table, preserving registration order, and
// appends the implicit clock capability last so it is always present.
func bindAll(natives []NativeFunc) []bytecode.NativeFunction {
	bound := make([]bytecode.NativeFunction, 0, len(natives)+1)
	for _, n := range natives {
		bound = append(bound, bind(n))
	}
	return append(bound, timeNative())
}
