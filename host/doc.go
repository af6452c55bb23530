// Package host is the embedding surface of the Cinder runtime. It is the
// only package a host application needs: it compiles source text into a
// runnable Machine, bridges host-defined native functions into the VM's
// calling convention, and marshals values across the host/VM boundary.
//
// # Compilation
//
// Compile takes source text plus an ordered table of NativeFunc entries
// and returns a CompileResult. On success the result owns a ready
// Machine; on failure it carries the full batch of compile errors. Both
// are handed out exactly once via TakeMachine/TakeErrors, transferring
// ownership to the caller.
//
// Every compiled program additionally sees a zero-argument native named
// "time" returning the current epoch time in seconds, appended after all
// host-registered natives.
//
// # Execution
//
// A Machine drives one compiled program, either to completion with Run
// or one instruction at a time with Step. Stepping never changes a
// program's observable result, only the granularity at which the host
// can interleave inspection or cancellation. Once a Machine reports a
// finished Outcome it must not be driven again; doing so panics.
//
// # Value marshalling
//
// Values cross the boundary as Go values: float64, bool, string, and nil
// map to the VM's number, boolean, string, and null. FromHost classifies
// ambiguous inputs in a fixed priority order (nil, then numeric, then
// bool, then string); anything outside the closed set is a contract
// violation and panics.
//
// # Error model
//
// Compile errors and runtime errors are data, returned to the caller.
// Panics are reserved for contract violations: driving a finished
// Machine, or a native function producing an unmarshallable value.
package host
