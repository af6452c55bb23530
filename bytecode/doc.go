// Package bytecode provides the stack-based virtual machine that executes
// compiled Cinder programs.
//
// The bytecode format is designed for:
//   - Compact representation (typically 1-3 bytes per instruction)
//   - Fast decoding (fixed-width opcodes, simple operand formats)
//   - Easy serialization (program images can be written to disk and
//     reloaded without recompiling)
//
// # Architecture Overview
//
//   - Opcodes: stack-based instructions covering constants, variable
//     access, arithmetic, comparison, control flow, native calls, and
//     output, organized into numeric ranges by category
//
//   - Chunk: a compiled program unit containing code, a deduplicated
//     constant pool, and run-length line information for diagnostics
//
//   - VM: the interpreter. Run drives a chunk to completion; Step
//     executes exactly one instruction so an embedding host can pause,
//     inspect, or abandon execution at any instruction boundary
//
//   - ProgramImage: the CBOR wire format for ahead-of-time compiled
//     chunks, stamped with a build ID and format version
//
// # Native Functions
//
// Host functions enter the VM as NativeFunction values installed in the
// global table before execution. The VM calls them through a single
// uniform signature (a slice of Values in, one Value out) and knows
// nothing else about the host.
//
// # Execution Model
//
// The VM is single-frame and single-owner. There is no background
// execution: Run and Step do all work on the caller's goroutine, and a
// runtime error leaves the VM finished. Errors are returned as
// *RuntimeError values, never panics.
package bytecode
