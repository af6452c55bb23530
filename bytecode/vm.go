package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// RuntimeError is a fault raised while executing a chunk. It terminates
// the execution that raised it but is recoverable by the embedding host.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// VM executes a single compiled chunk. It is single-owner and
// synchronous: all work happens inside the caller's Run or Step call,
// and the VM never yields on its own between instructions.
type VM struct {
	chunk    *Chunk
	ip       int
	stack    []Value
	sp       int
	globals  map[string]Value
	out      io.Writer
	finished bool

	// Trace logs each instruction before dispatch.
	Trace bool
}

// NewVM creates a VM for a chunk and installs the native table as
// globals in registration order. Later entries overwrite earlier ones
// of the same name.
func NewVM(chunk *Chunk, natives []NativeFunction) *VM {
	vm := &VM{
		chunk:   chunk,
		stack:   make([]Value, 256),
		globals: make(map[string]Value),
		out:     os.Stdout,
	}
	for i := range natives {
		n := natives[i]
		vm.globals[n.Name] = Native(&n)
	}
	return vm
}

// SetOutput redirects where OpPrint writes. Defaults to os.Stdout.
func (vm *VM) SetOutput(w io.Writer) {
	vm.out = w
}

// Finished reports whether execution has completed, successfully or not.
func (vm *VM) Finished() bool {
	return vm.finished
}

// Run drives the chunk to completion. Returns nil on normal completion
// or the *RuntimeError that aborted execution.
func (vm *VM) Run() error {
	for {
		more, err := vm.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step executes exactly one instruction. It returns true while more
// instructions remain, and false once the program has completed. A
// returned error is a *RuntimeError; it also marks the VM finished.
func (vm *VM) Step() (bool, error) {
	if vm.finished || vm.ip >= len(vm.chunk.Code) {
		vm.finished = true
		return false, nil
	}

	opOffset := vm.ip
	op := Opcode(vm.chunk.Code[vm.ip])
	vm.ip++

	if vm.Trace {
		fmt.Fprintf(vm.out, "[%04x] %-16s sp=%d\n", opOffset, op.Name(), vm.sp)
	}

	fail := func(format string, args ...any) (bool, error) {
		vm.finished = true
		return false, &RuntimeError{
			Line:    vm.chunk.LineForOffset(opOffset),
			Message: fmt.Sprintf(format, args...),
		}
	}

	switch op {
	// ============ Stack Operations ============
	case OpNop:
		// Do nothing

	case OpPop:
		vm.sp--

	case OpDup:
		vm.push(vm.peek(0))

	// ============ Constants ============
	case OpConst:
		idx := vm.readUint16()
		vm.push(vm.chunk.Constants[idx])

	case OpNull:
		vm.push(Null)

	case OpTrue:
		vm.push(Bool(true))

	case OpFalse:
		vm.push(Bool(false))

	case OpZero:
		vm.push(Number(0))

	case OpOne:
		vm.push(Number(1))

	// ============ Globals ============
	case OpDefineGlobal:
		name := vm.constantName(vm.readUint16())
		vm.globals[name] = vm.pop()

	case OpLoadGlobal:
		name := vm.constantName(vm.readUint16())
		v, ok := vm.globals[name]
		if !ok {
			return fail("undefined variable '%s'", name)
		}
		vm.push(v)

	case OpStoreGlobal:
		name := vm.constantName(vm.readUint16())
		if _, ok := vm.globals[name]; !ok {
			return fail("undefined variable '%s'", name)
		}
		// Assignment is an expression; leave the value on the stack.
		vm.globals[name] = vm.peek(0)

	// ============ Locals ============
	case OpLoadLocal:
		slot := vm.readByte()
		vm.push(vm.stack[slot])

	case OpStoreLocal:
		slot := vm.readByte()
		vm.stack[slot] = vm.peek(0)

	// ============ Arithmetic ============
	case OpAdd:
		b, a := vm.pop(), vm.pop()
		switch {
		case a.IsNumber() && b.IsNumber():
			vm.push(Number(a.Num + b.Num))
		case a.IsString() && b.IsString():
			vm.push(Str(a.Str + b.Str))
		default:
			return fail("operands to '+' must be two numbers or two strings, got %s and %s", a.Tag, b.Tag)
		}

	case OpSub, OpMul, OpDiv:
		b, a := vm.pop(), vm.pop()
		if !a.IsNumber() || !b.IsNumber() {
			return fail("operands to '%s' must be numbers, got %s and %s", arithSymbol(op), a.Tag, b.Tag)
		}
		switch op {
		case OpSub:
			vm.push(Number(a.Num - b.Num))
		case OpMul:
			vm.push(Number(a.Num * b.Num))
		case OpDiv:
			if b.Num == 0 {
				return fail("division by zero")
			}
			vm.push(Number(a.Num / b.Num))
		}

	case OpNeg:
		a := vm.pop()
		if !a.IsNumber() {
			return fail("operand to unary '-' must be a number, got %s", a.Tag)
		}
		vm.push(Number(-a.Num))

	// ============ Comparison and Logic ============
	case OpEq:
		b, a := vm.pop(), vm.pop()
		vm.push(Bool(a.Equal(b)))

	case OpNe:
		b, a := vm.pop(), vm.pop()
		vm.push(Bool(!a.Equal(b)))

	case OpLt, OpLe, OpGt, OpGe:
		b, a := vm.pop(), vm.pop()
		if !a.IsNumber() || !b.IsNumber() {
			return fail("comparison operands must be numbers, got %s and %s", a.Tag, b.Tag)
		}
		switch op {
		case OpLt:
			vm.push(Bool(a.Num < b.Num))
		case OpLe:
			vm.push(Bool(a.Num <= b.Num))
		case OpGt:
			vm.push(Bool(a.Num > b.Num))
		case OpGe:
			vm.push(Bool(a.Num >= b.Num))
		}

	case OpNot:
		vm.push(Bool(!vm.pop().Truthy()))

	// ============ Control Flow ============
	case OpJump:
		offset := vm.readUint16()
		vm.ip += int(offset)

	case OpJumpFalse:
		offset := vm.readUint16()
		if !vm.peek(0).Truthy() {
			vm.ip += int(offset)
		}

	case OpLoop:
		offset := vm.readUint16()
		vm.ip -= int(offset)

	// ============ Calls ============
	case OpCall:
		argc := int(vm.readByte())
		callee := vm.peek(argc)
		if callee.Tag != TagNative {
			return fail("can only call functions, got %s", callee.Tag)
		}
		fn := callee.Fn
		if int(fn.Arity) != argc {
			return fail("%s expects %d arguments, got %d", fn.Name, fn.Arity, argc)
		}
		args := make([]Value, argc)
		copy(args, vm.stack[vm.sp-argc:vm.sp])
		result := fn.Fn(args)
		vm.sp -= argc + 1
		vm.push(result)

	// ============ Output and Termination ============
	case OpPrint:
		fmt.Fprintln(vm.out, vm.pop().String())

	case OpReturn:
		vm.finished = true
		return false, nil

	default:
		return fail("unknown opcode 0x%02X", byte(op))
	}

	if vm.ip >= len(vm.chunk.Code) {
		vm.finished = true
		return false, nil
	}
	return true, nil
}

// ============ Stack helpers ============

func (vm *VM) push(v Value) {
	if vm.sp == len(vm.stack) {
		vm.stack = append(vm.stack, v)
		vm.sp++
		return
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.stack[vm.sp]
}

// peek returns the value distance slots below the top without popping.
func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.sp-1-distance]
}

// readByte consumes a one-byte operand.
func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

// readUint16 consumes a big-endian two-byte operand.
func (vm *VM) readUint16() uint16 {
	v := binary.BigEndian.Uint16(vm.chunk.Code[vm.ip:])
	vm.ip += 2
	return v
}

// constantName reads a name from the constant pool for global access.
func (vm *VM) constantName(idx uint16) string {
	return vm.chunk.Constants[idx].Str
}

func arithSymbol(op Opcode) string {
	switch op {
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return op.Name()
	}
}
