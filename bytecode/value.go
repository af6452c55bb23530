package bytecode

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ValueTag identifies which variant of the Value union is populated.
type ValueTag uint8

const (
	TagNull ValueTag = iota
	TagNumber
	TagBool
	TagString
	// TagNative marks a native function object. It exists on the VM stack
	// and in the global table but never in a constant pool, and it never
	// crosses the host boundary.
	TagNative
)

// String returns a human-readable name for ValueTag.
func (t ValueTag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagNumber:
		return "number"
	case TagBool:
		return "boolean"
	case TagString:
		return "string"
	case TagNative:
		return "native function"
	default:
		return fmt.Sprintf("ValueTag(%d)", uint8(t))
	}
}

// Value is the closed union of types a Cinder program manipulates.
// Values are immutable and copied by value; the populated field is
// determined by Tag and the others are zero.
type Value struct {
	Tag ValueTag
	Num float64
	Str string
	B   bool
	Fn  *NativeFunction `cbor:"-"`
}

// Null is the null value.
var Null = Value{Tag: TagNull}

// Number wraps a float64 as a Value.
func Number(n float64) Value {
	return Value{Tag: TagNumber, Num: n}
}

// Bool wraps a bool as a Value.
func Bool(b bool) Value {
	return Value{Tag: TagBool, B: b}
}

// Str wraps a string as a Value.
func Str(s string) Value {
	return Value{Tag: TagString, Str: s}
}

// Native wraps a native function as a Value.
func Native(fn *NativeFunction) Value {
	return Value{Tag: TagNative, Fn: fn}
}

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.Tag == TagNumber }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.Tag == TagString }

// Truthy reports whether v counts as true in a condition.
// Null and false are falsy; every other value is truthy.
func (v Value) Truthy() bool {
	switch v.Tag {
	case TagNull:
		return false
	case TagBool:
		return v.B
	default:
		return true
	}
}

// Equal reports whether two values are equal. Values of different
// types are never equal; natives compare by identity.
func (v Value) Equal(o Value) bool {
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case TagNull:
		return true
	case TagNumber:
		return v.Num == o.Num
	case TagBool:
		return v.B == o.B
	case TagString:
		return v.Str == o.Str
	case TagNative:
		return v.Fn == o.Fn
	default:
		return false
	}
}

// String formats v the way `print` displays it.
func (v Value) String() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case TagBool:
		return strconv.FormatBool(v.B)
	case TagString:
		return v.Str
	case TagNative:
		return "<native " + v.Fn.Name + ">"
	default:
		return fmt.Sprintf("<unknown tag %d>", v.Tag)
	}
}

// Quote formats v for disassembly listings: strings are quoted and
// escaped, everything else prints as usual.
func (v Value) Quote() string {
	if v.Tag == TagString {
		s := v.Str
		if len(s) > 40 {
			cut := 37
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			s = s[:cut] + "..."
		}
		return strconv.Quote(s)
	}
	return v.String()
}
