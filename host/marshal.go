package host

import (
	"fmt"

	"github.com/cinderlang/cinder/bytecode"
)

// ToHost converts a VM value to its host (Go) representation: number to
// float64, boolean to bool, string to string, null to nil. Any other
// variant cannot cross the boundary; encountering one is a contract
// violation and panics.
func ToHost(v bytecode.Value) any {
	switch v.Tag {
	case bytecode.TagNumber:
		return v.Num
	case bytecode.TagBool:
		return v.B
	case bytecode.TagString:
		return v.Str
	case bytecode.TagNull:
		return nil
	default:
		panic(fmt.Sprintf("cinder/host: unsupported value %s cannot cross the host boundary", v.Tag))
	}
}

// FromHost converts a host (Go) value to a VM value. Classification
// follows a fixed priority: nil, then any numeric type, then bool, then
// string. The numeric-before-bool order is deliberate; callers must be
// able to rely on a numeric zero marshalling as a number, never as a
// boolean. Anything else is a contract violation and panics.
func FromHost(v any) bytecode.Value {
	if v == nil {
		return bytecode.Null
	}
	if n, ok := asNumber(v); ok {
		return bytecode.Number(n)
	}
	switch h := v.(type) {
	case bool:
		return bytecode.Bool(h)
	case string:
		return bytecode.Str(h)
	}
	panic(fmt.Sprintf("cinder/host: unsupported host value of type %T", v))
}

// asNumber widens every Go numeric type to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
