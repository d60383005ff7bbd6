package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				expStart := i + 2
				j := expStart
				for j < len(s) && s[j] == '0' {
					j++
				}
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol

	TypeObject
	TypeArray
	TypeFunction
	TypeProxy
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	case TypeProxy:
		return "proxy"
	default:
		return "unknown"
	}
}

// SymbolObject is the identity behind a symbol value.
type SymbolObject struct {
	description string
}

// Value is a tagged ECMAScript value. Numbers and booleans live in payload;
// strings, symbols and objects live in ref. Object values share their
// underlying Object with every copy of the Value.
type Value struct {
	typ     ValueType
	payload uint64
	ref     any
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int) Value {
	return NumberValue(float64(value))
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, ref: value}
}

func NewSymbol(description string) Value {
	return Value{typ: TypeSymbol, ref: &SymbolObject{description: description}}
}

func objectValue(typ ValueType, o Object) Value {
	return Value{typ: typ, ref: o}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsArray() bool     { return v.typ == TypeArray }
func (v Value) IsProxy() bool     { return v.typ == TypeProxy }

func (v Value) IsObject() bool {
	return v.typ == TypeObject || v.typ == TypeArray || v.typ == TypeFunction || v.typ == TypeProxy
}

// IsCallable reports whether v has a [[Call]] internal method.
func (v Value) IsCallable() bool {
	return v.IsObject() && v.AsObject().IsCallable()
}

// TypeName returns the result of the typeof operator.
func (v Value) TypeName() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeFunction:
		return "function"
	case TypeProxy:
		// Proxy typeof depends on whether the target is callable
		if v.AsProxy().callable {
			return "function"
		}
		return "object"
	case TypeObject, TypeArray:
		return "object"
	default:
		return fmt.Sprintf("<unknown type: %d>", v.typ)
	}
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload != 0
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.ref.(string)
}

func (v Value) AsSymbol() *SymbolObject {
	if v.typ != TypeSymbol {
		panic("value is not a symbol")
	}
	return v.ref.(*SymbolObject)
}

// AsObject returns the internal-method interface of an object value.
func (v Value) AsObject() Object {
	if !v.IsObject() {
		panic("value is not an object")
	}
	return v.ref.(Object)
}

func (v Value) AsPlainObject() *PlainObject {
	if v.typ != TypeObject {
		panic("value is not a plain object")
	}
	return v.ref.(*PlainObject)
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return v.ref.(*ArrayObject)
}

func (v Value) AsFunction() *FunctionObject {
	if v.typ != TypeFunction {
		panic("value is not a function")
	}
	return v.ref.(*FunctionObject)
}

func (v Value) AsProxy() *ProxyObject {
	if v.typ != TypeProxy {
		panic("value is not a proxy")
	}
	return v.ref.(*ProxyObject)
}

// IsTruthy implements ToBoolean.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.payload != 0
	case TypeNumber:
		f := v.AsNumber()
		return f != 0 && !math.IsNaN(f)
	case TypeString:
		return v.AsString() != ""
	default:
		return true
	}
}

// SameValue implements the SameValue algorithm: NaN equals NaN, +0 and -0 differ,
// objects and symbols compare by identity.
func SameValue(a, b Value) bool {
	if a.IsObject() && b.IsObject() {
		return a.ref == b.ref
	}
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.payload == b.payload
	case TypeNumber:
		x, y := a.AsNumber(), b.AsNumber()
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	case TypeString:
		return a.AsString() == b.AsString()
	case TypeSymbol:
		return a.ref == b.ref
	}
	return false
}

// numberToString formats a float the way Number.prototype.toString does for radix 10.
func numberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Inspect renders v for diagnostics without running any user code.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return numberToString(v.AsNumber())
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeSymbol:
		return fmt.Sprintf("Symbol(%s)", v.AsSymbol().description)
	case TypeProxy:
		p := v.AsProxy()
		return fmt.Sprintf("[Proxy target=%s]", p.target.Inspect())
	case TypeFunction:
		return fmt.Sprintf("[Function: %s]", v.AsFunction().name)
	case TypeArray:
		a := v.AsArray()
		return fmt.Sprintf("[Array(%d)]", a.length())
	case TypeObject:
		o := v.AsPlainObject()
		if name, ok := o.lookupDataString("name"); ok {
			if msg, ok := o.lookupDataString("message"); ok {
				return name + ": " + msg
			}
		}
		keys := make([]string, 0, len(o.keys))
		for _, k := range o.keys {
			keys = append(keys, k.debugName())
		}
		return "{" + strings.Join(keys, ", ") + "}"
	default:
		return "<unknown>"
	}
}

func (v Value) String() string { return v.Inspect() }
