package vm

import (
	"fmt"
	"strconv"
)

type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
)

// PropertyKey represents a property key which can be a string or a symbol
type PropertyKey struct {
	kind      KeyKind
	name      string // for string keys
	symbolVal Value  // for symbol keys (TypeSymbol)
}

func keyFromString(name string) PropertyKey {
	return PropertyKey{kind: KeyKindString, name: name}
}

func keyFromSymbol(sym Value) PropertyKey {
	return PropertyKey{kind: KeyKindSymbol, symbolVal: sym}
}

// NewStringKey constructs an exported PropertyKey for string-named properties.
func NewStringKey(name string) PropertyKey { return keyFromString(name) }

// NewSymbolKey constructs an exported PropertyKey for symbol-named properties.
func NewSymbolKey(sym Value) PropertyKey { return keyFromSymbol(sym) }

// IndexKey returns the key ToString(i) for an array index.
func IndexKey(i int) PropertyKey { return keyFromString(strconv.Itoa(i)) }

func (k PropertyKey) IsString() bool { return k.kind == KeyKindString }
func (k PropertyKey) IsSymbol() bool { return k.kind == KeyKindSymbol }

// Name returns the string name of a string key.
func (k PropertyKey) Name() string { return k.name }

// ToValue converts the key back into a string or symbol value, the form traps receive.
func (k PropertyKey) ToValue() Value {
	if k.kind == KeyKindSymbol {
		return k.symbolVal
	}
	return NewString(k.name)
}

func (k PropertyKey) debugName() string {
	switch k.kind {
	case KeyKindString:
		return k.name
	case KeyKindSymbol:
		return fmt.Sprintf("Symbol(%s)", k.symbolVal.AsSymbol().description)
	default:
		return "<unknown-key>"
	}
}

func (k PropertyKey) String() string { return k.debugName() }

func (k PropertyKey) hash() string {
	switch k.kind {
	case KeyKindString:
		return "s:" + k.name
	case KeyKindSymbol:
		return fmt.Sprintf("y:%p", k.symbolVal.AsSymbol())
	default:
		return "?"
	}
}

// arrayIndex reports whether the key is a canonical array index and returns it.
func (k PropertyKey) arrayIndex() (uint32, bool) {
	if k.kind != KeyKindString {
		return 0, false
	}
	idx, ok := tryParseArrayIndex(k.name)
	return uint32(idx), ok
}

// tryParseArrayIndex checks if a string represents a valid array index.
// Returns (index, true) if valid, (0, false) otherwise.
// Valid array indices are non-negative integers in range [0, 2^32-1) without leading zeros.
func tryParseArrayIndex(key string) (int, bool) {
	if len(key) == 0 || len(key) > 10 {
		return 0, false
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	n := 0
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n >= 4294967295 {
		return 0, false
	}
	return n, true
}

// keyFromValue converts a string or symbol value into a key. Other values must
// go through ToPropertyKey first.
func keyFromValue(v Value) PropertyKey {
	if v.IsSymbol() {
		return keyFromSymbol(v)
	}
	return keyFromString(v.AsString())
}
