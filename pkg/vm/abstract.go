package vm

import (
	"math"
	"strconv"
	"strings"
)

const maxSafeInteger = 1<<53 - 1

// Call implements the Call abstract operation.
func Call(vm *VM, f Value, this Value, args []Value) (Value, error) {
	if !f.IsCallable() {
		return Undefined, vm.NewTypeError("%s is not a function", f.Inspect())
	}
	return f.AsObject().Call(this, args)
}

// Get implements Get(O, P) for object values.
func Get(vm *VM, o Value, key PropertyKey) (Value, error) {
	if !o.IsObject() {
		return Undefined, vm.NewTypeError("Cannot read properties of %s (reading '%s')", o.Inspect(), key)
	}
	return o.AsObject().Get(key, o)
}

// Set implements Set(O, P, V, Throw).
func Set(vm *VM, o Value, key PropertyKey, v Value, throw bool) error {
	ok, err := o.AsObject().Set(key, v, o)
	if err != nil {
		return err
	}
	if !ok && throw {
		return vm.NewTypeError("Cannot assign to read only property '%s' of %s", key, o.Inspect())
	}
	return nil
}

// HasProperty implements HasProperty(O, P).
func HasProperty(o Value, key PropertyKey) (bool, error) {
	return o.AsObject().HasProperty(key)
}

// CreateDataProperty defines key on o as a writable, enumerable, configurable
// data property through o's own [[DefineOwnProperty]].
func CreateDataProperty(o Value, key PropertyKey, v Value) (bool, error) {
	return o.AsObject().DefineOwnProperty(key, DataDescriptor(v, true, true, true))
}

// CreateDataPropertyOrThrow is CreateDataProperty with a false result turned
// into a TypeError. Errors raised during the definition are returned unchanged.
func CreateDataPropertyOrThrow(vm *VM, o Value, key PropertyKey, v Value) error {
	ok, err := CreateDataProperty(o, key, v)
	if err != nil {
		return err
	}
	if !ok {
		return vm.NewTypeError("Cannot add property %s, object is not extensible or the property is not configurable", key)
	}
	return nil
}

// DefinePropertyOrThrow implements DefinePropertyOrThrow(O, P, desc).
func DefinePropertyOrThrow(vm *VM, o Value, key PropertyKey, desc PropertyDescriptor) error {
	ok, err := o.AsObject().DefineOwnProperty(key, desc)
	if err != nil {
		return err
	}
	if !ok {
		return vm.NewTypeError("Cannot redefine property: %s", key)
	}
	return nil
}

// GetMethod returns o[key] when it is callable, Undefined when it is nullish,
// and a TypeError otherwise.
func GetMethod(vm *VM, o Value, key PropertyKey) (Value, error) {
	fn, err := Get(vm, o, key)
	if err != nil {
		return Undefined, err
	}
	if fn.IsNullish() {
		return Undefined, nil
	}
	if !fn.IsCallable() {
		return Undefined, vm.NewTypeError("%s is not a function", fn.Inspect())
	}
	return fn, nil
}

// LengthOfArrayLike returns ToLength(Get(o, "length")).
func LengthOfArrayLike(vm *VM, o Value) (int, error) {
	v, err := Get(vm, o, keyFromString("length"))
	if err != nil {
		return 0, err
	}
	return ToLength(vm, v)
}

// CreateListFromArrayLike reads o[0..length) into a slice. Lengths beyond
// the largest array length are a RangeError.
func CreateListFromArrayLike(vm *VM, o Value) ([]Value, error) {
	if !o.IsObject() {
		return nil, vm.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := LengthOfArrayLike(vm, o)
	if err != nil {
		return nil, err
	}
	if n > maxArrayLength {
		return nil, vm.NewRangeError("Invalid array length")
	}
	var list []Value
	for i := 0; i < n; i++ {
		v, err := Get(vm, o, IndexKey(i))
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

// ToLength clamps ToIntegerOrInfinity(v) into [0, 2^53-1].
func ToLength(vm *VM, v Value) (int, error) {
	n, err := ToIntegerOrInfinity(vm, v)
	if err != nil {
		return 0, err
	}
	switch {
	case n <= 0:
		return 0, nil
	case n >= maxSafeInteger:
		return maxSafeInteger, nil
	}
	return int(n), nil
}

// ToIntegerOrInfinity truncates ToNumber(v) toward zero; NaN becomes 0.
func ToIntegerOrInfinity(vm *VM, v Value) (float64, error) {
	f, err := ToNumber(vm, v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return math.Trunc(f), nil
}

// ToUint32 implements the modular ToUint32 conversion.
func ToUint32(vm *VM, v Value) (uint32, error) {
	f, err := ToNumber(vm, v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, nil
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m), nil
}

// ToNumber implements ToNumber, calling valueOf/toString on objects.
func ToNumber(vm *VM, v Value) (float64, error) {
	switch v.Type() {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean:
		if v.AsBoolean() {
			return 1, nil
		}
		return 0, nil
	case TypeNumber:
		return v.AsNumber(), nil
	case TypeString:
		return stringToNumber(v.AsString()), nil
	case TypeSymbol:
		return 0, vm.NewTypeError("Cannot convert a Symbol value to a number")
	}
	prim, err := toPrimitive(vm, v, "number")
	if err != nil {
		return 0, err
	}
	return ToNumber(vm, prim)
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// ParseFloat accepts forms JavaScript does not (inf, nan, underscores).
	if strings.Trim(s, "0123456789.eE+-") != "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString implements ToString.
func ToString(vm *VM, v Value) (string, error) {
	switch v.Type() {
	case TypeUndefined:
		return "undefined", nil
	case TypeNull:
		return "null", nil
	case TypeBoolean:
		if v.AsBoolean() {
			return "true", nil
		}
		return "false", nil
	case TypeNumber:
		return numberToString(v.AsNumber()), nil
	case TypeString:
		return v.AsString(), nil
	case TypeSymbol:
		return "", vm.NewTypeError("Cannot convert a Symbol value to a string")
	}
	prim, err := toPrimitive(vm, v, "string")
	if err != nil {
		return "", err
	}
	return ToString(vm, prim)
}

// ToPropertyKey converts v into a string or symbol key.
func ToPropertyKey(vm *VM, v Value) (PropertyKey, error) {
	if v.IsSymbol() {
		return keyFromSymbol(v), nil
	}
	if v.IsObject() {
		prim, err := toPrimitive(vm, v, "string")
		if err != nil {
			return PropertyKey{}, err
		}
		return ToPropertyKey(vm, prim)
	}
	s, err := ToString(vm, v)
	if err != nil {
		return PropertyKey{}, err
	}
	return keyFromString(s), nil
}

// toPrimitive runs OrdinaryToPrimitive on an object.
func toPrimitive(vm *VM, v Value, hint string) (Value, error) {
	methods := [2]string{"valueOf", "toString"}
	if hint == "string" {
		methods = [2]string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, err := Get(vm, v, keyFromString(name))
		if err != nil {
			return Undefined, err
		}
		if !fn.IsCallable() {
			continue
		}
		res, err := Call(vm, fn, v, nil)
		if err != nil {
			return Undefined, err
		}
		if !res.IsObject() {
			return res, nil
		}
	}
	return Undefined, vm.NewTypeError("Cannot convert object to primitive value")
}
