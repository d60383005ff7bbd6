package vm

import "math"

const maxArrayLength = math.MaxUint32

// ArrayObject is an Array exotic object. Elements and "length" live in the
// ordinary property storage; only [[DefineOwnProperty]] differs.
type ArrayObject struct {
	PlainObject
}

// NewArray creates an empty array with the intrinsic Array.prototype.
func NewArray(vm *VM) Value {
	v, _ := ArrayCreate(vm, 0, vm.ArrayPrototype)
	return v
}

// NewArrayWithLength creates an array with the specified length and no elements.
func NewArrayWithLength(vm *VM, length int) (Value, error) {
	return ArrayCreate(vm, length, vm.ArrayPrototype)
}

// ArrayCreate allocates an array of the given length with proto as its prototype.
func ArrayCreate(vm *VM, length int, proto Value) (Value, error) {
	if length < 0 || length > maxArrayLength {
		return Undefined, vm.NewRangeError("Invalid array length")
	}
	a := &ArrayObject{PlainObject: newPlainObject(vm, proto)}
	a.putField(keyFromString("length"), &Field{value: IntegerValue(length), writable: true})
	return objectValue(TypeArray, a), nil
}

// CreateArrayFromList builds a dense array holding values.
func CreateArrayFromList(vm *VM, values []Value) Value {
	arr := NewArray(vm)
	a := arr.AsArray()
	for i, v := range values {
		a.putField(IndexKey(i), &Field{value: v, writable: true, enumerable: true, configurable: true})
	}
	a.setLength(uint32(len(values)))
	return arr
}

func (a *ArrayObject) lengthField() *Field {
	f, _ := a.field(keyFromString("length"))
	return f
}

func (a *ArrayObject) length() uint32 {
	return uint32(a.lengthField().value.AsNumber())
}

func (a *ArrayObject) setLength(n uint32) {
	a.lengthField().value = NumberValue(float64(n))
}

// Length returns the current value of the length property.
func (a *ArrayObject) Length() int { return int(a.length()) }

// DefineOwnProperty implements the Array exotic [[DefineOwnProperty]].
func (a *ArrayObject) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if key.IsString() && key.name == "length" {
		return a.setLengthFromDescriptor(desc)
	}
	if index, ok := key.arrayIndex(); ok {
		lenField := a.lengthField()
		oldLen := a.length()
		if index >= oldLen && !lenField.writable {
			return false, nil
		}
		if !a.ordinaryDefineOwnProperty(key, desc) {
			return false, nil
		}
		if index >= oldLen {
			a.setLength(index + 1)
		}
		return true, nil
	}
	return a.ordinaryDefineOwnProperty(key, desc), nil
}

// setLengthFromDescriptor implements ArraySetLength.
func (a *ArrayObject) setLengthFromDescriptor(desc PropertyDescriptor) (bool, error) {
	lengthKey := keyFromString("length")
	if !desc.HasValue {
		return a.ordinaryDefineOwnProperty(lengthKey, desc), nil
	}
	newLen, err := ToUint32(a.vm, desc.Value)
	if err != nil {
		return false, err
	}
	numberLen, err := ToNumber(a.vm, desc.Value)
	if err != nil {
		return false, err
	}
	if float64(newLen) != numberLen {
		return false, a.vm.NewRangeError("Invalid array length")
	}
	newLenDesc := desc
	newLenDesc.Value = NumberValue(float64(newLen))

	oldLen := a.length()
	if newLen >= oldLen {
		return a.ordinaryDefineOwnProperty(lengthKey, newLenDesc), nil
	}
	if !a.lengthField().writable {
		return false, nil
	}

	newWritable := true
	if newLenDesc.Writable == FlagFalse {
		// Deletions below still need a writable length.
		newWritable = false
		newLenDesc.Writable = FlagTrue
	}
	if !a.ordinaryDefineOwnProperty(lengthKey, newLenDesc) {
		return false, nil
	}

	for _, index := range a.indicesFrom(newLen) {
		if ok, _ := a.Delete(IndexKey(int(index))); !ok {
			newLenDesc.Value = NumberValue(float64(index + 1))
			if !newWritable {
				newLenDesc.Writable = FlagFalse
			}
			a.ordinaryDefineOwnProperty(lengthKey, newLenDesc)
			return false, nil
		}
	}
	if !newWritable {
		a.ordinaryDefineOwnProperty(lengthKey, PropertyDescriptor{Writable: FlagFalse})
	}
	return true, nil
}

// indicesFrom returns own array indices >= from in descending order.
func (a *ArrayObject) indicesFrom(from uint32) []uint32 {
	var out []uint32
	keys, _ := a.OwnPropertyKeys()
	for _, k := range keys {
		if idx, ok := k.arrayIndex(); ok && idx >= from {
			out = append(out, idx)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsArray implements the IsArray abstract operation, looking through proxies.
func IsArray(v Value) bool {
	for v.IsProxy() {
		v = v.AsProxy().target
	}
	return v.IsArray()
}
