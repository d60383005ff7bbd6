package vm

import (
	"sort"
)

// Object is the set of internal methods every object supports. Each method
// reports failures through its error result; a nil error with a false boolean
// is a soft rejection (e.g. [[DefineOwnProperty]] refusing a change).
type Object interface {
	GetPrototypeOf() (Value, error)
	SetPrototypeOf(proto Value) (bool, error)
	IsExtensible() (bool, error)
	PreventExtensions() (bool, error)
	GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool, error)
	DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) (bool, error)
	HasProperty(key PropertyKey) (bool, error)
	Get(key PropertyKey, receiver Value) (Value, error)
	Set(key PropertyKey, value Value, receiver Value) (bool, error)
	Delete(key PropertyKey) (bool, error)
	OwnPropertyKeys() ([]PropertyKey, error)

	// IsCallable and IsConstructor report whether [[Call]] / [[Construct]] exist.
	IsCallable() bool
	IsConstructor() bool
	Call(this Value, args []Value) (Value, error)
	Construct(args []Value, newTarget Value) (Value, error)
}

// Field is the stored form of one own property.
type Field struct {
	key          PropertyKey
	value        Value
	getter       Value
	setter       Value
	writable     bool
	enumerable   bool
	configurable bool
	isAccessor   bool
}

func fieldFromDescriptor(d PropertyDescriptor) *Field {
	f := &Field{
		enumerable:   d.Enumerable.Bool(),
		configurable: d.Configurable.Bool(),
	}
	if d.IsAccessor() {
		f.isAccessor = true
		f.getter, f.setter = d.Get, d.Set
	} else {
		f.value = d.Value
		f.writable = d.Writable.Bool()
	}
	return f
}

func (f *Field) descriptor() PropertyDescriptor {
	if f.isAccessor {
		return AccessorDescriptor(f.getter, f.setter, f.enumerable, f.configurable)
	}
	return DataDescriptor(f.value, f.writable, f.enumerable, f.configurable)
}

// PlainObject is an ordinary object: own properties in insertion order plus a
// prototype link and an extensible flag.
type PlainObject struct {
	vm         *VM
	prototype  Value
	fields     map[string]*Field // keyed by PropertyKey.hash()
	keys       []PropertyKey     // insertion order
	extensible bool
}

func newPlainObject(vm *VM, proto Value) PlainObject {
	return PlainObject{
		vm:         vm,
		prototype:  proto,
		fields:     make(map[string]*Field),
		extensible: true,
	}
}

// NewObject allocates an ordinary object with the given prototype (an object or Null).
func NewObject(vm *VM, proto Value) Value {
	po := newPlainObject(vm, proto)
	return objectValue(TypeObject, &po)
}

func (o *PlainObject) field(key PropertyKey) (*Field, bool) {
	f, ok := o.fields[key.hash()]
	return f, ok
}

// putField stores f under key, appending the key to the ordering on first definition.
func (o *PlainObject) putField(key PropertyKey, f *Field) {
	h := key.hash()
	f.key = key
	if _, exists := o.fields[h]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[h] = f
}

func (o *PlainObject) removeField(key PropertyKey) {
	h := key.hash()
	if _, ok := o.fields[h]; !ok {
		return
	}
	delete(o.fields, h)
	for i, k := range o.keys {
		if k.hash() == h {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// createDataField defines a fresh writable, enumerable, configurable data property
// without running any checks. Only used on objects the engine just allocated.
func (o *PlainObject) createDataField(name string, v Value) {
	o.putField(keyFromString(name), &Field{value: v, writable: true, enumerable: true, configurable: true})
}

// SetOwnNonEnumerable defines a builtin-style property (writable, non-enumerable, configurable).
func (o *PlainObject) SetOwnNonEnumerable(name string, v Value) {
	o.putField(keyFromString(name), &Field{value: v, writable: true, configurable: true})
}

// DefineReadOnly defines a non-writable, non-enumerable, configurable data property.
func (o *PlainObject) DefineReadOnly(name string, v Value) {
	o.putField(keyFromString(name), &Field{value: v, configurable: true})
}

// lookupDataString walks the prototype chain through plain storage only and
// returns a string-valued data property. It never runs user code.
func (o *PlainObject) lookupDataString(name string) (string, bool) {
	key := keyFromString(name)
	for cur := o; cur != nil; {
		if f, ok := cur.field(key); ok {
			if f.isAccessor || !f.value.IsString() {
				return "", false
			}
			return f.value.AsString(), true
		}
		next, ok := cur.prototype.ref.(interface{ plain() *PlainObject })
		if !ok {
			return "", false
		}
		cur = next.plain()
	}
	return "", false
}

func (o *PlainObject) plain() *PlainObject { return o }

// HasOwn reports whether an own property with the given name exists.
func (o *PlainObject) HasOwn(name string) bool {
	_, ok := o.field(keyFromString(name))
	return ok
}

// GetOwn looks up a direct (own) data property by name.
func (o *PlainObject) GetOwn(name string) (Value, bool) {
	f, ok := o.field(keyFromString(name))
	if !ok || f.isAccessor {
		return Undefined, false
	}
	return f.value, true
}

// --- Internal methods (ordinary behavior) ---

func (o *PlainObject) GetPrototypeOf() (Value, error) {
	return o.prototype, nil
}

// SetPrototypeOf implements OrdinarySetPrototypeOf including the cycle check,
// which stops at the first proxy in the chain.
func (o *PlainObject) SetPrototypeOf(proto Value) (bool, error) {
	if SameValue(proto, o.prototype) {
		return true, nil
	}
	if !o.extensible {
		return false, nil
	}
	for p := proto; p.IsObject(); {
		if po, ok := p.ref.(interface{ plain() *PlainObject }); ok && po.plain() == o {
			return false, nil
		}
		if p.IsProxy() {
			break
		}
		p = p.ref.(interface{ plain() *PlainObject }).plain().prototype
	}
	o.prototype = proto
	return true, nil
}

func (o *PlainObject) IsExtensible() (bool, error) {
	return o.extensible, nil
}

func (o *PlainObject) PreventExtensions() (bool, error) {
	o.extensible = false
	return true, nil
}

func (o *PlainObject) GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool, error) {
	f, ok := o.field(key)
	if !ok {
		return PropertyDescriptor{}, false, nil
	}
	return f.descriptor(), true, nil
}

// DefineOwnProperty implements OrdinaryDefineOwnProperty.
func (o *PlainObject) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) (bool, error) {
	return o.ordinaryDefineOwnProperty(key, desc), nil
}

func (o *PlainObject) ordinaryDefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	var current PropertyDescriptor
	f, hasCurrent := o.field(key)
	if hasCurrent {
		current = f.descriptor()
	}
	return validateAndApplyPropertyDescriptor(o, key, o.extensible, desc, current, hasCurrent)
}

func (o *PlainObject) HasProperty(key PropertyKey) (bool, error) {
	if _, ok := o.field(key); ok {
		return true, nil
	}
	if o.prototype.IsNull() {
		return false, nil
	}
	return o.prototype.AsObject().HasProperty(key)
}

// Get implements OrdinaryGet: own data value, own getter called with receiver,
// or delegation to the prototype.
func (o *PlainObject) Get(key PropertyKey, receiver Value) (Value, error) {
	f, ok := o.field(key)
	if !ok {
		if o.prototype.IsNull() {
			return Undefined, nil
		}
		return o.prototype.AsObject().Get(key, receiver)
	}
	if !f.isAccessor {
		return f.value, nil
	}
	if f.getter.IsUndefined() {
		return Undefined, nil
	}
	return Call(o.vm, f.getter, receiver, nil)
}

// Set implements OrdinarySet. Data writes land on the receiver through its own
// [[DefineOwnProperty]], so a proxy receiver observes its defineProperty trap.
func (o *PlainObject) Set(key PropertyKey, value Value, receiver Value) (bool, error) {
	f, ok := o.field(key)
	var ownDesc PropertyDescriptor
	if ok {
		ownDesc = f.descriptor()
	} else {
		if !o.prototype.IsNull() {
			return o.prototype.AsObject().Set(key, value, receiver)
		}
		ownDesc = DataDescriptor(Undefined, true, true, true)
	}
	return ordinarySetWithOwnDescriptor(o.vm, key, value, receiver, ownDesc)
}

func ordinarySetWithOwnDescriptor(vm *VM, key PropertyKey, value Value, receiver Value, ownDesc PropertyDescriptor) (bool, error) {
	if ownDesc.IsData() {
		if !ownDesc.Writable.Bool() {
			return false, nil
		}
		if !receiver.IsObject() {
			return false, nil
		}
		recv := receiver.AsObject()
		existing, exists, err := recv.GetOwnProperty(key)
		if err != nil {
			return false, err
		}
		if exists {
			if existing.IsAccessor() {
				return false, nil
			}
			if !existing.Writable.Bool() {
				return false, nil
			}
			return recv.DefineOwnProperty(key, PropertyDescriptor{Value: value, HasValue: true})
		}
		return CreateDataProperty(receiver, key, value)
	}
	if ownDesc.Set.IsUndefined() {
		return false, nil
	}
	if _, err := Call(vm, ownDesc.Set, receiver, []Value{value}); err != nil {
		return false, err
	}
	return true, nil
}

func (o *PlainObject) Delete(key PropertyKey) (bool, error) {
	f, ok := o.field(key)
	if !ok {
		return true, nil
	}
	if !f.configurable {
		return false, nil
	}
	o.removeField(key)
	return true, nil
}

// OwnPropertyKeys returns integer indices in ascending order, then string keys
// in insertion order, then symbol keys in insertion order.
func (o *PlainObject) OwnPropertyKeys() ([]PropertyKey, error) {
	var indices []int
	var indexKeys = make(map[int]PropertyKey)
	var strs, syms []PropertyKey
	for _, k := range o.keys {
		switch {
		case k.IsSymbol():
			syms = append(syms, k)
		default:
			if idx, ok := tryParseArrayIndex(k.name); ok {
				indices = append(indices, idx)
				indexKeys[idx] = k
			} else {
				strs = append(strs, k)
			}
		}
	}
	sort.Ints(indices)
	keys := make([]PropertyKey, 0, len(o.keys))
	for _, idx := range indices {
		keys = append(keys, indexKeys[idx])
	}
	keys = append(keys, strs...)
	return append(keys, syms...), nil
}

func (o *PlainObject) IsCallable() bool    { return false }
func (o *PlainObject) IsConstructor() bool { return false }

func (o *PlainObject) Call(this Value, args []Value) (Value, error) {
	return Undefined, o.vm.NewTypeError("object is not a function")
}

func (o *PlainObject) Construct(args []Value, newTarget Value) (Value, error) {
	return Undefined, o.vm.newNotConstructible("object is not a constructor")
}
