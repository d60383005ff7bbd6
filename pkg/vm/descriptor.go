package vm

// Flag is a tri-state descriptor attribute: absent, false or true.
type Flag uint8

const (
	FlagUnset Flag = iota
	FlagFalse
	FlagTrue
)

// ToFlag converts a bool into a present Flag.
func ToFlag(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) IsSet() bool { return f != FlagUnset }
func (f Flag) Bool() bool  { return f == FlagTrue }

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unset"
	}
}

// PropertyDescriptor is a (possibly partial) Property Descriptor record.
// Value, Get and Set are meaningful only when the matching Has* flag is set.
type PropertyDescriptor struct {
	Value    Value
	Get      Value
	Set      Value
	HasValue bool
	HasGet   bool
	HasSet   bool

	Writable     Flag
	Enumerable   Flag
	Configurable Flag
}

// DataDescriptor returns a fully populated data descriptor.
func DataDescriptor(value Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value:        value,
		HasValue:     true,
		Writable:     ToFlag(writable),
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

// AccessorDescriptor returns a fully populated accessor descriptor.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Get:          get,
		Set:          set,
		HasGet:       true,
		HasSet:       true,
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

func (d PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d PropertyDescriptor) IsData() bool     { return d.HasValue || d.Writable.IsSet() }
func (d PropertyDescriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// IsEmpty reports whether the descriptor has no fields at all.
func (d PropertyDescriptor) IsEmpty() bool {
	return d.IsGeneric() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

// Complete fills absent fields with their defaults (CompletePropertyDescriptor):
// generic and data descriptors get value=undefined and writable=false, accessor
// descriptors get get=set=undefined, and both get enumerable=configurable=false.
func (d *PropertyDescriptor) Complete() {
	if d.IsGeneric() || d.IsData() {
		if !d.HasValue {
			d.Value = Undefined
			d.HasValue = true
		}
		if !d.Writable.IsSet() {
			d.Writable = FlagFalse
		}
	} else {
		if !d.HasGet {
			d.Get = Undefined
			d.HasGet = true
		}
		if !d.HasSet {
			d.Set = Undefined
			d.HasSet = true
		}
	}
	if !d.Enumerable.IsSet() {
		d.Enumerable = FlagFalse
	}
	if !d.Configurable.IsSet() {
		d.Configurable = FlagFalse
	}
}

// Equal reports whether both descriptors carry the same fields with SameValue contents.
func (d PropertyDescriptor) Equal(o PropertyDescriptor) bool {
	if d.HasValue != o.HasValue || d.HasGet != o.HasGet || d.HasSet != o.HasSet {
		return false
	}
	if d.Writable != o.Writable || d.Enumerable != o.Enumerable || d.Configurable != o.Configurable {
		return false
	}
	if d.HasValue && !SameValue(d.Value, o.Value) {
		return false
	}
	if d.HasGet && !SameValue(d.Get, o.Get) {
		return false
	}
	if d.HasSet && !SameValue(d.Set, o.Set) {
		return false
	}
	return true
}

// IsCompatiblePropertyDescriptor validates desc against current without applying it.
func IsCompatiblePropertyDescriptor(extensible bool, desc PropertyDescriptor, current PropertyDescriptor, hasCurrent bool) bool {
	return validateAndApplyPropertyDescriptor(nil, PropertyKey{}, extensible, desc, current, hasCurrent)
}

// validateAndApplyPropertyDescriptor is the reconciliation step of
// OrdinaryDefineOwnProperty. With o == nil it only validates. current must be
// a complete descriptor when hasCurrent is true.
func validateAndApplyPropertyDescriptor(o *PlainObject, key PropertyKey, extensible bool, desc PropertyDescriptor, current PropertyDescriptor, hasCurrent bool) bool {
	if !hasCurrent {
		if !extensible {
			return false
		}
		if o != nil {
			full := desc
			full.Complete()
			o.putField(key, fieldFromDescriptor(full))
		}
		return true
	}

	if desc.IsEmpty() {
		return true
	}

	if !current.Configurable.Bool() {
		if desc.Configurable == FlagTrue {
			return false
		}
		if desc.Enumerable.IsSet() && desc.Enumerable != current.Enumerable {
			return false
		}
		if !desc.IsGeneric() && desc.IsAccessor() != current.IsAccessor() {
			return false
		}
		if current.IsAccessor() {
			if desc.HasGet && !SameValue(desc.Get, current.Get) {
				return false
			}
			if desc.HasSet && !SameValue(desc.Set, current.Set) {
				return false
			}
		} else if !current.Writable.Bool() {
			if desc.Writable == FlagTrue {
				return false
			}
			if desc.HasValue && !SameValue(desc.Value, current.Value) {
				return false
			}
		}
	}

	if o == nil {
		return true
	}

	var next PropertyDescriptor
	switch {
	case current.IsData() && desc.IsAccessor():
		next = PropertyDescriptor{Get: Undefined, Set: Undefined, HasGet: true, HasSet: true}
		if desc.HasGet {
			next.Get = desc.Get
		}
		if desc.HasSet {
			next.Set = desc.Set
		}
		next.Enumerable = pickFlag(desc.Enumerable, current.Enumerable)
		next.Configurable = pickFlag(desc.Configurable, current.Configurable)
	case current.IsAccessor() && desc.IsData():
		next = PropertyDescriptor{Value: Undefined, HasValue: true, Writable: FlagFalse}
		if desc.HasValue {
			next.Value = desc.Value
		}
		if desc.Writable.IsSet() {
			next.Writable = desc.Writable
		}
		next.Enumerable = pickFlag(desc.Enumerable, current.Enumerable)
		next.Configurable = pickFlag(desc.Configurable, current.Configurable)
	default:
		next = current
		if desc.HasValue {
			next.Value = desc.Value
		}
		if desc.HasGet {
			next.Get = desc.Get
		}
		if desc.HasSet {
			next.Set = desc.Set
		}
		next.Writable = pickFlag(desc.Writable, current.Writable)
		next.Enumerable = pickFlag(desc.Enumerable, current.Enumerable)
		next.Configurable = pickFlag(desc.Configurable, current.Configurable)
	}
	o.putField(key, fieldFromDescriptor(next))
	return true
}

func pickFlag(preferred, fallback Flag) Flag {
	if preferred.IsSet() {
		return preferred
	}
	return fallback
}

// ToPropertyDescriptor converts an attributes object into a descriptor. Each
// field is probed with [[HasProperty]] and read with [[Get]], so proxies and
// accessors on the attributes object observe the conversion.
func ToPropertyDescriptor(vm *VM, obj Value) (PropertyDescriptor, error) {
	var desc PropertyDescriptor
	if !obj.IsObject() {
		return desc, vm.NewTypeError("Property description must be an object: %s", obj.Inspect())
	}

	read := func(name string) (Value, bool, error) {
		key := keyFromString(name)
		has, err := obj.AsObject().HasProperty(key)
		if err != nil || !has {
			return Undefined, false, err
		}
		v, err := obj.AsObject().Get(key, obj)
		return v, err == nil, err
	}

	if v, ok, err := read("enumerable"); err != nil {
		return desc, err
	} else if ok {
		desc.Enumerable = ToFlag(v.IsTruthy())
	}
	if v, ok, err := read("configurable"); err != nil {
		return desc, err
	} else if ok {
		desc.Configurable = ToFlag(v.IsTruthy())
	}
	if v, ok, err := read("value"); err != nil {
		return desc, err
	} else if ok {
		desc.Value, desc.HasValue = v, true
	}
	if v, ok, err := read("writable"); err != nil {
		return desc, err
	} else if ok {
		desc.Writable = ToFlag(v.IsTruthy())
	}
	if v, ok, err := read("get"); err != nil {
		return desc, err
	} else if ok {
		if !v.IsUndefined() && !v.IsCallable() {
			return desc, vm.NewTypeError("Getter must be a function: %s", v.Inspect())
		}
		desc.Get, desc.HasGet = v, true
	}
	if v, ok, err := read("set"); err != nil {
		return desc, err
	} else if ok {
		if !v.IsUndefined() && !v.IsCallable() {
			return desc, vm.NewTypeError("Setter must be a function: %s", v.Inspect())
		}
		desc.Set, desc.HasSet = v, true
	}
	if desc.IsAccessor() && desc.IsData() {
		return desc, vm.NewTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return desc, nil
}

// FromPropertyDescriptor materializes desc as a fresh ordinary object.
func FromPropertyDescriptor(vm *VM, desc PropertyDescriptor) Value {
	obj := NewObject(vm, vm.ObjectPrototype)
	po := obj.AsPlainObject()
	if desc.HasValue {
		po.createDataField("value", desc.Value)
	}
	if desc.Writable.IsSet() {
		po.createDataField("writable", BooleanValue(desc.Writable.Bool()))
	}
	if desc.HasGet {
		po.createDataField("get", desc.Get)
	}
	if desc.HasSet {
		po.createDataField("set", desc.Set)
	}
	if desc.Enumerable.IsSet() {
		po.createDataField("enumerable", BooleanValue(desc.Enumerable.Bool()))
	}
	if desc.Configurable.IsSet() {
		po.createDataField("configurable", BooleanValue(desc.Configurable.Bool()))
	}
	return obj
}
