package builtins

import (
	"exotic/pkg/vm"
)

type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	objectProto := ctx.ObjectPrototype

	proto := newPropertySink(vmInstance, objectProto)
	proto.method("hasOwnProperty", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Object.prototype.hasOwnProperty called on %s", this.Inspect())
		}
		key, err := vm.ToPropertyKey(vmInstance, arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		_, has, err := this.AsObject().GetOwnProperty(key)
		return vm.BooleanValue(has), err
	})
	proto.method("toString", 0, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.NewString(objectTag(this)), nil
	})
	proto.method("valueOf", 0, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return this, nil
	})

	objectCtor := vm.NewNativeConstructor(vmInstance, "Object", 1,
		func(this vm.Value, args []vm.Value) (vm.Value, error) {
			return objectFromValue(vmInstance, arg(args, 0)), nil
		},
		func(args []vm.Value, newTarget vm.Value) (vm.Value, error) {
			if v := arg(args, 0); v.IsObject() {
				return v, nil
			}
			p, err := vm.GetPrototypeFromConstructor(vmInstance, newTarget, objectProto)
			if err != nil {
				return vm.Undefined, err
			}
			return vm.NewObject(vmInstance, p), nil
		})

	ctor := newPropertySink(vmInstance, objectCtor)
	ctor.fixed("prototype", objectProto)
	ctor.method("create", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		p := arg(args, 0)
		if !p.IsObject() && !p.IsNull() {
			return vm.Undefined, vmInstance.NewTypeError("Object prototype may only be an Object or null: %s", p.Inspect())
		}
		return vm.NewObject(vmInstance, p), nil
	})
	ctor.method("defineProperty", 3, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Object.defineProperty called on non-object")
		}
		key, err := vm.ToPropertyKey(vmInstance, arg(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		desc, err := vm.ToPropertyDescriptor(vmInstance, arg(args, 2))
		if err != nil {
			return vm.Undefined, err
		}
		if err := vm.DefinePropertyOrThrow(vmInstance, target, key, desc); err != nil {
			return vm.Undefined, err
		}
		return target, nil
	})
	ctor.method("getOwnPropertyDescriptor", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Object.getOwnPropertyDescriptor called on non-object")
		}
		return getOwnPropertyDescriptor(vmInstance, target, arg(args, 1))
	})
	ctor.method("getPrototypeOf", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Object.getPrototypeOf called on non-object")
		}
		return target.AsObject().GetPrototypeOf()
	})
	ctor.method("setPrototypeOf", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target, p := arg(args, 0), arg(args, 1)
		if !p.IsObject() && !p.IsNull() {
			return vm.Undefined, vmInstance.NewTypeError("Object prototype may only be an Object or null: %s", p.Inspect())
		}
		if !target.IsObject() {
			return target, nil
		}
		ok, err := target.AsObject().SetPrototypeOf(p)
		if err != nil {
			return vm.Undefined, err
		}
		if !ok {
			return vm.Undefined, vmInstance.NewTypeError("Object.setPrototypeOf failed for %s", target.Inspect())
		}
		return target, nil
	})
	ctor.method("preventExtensions", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return target, nil
		}
		ok, err := target.AsObject().PreventExtensions()
		if err != nil {
			return vm.Undefined, err
		}
		if !ok {
			return vm.Undefined, vmInstance.NewTypeError("Cannot prevent extensions of %s", target.Inspect())
		}
		return target, nil
	})
	ctor.method("isExtensible", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return vm.False, nil
		}
		ok, err := target.AsObject().IsExtensible()
		return vm.BooleanValue(ok), err
	})
	ctor.method("keys", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		target := arg(args, 0)
		if !target.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Cannot convert %s to object", target.Inspect())
		}
		names, err := EnumerableOwnKeys(target)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.CreateArrayFromList(vmInstance, names), nil
	})
	if ctor.err != nil {
		return ctor.err
	}
	proto.value("constructor", objectCtor)
	if proto.err != nil {
		return proto.err
	}
	return ctx.DefineGlobal("Object", objectCtor)
}

// EnumerableOwnKeys returns the enumerable own string keys of o, in
// [[OwnPropertyKeys]] order, as string values.
func EnumerableOwnKeys(o vm.Value) ([]vm.Value, error) {
	keys, err := o.AsObject().OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	var names []vm.Value
	for _, k := range keys {
		if !k.IsString() {
			continue
		}
		desc, has, err := o.AsObject().GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if has && desc.Enumerable.Bool() {
			names = append(names, k.ToValue())
		}
	}
	return names, nil
}

func getOwnPropertyDescriptor(machine *vm.VM, target, keyValue vm.Value) (vm.Value, error) {
	key, err := vm.ToPropertyKey(machine, keyValue)
	if err != nil {
		return vm.Undefined, err
	}
	desc, has, err := target.AsObject().GetOwnProperty(key)
	if err != nil || !has {
		return vm.Undefined, err
	}
	return vm.FromPropertyDescriptor(machine, desc), nil
}

func objectFromValue(machine *vm.VM, v vm.Value) vm.Value {
	if v.IsObject() {
		return v
	}
	return vm.NewObject(machine, machine.ObjectPrototype)
}

func objectTag(v vm.Value) string {
	switch {
	case v.IsUndefined():
		return "[object Undefined]"
	case v.IsNull():
		return "[object Null]"
	case vm.IsArray(v):
		return "[object Array]"
	case v.IsCallable():
		return "[object Function]"
	}
	return "[object Object]"
}
