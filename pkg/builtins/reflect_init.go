package builtins

import (
	"exotic/pkg/vm"
)

// ReflectInitializer installs the Reflect namespace: one function per proxy
// trap, each calling the matching internal method directly.
type ReflectInitializer struct{}

func (r *ReflectInitializer) Name() string  { return "Reflect" }
func (r *ReflectInitializer) Priority() int { return PriorityReflect }

func (r *ReflectInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	reflectObj := vm.NewObject(vmInstance, ctx.ObjectPrototype)
	s := newPropertySink(vmInstance, reflectObj)

	target := func(fn string, args []vm.Value) (vm.Object, error) {
		t := arg(args, 0)
		if !t.IsObject() {
			return nil, vmInstance.NewTypeError("Reflect.%s called on non-object", fn)
		}
		return t.AsObject(), nil
	}
	key := func(args []vm.Value, i int) (vm.PropertyKey, error) {
		return vm.ToPropertyKey(vmInstance, arg(args, i))
	}

	s.method("apply", 3, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		fn := arg(args, 0)
		if !fn.IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Reflect.apply target is not callable: %s", fn.Inspect())
		}
		list, err := vm.CreateListFromArrayLike(vmInstance, arg(args, 2))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Call(vmInstance, fn, arg(args, 1), list)
	})

	s.method("construct", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		ctor := arg(args, 0)
		if !vm.IsConstructor(ctor) {
			return vm.Construct(vmInstance, ctor, nil, vm.Undefined)
		}
		newTarget := ctor
		if len(args) > 2 {
			newTarget = args[2]
			if !vm.IsConstructor(newTarget) {
				return vm.Construct(vmInstance, newTarget, nil, vm.Undefined)
			}
		}
		list, err := vm.CreateListFromArrayLike(vmInstance, arg(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Construct(vmInstance, ctor, list, newTarget)
	})

	s.method("defineProperty", 3, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("defineProperty", args)
		if err != nil {
			return vm.Undefined, err
		}
		k, err := key(args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		desc, err := vm.ToPropertyDescriptor(vmInstance, arg(args, 2))
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := o.DefineOwnProperty(k, desc)
		return vm.BooleanValue(ok), err
	})

	s.method("deleteProperty", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("deleteProperty", args)
		if err != nil {
			return vm.Undefined, err
		}
		k, err := key(args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := o.Delete(k)
		return vm.BooleanValue(ok), err
	})

	s.method("get", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("get", args)
		if err != nil {
			return vm.Undefined, err
		}
		k, err := key(args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		receiver := args[0]
		if len(args) > 2 {
			receiver = args[2]
		}
		return o.Get(k, receiver)
	})

	s.method("getOwnPropertyDescriptor", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		if _, err := target("getOwnPropertyDescriptor", args); err != nil {
			return vm.Undefined, err
		}
		return getOwnPropertyDescriptor(vmInstance, args[0], arg(args, 1))
	})

	s.method("getPrototypeOf", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("getPrototypeOf", args)
		if err != nil {
			return vm.Undefined, err
		}
		return o.GetPrototypeOf()
	})

	s.method("has", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("has", args)
		if err != nil {
			return vm.Undefined, err
		}
		k, err := key(args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := o.HasProperty(k)
		return vm.BooleanValue(ok), err
	})

	s.method("isExtensible", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("isExtensible", args)
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := o.IsExtensible()
		return vm.BooleanValue(ok), err
	})

	s.method("ownKeys", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("ownKeys", args)
		if err != nil {
			return vm.Undefined, err
		}
		keys, err := o.OwnPropertyKeys()
		if err != nil {
			return vm.Undefined, err
		}
		vals := make([]vm.Value, len(keys))
		for i, k := range keys {
			vals[i] = k.ToValue()
		}
		return vm.CreateArrayFromList(vmInstance, vals), nil
	})

	s.method("preventExtensions", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("preventExtensions", args)
		if err != nil {
			return vm.Undefined, err
		}
		ok, err := o.PreventExtensions()
		return vm.BooleanValue(ok), err
	})

	s.method("set", 3, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("set", args)
		if err != nil {
			return vm.Undefined, err
		}
		k, err := key(args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		receiver := args[0]
		if len(args) > 3 {
			receiver = args[3]
		}
		ok, err := o.Set(k, arg(args, 2), receiver)
		return vm.BooleanValue(ok), err
	})

	s.method("setPrototypeOf", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		o, err := target("setPrototypeOf", args)
		if err != nil {
			return vm.Undefined, err
		}
		proto := arg(args, 1)
		if !proto.IsObject() && !proto.IsNull() {
			return vm.Undefined, vmInstance.NewTypeError("Object prototype may only be an Object or null: %s", proto.Inspect())
		}
		ok, err := o.SetPrototypeOf(proto)
		return vm.BooleanValue(ok), err
	})

	if s.err != nil {
		return s.err
	}
	return ctx.DefineGlobal("Reflect", reflectObj)
}
