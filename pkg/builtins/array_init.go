package builtins

import (
	"go.uber.org/zap"

	"exotic/pkg/vm"
)

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	arrayProto := ctx.ArrayPrototype

	var arrayCtor vm.Value
	construct := func(args []vm.Value, newTarget vm.Value) (vm.Value, error) {
		proto, err := vm.GetPrototypeFromConstructor(vmInstance, newTarget, arrayProto)
		if err != nil {
			return vm.Undefined, err
		}
		return arrayFromArguments(vmInstance, args, proto)
	}
	arrayCtor = vm.NewNativeConstructor(vmInstance, "Array", 1,
		func(this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(args, arrayCtor)
		},
		construct)

	ctor := newPropertySink(vmInstance, arrayCtor)
	ctor.fixed("prototype", arrayProto)
	ctor.method("of", 0, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return ArrayOf(vmInstance, this, args)
	})
	ctor.method("isArray", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.BooleanValue(vm.IsArray(arg(args, 0))), nil
	})
	if ctor.err != nil {
		return ctor.err
	}

	proto := newPropertySink(vmInstance, arrayProto)
	proto.value("constructor", arrayCtor)
	proto.method("push", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		return arrayPush(vmInstance, this, args)
	})
	if proto.err != nil {
		return proto.err
	}

	return ctx.DefineGlobal("Array", arrayCtor)
}

// ArrayOf implements Array.of with this as the constructor to use. A may be any
// object the constructor returns, including a proxy; every element is defined
// through A's own [[DefineOwnProperty]], so the first failure ends the build
// with indices before it defined and length untouched.
func ArrayOf(vmInstance *vm.VM, this vm.Value, items []vm.Value) (vm.Value, error) {
	// 1. Let len be the number of arguments.
	n := len(items)

	// 3-5. Construct(C, « len ») when C is a constructor, else ArrayCreate(len).
	var A vm.Value
	var err error
	if vm.IsConstructor(this) {
		A, err = vm.Construct(vmInstance, this, []vm.Value{vm.IntegerValue(n)}, vm.Undefined)
	} else {
		A, err = vm.ArrayCreate(vmInstance, n, vmInstance.ArrayPrototype)
	}
	if err != nil {
		return vm.Undefined, err
	}

	// 7. CreateDataPropertyOrThrow(A, ToString(k), items[k]) for each k.
	for k, kValue := range items {
		if err := vm.CreateDataPropertyOrThrow(vmInstance, A, vm.IndexKey(k), kValue); err != nil {
			vmInstance.Logger().Debug("Array.of aborted", zap.Int("index", k), zap.Int("len", n), zap.Error(err))
			return vm.Undefined, err
		}
	}

	// 8. Set(A, "length", len, true).
	if err := vm.Set(vmInstance, A, vm.NewStringKey("length"), vm.IntegerValue(n), true); err != nil {
		return vm.Undefined, err
	}
	return A, nil
}

// arrayFromArguments implements the Array constructor body: a single number
// argument is a length, anything else becomes the elements.
func arrayFromArguments(vmInstance *vm.VM, args []vm.Value, proto vm.Value) (vm.Value, error) {
	if len(args) == 1 && args[0].IsNumber() {
		f := args[0].AsNumber()
		n, err := vm.ToUint32(vmInstance, args[0])
		if err != nil {
			return vm.Undefined, err
		}
		if float64(n) != f {
			return vm.Undefined, vmInstance.NewRangeError("Invalid array length")
		}
		return vm.ArrayCreate(vmInstance, int(n), proto)
	}
	A, err := vm.ArrayCreate(vmInstance, 0, proto)
	if err != nil {
		return vm.Undefined, err
	}
	for k, v := range args {
		if err := vm.CreateDataPropertyOrThrow(vmInstance, A, vm.IndexKey(k), v); err != nil {
			return vm.Undefined, err
		}
	}
	return A, nil
}

func arrayPush(vmInstance *vm.VM, this vm.Value, items []vm.Value) (vm.Value, error) {
	if !this.IsObject() {
		return vm.Undefined, vmInstance.NewTypeError("Array.prototype.push called on %s", this.Inspect())
	}
	n, err := vm.LengthOfArrayLike(vmInstance, this)
	if err != nil {
		return vm.Undefined, err
	}
	for _, item := range items {
		if err := vm.Set(vmInstance, this, vm.IndexKey(n), item, true); err != nil {
			return vm.Undefined, err
		}
		n++
	}
	if err := vm.Set(vmInstance, this, vm.NewStringKey("length"), vm.IntegerValue(n), true); err != nil {
		return vm.Undefined, err
	}
	return vm.IntegerValue(n), nil
}
