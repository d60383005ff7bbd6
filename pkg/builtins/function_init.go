package builtins

import (
	"exotic/pkg/vm"
)

// FunctionInitializer implements Function.prototype
type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction // Must be after Object but before others
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	proto := newPropertySink(vmInstance, ctx.FunctionPrototype)

	// Function.prototype.call
	proto.method("call", 1, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		var rest []vm.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return vm.Call(vmInstance, this, arg(args, 0), rest)
	})

	// Function.prototype.apply
	proto.method("apply", 2, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Function.prototype.apply was called on %s, which is not a function", this.Inspect())
		}
		argArray := arg(args, 1)
		if argArray.IsNullish() {
			return vm.Call(vmInstance, this, arg(args, 0), nil)
		}
		list, err := vm.CreateListFromArrayLike(vmInstance, argArray)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Call(vmInstance, this, arg(args, 0), list)
	})

	return proto.err
}
