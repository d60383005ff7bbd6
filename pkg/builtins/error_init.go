package builtins

import (
	"exotic/pkg/vm"
)

// ErrorInitializer implements the Error, TypeError and RangeError constructors
// over the VM's intrinsic prototypes.
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	// Error.prototype.toString()
	errorProto := newPropertySink(vmInstance, vmInstance.ErrorPrototype)
	errorProto.method("toString", 0, func(this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsObject() {
			return vm.Undefined, vmInstance.NewTypeError("Error.prototype.toString called on non-object")
		}
		name, err := stringProperty(vmInstance, this, "name", "Error")
		if err != nil {
			return vm.Undefined, err
		}
		msg, err := stringProperty(vmInstance, this, "message", "")
		if err != nil {
			return vm.Undefined, err
		}
		switch {
		case name == "":
			return vm.NewString(msg), nil
		case msg == "":
			return vm.NewString(name), nil
		}
		return vm.NewString(name + ": " + msg), nil
	})
	if errorProto.err != nil {
		return errorProto.err
	}

	for _, def := range []struct {
		name  string
		proto vm.Value
	}{
		{"Error", vmInstance.ErrorPrototype},
		{"TypeError", vmInstance.TypeErrorPrototype},
		{"RangeError", vmInstance.RangeErrorPrototype},
	} {
		ctor := newErrorConstructor(vmInstance, def.name, def.proto)
		ctorSink := newPropertySink(vmInstance, ctor)
		ctorSink.fixed("prototype", def.proto)
		protoSink := newPropertySink(vmInstance, def.proto)
		protoSink.value("constructor", ctor)
		if ctorSink.err != nil {
			return ctorSink.err
		}
		if protoSink.err != nil {
			return protoSink.err
		}
		if err := ctx.DefineGlobal(def.name, ctor); err != nil {
			return err
		}
	}
	return nil
}

// newErrorConstructor builds a constructor that allocates from
// newTarget.prototype and sets an own message when one is given. Calling it
// without new behaves like new.
func newErrorConstructor(machine *vm.VM, name string, intrinsic vm.Value) vm.Value {
	var ctorValue vm.Value
	construct := func(args []vm.Value, newTarget vm.Value) (vm.Value, error) {
		proto, err := vm.GetPrototypeFromConstructor(machine, newTarget, intrinsic)
		if err != nil {
			return vm.Undefined, err
		}
		obj := vm.NewObject(machine, proto)
		if msg := arg(args, 0); !msg.IsUndefined() {
			s, err := vm.ToString(machine, msg)
			if err != nil {
				return vm.Undefined, err
			}
			obj.AsPlainObject().SetOwnNonEnumerable("message", vm.NewString(s))
		}
		return obj, nil
	}
	ctorValue = vm.NewNativeConstructor(machine, name, 1,
		func(this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(args, ctorValue)
		},
		construct)
	return ctorValue
}

func stringProperty(machine *vm.VM, o vm.Value, name, fallback string) (string, error) {
	v, err := vm.Get(machine, o, vm.NewStringKey(name))
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return fallback, nil
	}
	return vm.ToString(machine, v)
}
