package vm

// IsConstructor reports whether v is an object with a [[Construct]] internal method.
func IsConstructor(v Value) bool {
	return v.IsObject() && v.AsObject().IsConstructor()
}

// Construct implements the Construct abstract operation. newTarget defaults to
// f when undefined. Proxies dispatch to their construct trap; the failure of any
// step is returned unchanged.
func Construct(vm *VM, f Value, args []Value, newTarget Value) (Value, error) {
	if newTarget.IsUndefined() {
		newTarget = f
	}
	if !IsConstructor(f) {
		return Undefined, vm.newNotConstructible("%s is not a constructor", f.Inspect())
	}
	return f.AsObject().Construct(args, newTarget)
}

// EvaluateConstruction is the evaluation of `new ctor(...args)` once the
// constructor reference and the arguments have been resolved.
func EvaluateConstruction(vm *VM, ctor Value, args []Value) (Value, error) {
	return Construct(vm, ctor, args, ctor)
}

// GetPrototypeFromConstructor reads ctor.prototype, falling back to the given
// intrinsic when the property is not an object.
func GetPrototypeFromConstructor(vm *VM, ctor Value, fallback Value) (Value, error) {
	if !ctor.IsObject() {
		return fallback, nil
	}
	proto, err := Get(vm, ctor, keyFromString("prototype"))
	if err != nil {
		return Undefined, err
	}
	if !proto.IsObject() {
		return fallback, nil
	}
	return proto, nil
}
