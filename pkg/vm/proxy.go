package vm

// ProxyObject is a Proxy exotic object. Every internal method consults the
// handler for a trap, falls back to the target when none is installed, and
// validates trap results against the target's fixed commitments. Each internal
// method counts against the VM call depth, so prototype chains that loop back
// through a proxy end in a RangeError.
type ProxyObject struct {
	vm      *VM
	target  Value
	handler Value

	// Fixed at creation from the target.
	callable    bool
	constructor bool
}

// MakeProxy implements ProxyCreate.
func MakeProxy(vm *VM, target, handler Value) (Value, error) {
	if !target.IsObject() || !handler.IsObject() {
		return Undefined, vm.NewTypeError("Cannot create proxy with a non-object as target or handler")
	}
	p := &ProxyObject{
		vm:          vm,
		target:      target,
		handler:     handler,
		callable:    target.IsCallable(),
		constructor: IsConstructor(target),
	}
	return objectValue(TypeProxy, p), nil
}

// Target returns the proxied object.
func (p *ProxyObject) Target() Value { return p.target }

// Handler returns the handler object.
func (p *ProxyObject) Handler() Value { return p.handler }

func (p *ProxyObject) targetObject() Object { return p.target.AsObject() }

// lookup resolves trap on the handler. ok is false when the handler leaves the
// trap undefined, in which case the dispatch is recorded as forwarded.
func (p *ProxyObject) lookup(trap Trap) (fn Value, ok bool, err error) {
	fn, ok, err = LookupTrap(p.vm, p.handler, trap)
	switch {
	case err != nil:
		p.vm.observeTrap(trap, OutcomeFailed)
	case !ok:
		p.vm.observeTrap(trap, OutcomeForwarded)
	}
	return fn, ok, err
}

// invoke calls the trap with the handler as this. A failure is returned as is.
func (p *ProxyObject) invoke(trap Trap, fn Value, args ...Value) (Value, error) {
	res, err := Call(p.vm, fn, p.handler, args)
	if err != nil {
		p.vm.observeTrap(trap, OutcomeFailed)
		return Undefined, err
	}
	p.vm.observeTrap(trap, OutcomeInvoked)
	return res, nil
}

func (p *ProxyObject) violation(trap Trap, format string, args ...any) error {
	p.vm.observeTrap(trap, OutcomeViolation)
	return p.vm.newInvariantViolation(trap, format, args...)
}

func (p *ProxyObject) GetPrototypeOf() (Value, error) {
	if err := p.vm.enter(); err != nil {
		return Undefined, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapGetPrototypeOf)
	if err != nil {
		return Undefined, err
	}
	if !ok {
		return p.targetObject().GetPrototypeOf()
	}
	proto, err := p.invoke(TrapGetPrototypeOf, fn, p.target)
	if err != nil {
		return Undefined, err
	}
	if !proto.IsObject() && !proto.IsNull() {
		return Undefined, p.violation(TrapGetPrototypeOf, "trap returned neither object nor null")
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil || extensible {
		return proto, err
	}
	targetProto, err := p.targetObject().GetPrototypeOf()
	if err != nil {
		return Undefined, err
	}
	if !SameValue(proto, targetProto) {
		return Undefined, p.violation(TrapGetPrototypeOf, "proxy target is non-extensible but the trap did not return its actual prototype")
	}
	return proto, nil
}

func (p *ProxyObject) SetPrototypeOf(proto Value) (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapSetPrototypeOf)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().SetPrototypeOf(proto)
	}
	res, err := p.invoke(TrapSetPrototypeOf, fn, p.target, proto)
	if err != nil || !res.IsTruthy() {
		return false, err
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil || extensible {
		return err == nil, err
	}
	targetProto, err := p.targetObject().GetPrototypeOf()
	if err != nil {
		return false, err
	}
	if !SameValue(proto, targetProto) {
		return false, p.violation(TrapSetPrototypeOf, "trap returned truish for setting a new prototype on the non-extensible proxy target")
	}
	return true, nil
}

func (p *ProxyObject) IsExtensible() (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapIsExtensible)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().IsExtensible()
	}
	res, err := p.invoke(TrapIsExtensible, fn, p.target)
	if err != nil {
		return false, err
	}
	targetResult, err := p.targetObject().IsExtensible()
	if err != nil {
		return false, err
	}
	if res.IsTruthy() != targetResult {
		return false, p.violation(TrapIsExtensible, "trap result does not reflect extensibility of proxy target (which is '%t')", targetResult)
	}
	return targetResult, nil
}

func (p *ProxyObject) PreventExtensions() (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapPreventExtensions)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().PreventExtensions()
	}
	res, err := p.invoke(TrapPreventExtensions, fn, p.target)
	if err != nil || !res.IsTruthy() {
		return false, err
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return false, err
	}
	if extensible {
		return false, p.violation(TrapPreventExtensions, "trap returned truish but the proxy target is extensible")
	}
	return true, nil
}

func (p *ProxyObject) GetOwnProperty(key PropertyKey) (PropertyDescriptor, bool, error) {
	if err := p.vm.enter(); err != nil {
		return PropertyDescriptor{}, false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapGetOwnPropertyDescriptor)
	if err != nil {
		return PropertyDescriptor{}, false, err
	}
	if !ok {
		return p.targetObject().GetOwnProperty(key)
	}
	res, err := p.invoke(TrapGetOwnPropertyDescriptor, fn, p.target, key.ToValue())
	if err != nil {
		return PropertyDescriptor{}, false, err
	}
	if !res.IsObject() && !res.IsUndefined() {
		return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
			"trap returned neither object nor undefined for property '%s'", key)
	}
	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil {
		return PropertyDescriptor{}, false, err
	}

	if res.IsUndefined() {
		if !hasTarget {
			return PropertyDescriptor{}, false, nil
		}
		if !targetDesc.Configurable.Bool() {
			return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
				"trap returned undefined for property '%s' which is non-configurable in the proxy target", key)
		}
		extensible, err := p.targetObject().IsExtensible()
		if err != nil {
			return PropertyDescriptor{}, false, err
		}
		if !extensible {
			return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
				"trap returned undefined for property '%s' which exists in the non-extensible proxy target", key)
		}
		return PropertyDescriptor{}, false, nil
	}

	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return PropertyDescriptor{}, false, err
	}
	resultDesc, err := ToPropertyDescriptor(p.vm, res)
	if err != nil {
		return PropertyDescriptor{}, false, err
	}
	resultDesc.Complete()
	if !IsCompatiblePropertyDescriptor(extensible, resultDesc, targetDesc, hasTarget) {
		return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
			"trap returned descriptor for property '%s' that is incompatible with the existing property in the proxy target", key)
	}
	if !resultDesc.Configurable.Bool() {
		if !hasTarget || targetDesc.Configurable.Bool() {
			return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
				"trap reported non-configurability for property '%s' which is either non-existent or configurable in the proxy target", key)
		}
		if resultDesc.Writable == FlagFalse && targetDesc.Writable == FlagTrue {
			return PropertyDescriptor{}, false, p.violation(TrapGetOwnPropertyDescriptor,
				"trap reported non-configurable and non-writable for property '%s' which is writable in the proxy target", key)
		}
	}
	return resultDesc, true, nil
}

// DefineOwnProperty dispatches to the defineProperty trap. A falsy trap result
// is a soft rejection. A truthy result is accepted only when it is consistent
// with the target's extensibility and its existing descriptor for key.
func (p *ProxyObject) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapDefineProperty)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().DefineOwnProperty(key, desc)
	}
	descObj := FromPropertyDescriptor(p.vm, desc)
	res, err := p.invoke(TrapDefineProperty, fn, p.target, key.ToValue(), descObj)
	if err != nil || !res.IsTruthy() {
		return false, err
	}

	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return false, err
	}
	settingConfigFalse := desc.Configurable == FlagFalse

	if !hasTarget {
		if !extensible {
			return false, p.violation(TrapDefineProperty,
				"trap returned truish for adding property '%s' to the non-extensible proxy target", key)
		}
		if settingConfigFalse {
			return false, p.violation(TrapDefineProperty,
				"trap returned truish for defining non-configurable property '%s' which is either non-existent or configurable in the proxy target", key)
		}
		return true, nil
	}
	if !IsCompatiblePropertyDescriptor(extensible, desc, targetDesc, true) {
		return false, p.violation(TrapDefineProperty,
			"trap returned truish for adding property '%s' that is incompatible with the existing property in the proxy target", key)
	}
	if settingConfigFalse && targetDesc.Configurable.Bool() {
		return false, p.violation(TrapDefineProperty,
			"trap returned truish for defining non-configurable property '%s' which is either non-existent or configurable in the proxy target", key)
	}
	if targetDesc.IsData() && !targetDesc.Configurable.Bool() && targetDesc.Writable.Bool() && desc.Writable == FlagFalse {
		return false, p.violation(TrapDefineProperty,
			"trap returned truish for defining non-configurable property '%s' which cannot be non-writable, unless there exists a corresponding non-configurable, non-writable own property of the target object", key)
	}
	return true, nil
}

func (p *ProxyObject) HasProperty(key PropertyKey) (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapHas)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().HasProperty(key)
	}
	res, err := p.invoke(TrapHas, fn, p.target, key.ToValue())
	if err != nil {
		return false, err
	}
	if res.IsTruthy() {
		return true, nil
	}
	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil || !hasTarget {
		return false, err
	}
	if !targetDesc.Configurable.Bool() {
		return false, p.violation(TrapHas, "trap returned falsish for property '%s' which exists in the proxy target as non-configurable", key)
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return false, err
	}
	if !extensible {
		return false, p.violation(TrapHas, "trap returned falsish for property '%s' but the proxy target is not extensible", key)
	}
	return false, nil
}

func (p *ProxyObject) Get(key PropertyKey, receiver Value) (Value, error) {
	if err := p.vm.enter(); err != nil {
		return Undefined, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapGet)
	if err != nil {
		return Undefined, err
	}
	if !ok {
		return p.targetObject().Get(key, receiver)
	}
	res, err := p.invoke(TrapGet, fn, p.target, key.ToValue(), receiver)
	if err != nil {
		return Undefined, err
	}
	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil {
		return Undefined, err
	}
	if hasTarget && !targetDesc.Configurable.Bool() {
		if targetDesc.IsData() && !targetDesc.Writable.Bool() && !SameValue(res, targetDesc.Value) {
			return Undefined, p.violation(TrapGet,
				"property '%s' is a read-only and non-configurable data property on the proxy target but the proxy did not return its actual value (expected '%s' but got '%s')",
				key, targetDesc.Value.Inspect(), res.Inspect())
		}
		if targetDesc.IsAccessor() && targetDesc.Get.IsUndefined() && !res.IsUndefined() {
			return Undefined, p.violation(TrapGet,
				"property '%s' is a non-configurable accessor property on the proxy target and does not have a getter function, but the trap did not return 'undefined' (got '%s')",
				key, res.Inspect())
		}
	}
	return res, nil
}

func (p *ProxyObject) Set(key PropertyKey, value Value, receiver Value) (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapSet)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().Set(key, value, receiver)
	}
	res, err := p.invoke(TrapSet, fn, p.target, key.ToValue(), value, receiver)
	if err != nil || !res.IsTruthy() {
		return false, err
	}
	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil {
		return false, err
	}
	if hasTarget && !targetDesc.Configurable.Bool() {
		if targetDesc.IsData() && !targetDesc.Writable.Bool() && !SameValue(value, targetDesc.Value) {
			return false, p.violation(TrapSet,
				"trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable data property with a different value", key)
		}
		if targetDesc.IsAccessor() && targetDesc.Set.IsUndefined() {
			return false, p.violation(TrapSet,
				"trap returned truish for property '%s' which exists in the proxy target as a non-configurable accessor property without a setter", key)
		}
	}
	return true, nil
}

func (p *ProxyObject) Delete(key PropertyKey) (bool, error) {
	if err := p.vm.enter(); err != nil {
		return false, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapDeleteProperty)
	if err != nil {
		return false, err
	}
	if !ok {
		return p.targetObject().Delete(key)
	}
	res, err := p.invoke(TrapDeleteProperty, fn, p.target, key.ToValue())
	if err != nil || !res.IsTruthy() {
		return false, err
	}
	targetDesc, hasTarget, err := p.targetObject().GetOwnProperty(key)
	if err != nil || !hasTarget {
		return err == nil, err
	}
	if !targetDesc.Configurable.Bool() {
		return false, p.violation(TrapDeleteProperty, "trap returned truish for property '%s' which is non-configurable in the proxy target", key)
	}
	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return false, err
	}
	if !extensible {
		return false, p.violation(TrapDeleteProperty, "trap returned truish for property '%s' but the proxy target is non-extensible", key)
	}
	return true, nil
}

func (p *ProxyObject) OwnPropertyKeys() ([]PropertyKey, error) {
	if err := p.vm.enter(); err != nil {
		return nil, err
	}
	defer p.vm.leave()
	fn, ok, err := p.lookup(TrapOwnKeys)
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.targetObject().OwnPropertyKeys()
	}
	res, err := p.invoke(TrapOwnKeys, fn, p.target)
	if err != nil {
		return nil, err
	}
	if !res.IsObject() {
		return nil, p.violation(TrapOwnKeys, "trap returned a non-object (%s)", res.Inspect())
	}
	list, err := CreateListFromArrayLike(p.vm, res)
	if err != nil {
		return nil, err
	}

	trapKeys := make([]PropertyKey, 0, len(list))
	unchecked := make(map[string]bool, len(list))
	for _, v := range list {
		if !v.IsString() && !v.IsSymbol() {
			return nil, p.violation(TrapOwnKeys, "%s is not a valid property name", v.Inspect())
		}
		key := keyFromValue(v)
		if unchecked[key.hash()] {
			return nil, p.violation(TrapOwnKeys, "trap returned duplicate entries ('%s')", key)
		}
		unchecked[key.hash()] = true
		trapKeys = append(trapKeys, key)
	}

	extensible, err := p.targetObject().IsExtensible()
	if err != nil {
		return nil, err
	}
	targetKeys, err := p.targetObject().OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	var configurable, nonconfigurable []PropertyKey
	for _, k := range targetKeys {
		desc, has, err := p.targetObject().GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if has && !desc.Configurable.Bool() {
			nonconfigurable = append(nonconfigurable, k)
		} else {
			configurable = append(configurable, k)
		}
	}
	if extensible && len(nonconfigurable) == 0 {
		return trapKeys, nil
	}

	for _, k := range nonconfigurable {
		if !unchecked[k.hash()] {
			return nil, p.violation(TrapOwnKeys, "trap result did not include non-configurable key '%s'", k)
		}
		delete(unchecked, k.hash())
	}
	if extensible {
		return trapKeys, nil
	}
	for _, k := range configurable {
		if !unchecked[k.hash()] {
			return nil, p.violation(TrapOwnKeys, "trap result did not include '%s' of the non-extensible proxy target", k)
		}
		delete(unchecked, k.hash())
	}
	if len(unchecked) > 0 {
		return nil, p.violation(TrapOwnKeys, "trap returned extra keys but proxy target is non-extensible")
	}
	return trapKeys, nil
}

func (p *ProxyObject) IsCallable() bool    { return p.callable }
func (p *ProxyObject) IsConstructor() bool { return p.constructor }

func (p *ProxyObject) Call(this Value, args []Value) (Value, error) {
	if err := p.vm.enter(); err != nil {
		return Undefined, err
	}
	defer p.vm.leave()
	if !p.callable {
		return Undefined, p.vm.NewTypeError("%s is not a function", objectValue(TypeProxy, p).Inspect())
	}
	fn, ok, err := p.lookup(TrapApply)
	if err != nil {
		return Undefined, err
	}
	if !ok {
		return Call(p.vm, p.target, this, args)
	}
	return p.invoke(TrapApply, fn, p.target, this, CreateArrayFromList(p.vm, args))
}

// Construct dispatches to the construct trap. The target's own [[Construct]]
// runs only when no trap is installed; a trap result that is not an object is
// an invariant violation.
func (p *ProxyObject) Construct(args []Value, newTarget Value) (Value, error) {
	if err := p.vm.enter(); err != nil {
		return Undefined, err
	}
	defer p.vm.leave()
	if !p.constructor {
		return Undefined, p.vm.newNotConstructible("%s is not a constructor", objectValue(TypeProxy, p).Inspect())
	}
	fn, ok, err := p.lookup(TrapConstruct)
	if err != nil {
		return Undefined, err
	}
	if !ok {
		return Construct(p.vm, p.target, args, newTarget)
	}
	res, err := p.invoke(TrapConstruct, fn, p.target, CreateArrayFromList(p.vm, args), newTarget)
	if err != nil {
		return Undefined, err
	}
	if !res.IsObject() {
		return Undefined, p.violation(TrapConstruct, "trap returned non-object ('%s')", res.Inspect())
	}
	return res, nil
}
