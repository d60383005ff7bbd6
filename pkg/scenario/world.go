package scenario

import (
	"strings"

	"exotic/pkg/vm"
)

// world is the engine state of one scenario run: the runtime, the proxy under
// test and its target, and per-trap call counts across every proxy built.
type world struct {
	machine *vm.VM
	proxy   vm.Value
	target  vm.Value
	calls   map[string]int
	// thrown is the most recent exception a scenario trap raised.
	thrown error
}

func newWorld(machine *vm.VM) *world {
	return &world{machine: machine, calls: make(map[string]int)}
}

func (w *world) setup(spec *ProxySpec) error {
	proxy, target, err := w.buildProxy(spec)
	if err != nil {
		return err
	}
	w.proxy, w.target = proxy, target
	return nil
}

func (w *world) buildProxy(spec *ProxySpec) (proxy, target vm.Value, err error) {
	var self vm.Value
	rec := &vm.HandlerRecord{}
	for _, tb := range spec.Handler {
		rec.On(tb.Trap, w.trapFunc(tb, &self))
	}
	target, err = w.buildTarget(&spec.Target, &self)
	if err != nil {
		return vm.Undefined, vm.Undefined, err
	}
	self, err = vm.MakeProxy(w.machine, target, rec.Object(w.machine))
	if err != nil {
		return vm.Undefined, vm.Undefined, err
	}
	return self, target, nil
}

func (w *world) trapFunc(tb TrapBehavior, self *vm.Value) vm.NativeFunc {
	name := tb.Trap.String()
	n := 0
	return func(this vm.Value, args []vm.Value) (vm.Value, error) {
		n++
		w.calls[name]++
		b := tb.Behavior
		if b.Throw != nil && n >= b.FailOn {
			v, err := w.value(b.Throw, *self)
			if err != nil {
				return vm.Undefined, err
			}
			w.thrown = vm.Throw(v)
			return vm.Undefined, w.thrown
		}
		if b.Return != nil {
			return w.value(b.Return, *self)
		}
		forward, err := w.global("Reflect." + name)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Call(w.machine, forward, vm.Undefined, args)
	}
}

func (w *world) buildTarget(spec *TargetSpec, self *vm.Value) (vm.Value, error) {
	var target vm.Value
	switch spec.Kind {
	case TargetFunction:
		target = vm.NewNativeFunction(w.machine, "target", 0, func(vm.Value, []vm.Value) (vm.Value, error) {
			return vm.Undefined, nil
		})
	case TargetConstructor:
		target = vm.NewOrdinaryFunction(w.machine, "Target", 0, func(vm.Value, []vm.Value) (vm.Value, error) {
			return vm.Undefined, nil
		})
	case TargetArray:
		target = vm.NewArray(w.machine)
	default:
		target = vm.NewObject(w.machine, w.machine.ObjectPrototype)
	}

	for _, p := range spec.Properties {
		v, err := w.value(&p.Value, *self)
		if err != nil {
			return vm.Undefined, err
		}
		if err := vm.CreateDataPropertyOrThrow(w.machine, target, vm.NewStringKey(p.Key), v); err != nil {
			return vm.Undefined, err
		}
	}
	for _, p := range spec.Fixed {
		v, err := w.value(&p.Value, *self)
		if err != nil {
			return vm.Undefined, err
		}
		desc := vm.DataDescriptor(v, false, true, false)
		if err := vm.DefinePropertyOrThrow(w.machine, target, vm.NewStringKey(p.Key), desc); err != nil {
			return vm.Undefined, err
		}
	}
	if spec.Extensible != nil && !*spec.Extensible {
		if _, err := target.AsObject().PreventExtensions(); err != nil {
			return vm.Undefined, err
		}
	}
	return target, nil
}

// value materializes spec. self is the proxy whose handler is evaluating it,
// or the scenario proxy outside any handler.
func (w *world) value(spec *ValueSpec, self vm.Value) (vm.Value, error) {
	switch spec.Kind {
	case ValueScalar:
		return scalarValue(spec.Scalar), nil
	case ValueRef:
		switch spec.Name {
		case "proxy":
			return w.proxy, nil
		case "target":
			return w.target, nil
		case "self":
			if self.IsUndefined() {
				return w.proxy, nil
			}
			return self, nil
		default:
			return vm.Undefined, nil
		}
	case ValueGlobal:
		return w.global(spec.Name)
	case ValueSymbol:
		return vm.NewSymbol(spec.Name), nil
	case ValueProxy:
		proxy, _, err := w.buildProxy(spec.Proxy)
		return proxy, err
	case ValueArray:
		items := make([]vm.Value, len(spec.Items))
		for i := range spec.Items {
			v, err := w.value(&spec.Items[i], self)
			if err != nil {
				return vm.Undefined, err
			}
			items[i] = v
		}
		return vm.CreateArrayFromList(w.machine, items), nil
	default:
		obj := vm.NewObject(w.machine, w.machine.ObjectPrototype)
		for i := range spec.Props {
			v, err := w.value(&spec.Props[i].Value, self)
			if err != nil {
				return vm.Undefined, err
			}
			if err := vm.CreateDataPropertyOrThrow(w.machine, obj, vm.NewStringKey(spec.Props[i].Key), v); err != nil {
				return vm.Undefined, err
			}
		}
		return obj, nil
	}
}

// global resolves a dotted path such as "Reflect.defineProperty" from the
// global object.
func (w *world) global(path string) (vm.Value, error) {
	parts := strings.Split(path, ".")
	v, ok := w.machine.GetGlobal(parts[0])
	if !ok {
		return vm.Undefined, w.machine.NewTypeError("%s is not defined", parts[0])
	}
	for _, name := range parts[1:] {
		var err error
		if v, err = vm.Get(w.machine, v, vm.NewStringKey(name)); err != nil {
			return vm.Undefined, err
		}
	}
	return v, nil
}

func scalarValue(s any) vm.Value {
	switch x := s.(type) {
	case bool:
		return vm.BooleanValue(x)
	case float64:
		return vm.NumberValue(x)
	case string:
		return vm.NewString(x)
	default:
		return vm.Null
	}
}

func ownKeyNames(o vm.Value) ([]string, error) {
	keys, err := o.AsObject().OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names, nil
}
