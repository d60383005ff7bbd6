package builtins

import (
	"testing"

	"exotic/pkg/vm"
)

func TestObjectInitializer(t *testing.T) {
	// Test that ObjectInitializer implements the interface correctly
	var initializer BuiltinInitializer = &ObjectInitializer{}

	if initializer.Name() != "Object" {
		t.Errorf("Expected name 'Object', got %s", initializer.Name())
	}

	if initializer.Priority() != PriorityObject {
		t.Errorf("Expected priority %d, got %d", PriorityObject, initializer.Priority())
	}
}

func TestStandardInitializersSorted(t *testing.T) {
	inits := GetStandardInitializers()
	if len(inits) == 0 {
		t.Fatal("no initializers")
	}
	if inits[0].Name() != "Object" {
		t.Errorf("Object must initialize first, got %s", inits[0].Name())
	}
	for i := 1; i < len(inits); i++ {
		if inits[i-1].Priority() > inits[i].Priority() {
			t.Errorf("initializers out of order: %s(%d) before %s(%d)",
				inits[i-1].Name(), inits[i-1].Priority(), inits[i].Name(), inits[i].Priority())
		}
	}
}

func TestObjectInitRuntime(t *testing.T) {
	machine, err := NewRuntime(vm.Config{})
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}

	objectCtor, ok := machine.GetGlobal("Object")
	if !ok {
		t.Fatal("Object constructor not defined globally")
	}
	proto, err := vm.Get(machine, objectCtor, vm.NewStringKey("prototype"))
	if err != nil || !vm.SameValue(proto, machine.ObjectPrototype) {
		t.Fatalf("Object.prototype mismatch: %v, %v", proto, err)
	}

	for _, name := range []string{"create", "defineProperty", "getOwnPropertyDescriptor", "getPrototypeOf", "setPrototypeOf", "preventExtensions", "isExtensible", "keys"} {
		fn, err := vm.Get(machine, objectCtor, vm.NewStringKey(name))
		if err != nil || !fn.IsCallable() {
			t.Errorf("Object.%s missing or not callable", name)
		}
	}
	for _, name := range []string{"hasOwnProperty", "toString", "valueOf", "constructor"} {
		if !machine.ObjectPrototype.AsPlainObject().HasOwn(name) {
			t.Errorf("Object.prototype.%s missing", name)
		}
	}
}

func TestObjectDefinePropertyAndDescriptor(t *testing.T) {
	machine, err := NewRuntime(vm.Config{})
	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}
	objectCtor, _ := machine.GetGlobal("Object")
	defineProperty, _ := vm.Get(machine, objectCtor, vm.NewStringKey("defineProperty"))
	getDesc, _ := vm.Get(machine, objectCtor, vm.NewStringKey("getOwnPropertyDescriptor"))
	keys, _ := vm.Get(machine, objectCtor, vm.NewStringKey("keys"))

	obj := vm.NewObject(machine, machine.ObjectPrototype)
	attrs := vm.NewObject(machine, machine.ObjectPrototype)
	vm.CreateDataProperty(attrs, vm.NewStringKey("value"), vm.IntegerValue(1))

	if _, err := vm.Call(machine, defineProperty, vm.Undefined, []vm.Value{obj, vm.NewString("hidden"), attrs}); err != nil {
		t.Fatalf("Object.defineProperty: %v", err)
	}
	descObj, err := vm.Call(machine, getDesc, vm.Undefined, []vm.Value{obj, vm.NewString("hidden")})
	if err != nil {
		t.Fatalf("Object.getOwnPropertyDescriptor: %v", err)
	}
	desc, err := vm.ToPropertyDescriptor(machine, descObj)
	if err != nil {
		t.Fatalf("ToPropertyDescriptor: %v", err)
	}
	if !desc.Equal(vm.DataDescriptor(vm.IntegerValue(1), false, false, false)) {
		t.Errorf("descriptor = %+v", desc)
	}

	// Redefining a frozen property with a different value throws.
	vm.CreateDataProperty(attrs, vm.NewStringKey("value"), vm.IntegerValue(2))
	if _, err := vm.Call(machine, defineProperty, vm.Undefined, []vm.Value{obj, vm.NewString("hidden"), attrs}); err == nil {
		t.Errorf("expected TypeError redefining a non-configurable property")
	}

	vm.CreateDataProperty(obj, vm.NewStringKey("shown"), vm.True)
	list, err := vm.Call(machine, keys, vm.Undefined, []vm.Value{obj})
	if err != nil {
		t.Fatalf("Object.keys: %v", err)
	}
	if n := list.AsArray().Length(); n != 1 {
		t.Errorf("Object.keys length = %d, want 1", n)
	}
}
