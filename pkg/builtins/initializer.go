package builtins

import (
	"exotic/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Array", "Reflect", "Proxy")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime creates runtime values for the VM
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The VM instance
	VM *vm.VM

	// Define a global value
	DefineGlobal func(name string, value vm.Value) error

	// Intrinsic prototypes owned by the VM
	ObjectPrototype   vm.Value
	FunctionPrototype vm.Value
	ArrayPrototype    vm.Value
}

// Priority constants for initialization order
const (
	PriorityObject   = 0   // Object must be first (base prototype)
	PriorityFunction = 1   // Function second (inherits from Object)
	PriorityArray    = 3   // Array third (inherits from Object)
	PriorityError    = 20  // Error family, after basic types
	PriorityReflect  = 104 // Reflect namespace
	PriorityProxy    = 500 // After most other built-ins
)

// arg returns args[i] or undefined when the argument was not passed.
func arg(args []vm.Value, i int) vm.Value {
	if i < len(args) {
		return args[i]
	}
	return vm.Undefined
}

// propertySink installs builtin properties on a fresh object and remembers the
// first failure so initializers can report it once at the end.
type propertySink struct {
	machine *vm.VM
	obj     vm.Value
	err     error
}

func newPropertySink(machine *vm.VM, obj vm.Value) *propertySink {
	return &propertySink{machine: machine, obj: obj}
}

func (s *propertySink) define(name string, desc vm.PropertyDescriptor) {
	if s.err != nil {
		return
	}
	s.err = vm.DefinePropertyOrThrow(s.machine, s.obj, vm.NewStringKey(name), desc)
}

// method installs a writable, non-enumerable, configurable native function.
func (s *propertySink) method(name string, length int, fn vm.NativeFunc) {
	s.define(name, vm.DataDescriptor(vm.NewNativeFunction(s.machine, name, length, fn), true, false, true))
}

// value installs a writable, non-enumerable, configurable data property.
func (s *propertySink) value(name string, v vm.Value) {
	s.define(name, vm.DataDescriptor(v, true, false, true))
}

// fixed installs a non-writable, non-enumerable, non-configurable data property.
func (s *propertySink) fixed(name string, v vm.Value) {
	s.define(name, vm.DataDescriptor(v, false, false, false))
}
