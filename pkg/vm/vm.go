package vm

import (
	"go.uber.org/zap"
)

// DefaultMaxCallDepth bounds nested [[Call]]/[[Construct]] of function objects.
const DefaultMaxCallDepth = 512

// Config holds the knobs a host can set on a VM.
type Config struct {
	// MaxCallDepth is the nesting limit for function calls; <= 0 selects the default.
	MaxCallDepth int
	// Logger receives debug traces of proxy trap dispatch. Nil means no logging.
	Logger *zap.Logger
	// Observer is notified of every trap dispatch outcome. Optional.
	Observer TrapObserver
}

// VM owns the intrinsics, the global object and the call-depth counter of one
// evaluation context. It is not safe for concurrent use.
type VM struct {
	config   Config
	logger   *zap.Logger
	observer TrapObserver
	depth    int

	ObjectPrototype     Value
	FunctionPrototype   Value
	ArrayPrototype      Value
	ErrorPrototype      Value
	TypeErrorPrototype  Value
	RangeErrorPrototype Value

	globals Value
}

// NewVM creates a VM with bare intrinsic prototypes. Builtins (constructors,
// methods) are installed separately by the builtins package.
func NewVM(cfg Config) *VM {
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	vm := &VM{
		config:   cfg,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
	if vm.logger == nil {
		vm.logger = zap.NewNop()
	}

	vm.ObjectPrototype = NewObject(vm, Null)

	// Function.prototype is itself callable and returns undefined.
	fp := &FunctionObject{
		PlainObject: newPlainObject(vm, vm.ObjectPrototype),
		call:        func(Value, []Value) (Value, error) { return Undefined, nil },
	}
	vm.FunctionPrototype = objectValue(TypeFunction, fp)
	fp.DefineReadOnly("length", IntegerValue(0))
	fp.DefineReadOnly("name", NewString(""))

	arrayProto, _ := ArrayCreate(vm, 0, vm.ObjectPrototype)
	vm.ArrayPrototype = arrayProto

	vm.ErrorPrototype = vm.newErrorPrototype(vm.ObjectPrototype, "Error")
	vm.TypeErrorPrototype = vm.newErrorPrototype(vm.ErrorPrototype, "TypeError")
	vm.RangeErrorPrototype = vm.newErrorPrototype(vm.ErrorPrototype, "RangeError")

	vm.globals = NewObject(vm, vm.ObjectPrototype)
	return vm
}

func (vm *VM) newErrorPrototype(parent Value, name string) Value {
	proto := NewObject(vm, parent)
	po := proto.AsPlainObject()
	po.SetOwnNonEnumerable("name", NewString(name))
	po.SetOwnNonEnumerable("message", NewString(""))
	return proto
}

// Logger returns the VM's logger (never nil).
func (vm *VM) Logger() *zap.Logger { return vm.logger }

// GlobalObject returns the global object.
func (vm *VM) GlobalObject() Value { return vm.globals }

// DefineGlobal installs a builtin-style global binding.
func (vm *VM) DefineGlobal(name string, value Value) error {
	vm.globals.AsPlainObject().SetOwnNonEnumerable(name, value)
	return nil
}

// GetGlobal reads a global binding. Missing bindings return (Undefined, false).
func (vm *VM) GetGlobal(name string) (Value, bool) {
	return vm.globals.AsPlainObject().GetOwn(name)
}

// enter accounts for one more nested call and fails once the limit is exceeded.
func (vm *VM) enter() error {
	if vm.depth >= vm.config.MaxCallDepth {
		return vm.NewRangeError("Maximum call stack size exceeded")
	}
	vm.depth++
	return nil
}

func (vm *VM) leave() {
	vm.depth--
}

// CallDepth reports the current nesting of function calls.
func (vm *VM) CallDepth() int { return vm.depth }
