package vm

// NativeFunc is the body of a function object: it receives the this value and
// the argument list and returns a completion.
type NativeFunc func(this Value, args []Value) (Value, error)

// ConstructFunc is a [[Construct]] implementation.
type ConstructFunc func(args []Value, newTarget Value) (Value, error)

// FunctionObject is a callable ordinary object, optionally constructible.
type FunctionObject struct {
	PlainObject
	name string
	call NativeFunc
	ctor ConstructFunc
}

func newFunctionObject(vm *VM, name string, length int, call NativeFunc, ctor ConstructFunc) *FunctionObject {
	f := &FunctionObject{
		PlainObject: newPlainObject(vm, vm.FunctionPrototype),
		name:        name,
		call:        call,
		ctor:        ctor,
	}
	f.DefineReadOnly("length", IntegerValue(length))
	f.DefineReadOnly("name", NewString(name))
	return f
}

// NewNativeFunction creates a builtin function without [[Construct]].
func NewNativeFunction(vm *VM, name string, length int, fn NativeFunc) Value {
	return objectValue(TypeFunction, newFunctionObject(vm, name, length, fn, nil))
}

// NewNativeConstructor creates a builtin function with both [[Call]] and [[Construct]].
// No prototype property is installed; the caller decides whether one exists.
func NewNativeConstructor(vm *VM, name string, length int, fn NativeFunc, ctor ConstructFunc) Value {
	return objectValue(TypeFunction, newFunctionObject(vm, name, length, fn, ctor))
}

// NewOrdinaryFunction creates a function that behaves like `function name() {...}`:
// it owns a fresh prototype object and its [[Construct]] allocates this from
// newTarget.prototype before running body. An object returned by body replaces
// the allocated this.
func NewOrdinaryFunction(vm *VM, name string, length int, body NativeFunc) Value {
	f := newFunctionObject(vm, name, length, body, nil)
	fv := objectValue(TypeFunction, f)
	f.ctor = func(args []Value, newTarget Value) (Value, error) {
		proto, err := GetPrototypeFromConstructor(vm, newTarget, vm.ObjectPrototype)
		if err != nil {
			return Undefined, err
		}
		this := NewObject(vm, proto)
		result, err := body(this, args)
		if err != nil {
			return Undefined, err
		}
		if result.IsObject() {
			return result, nil
		}
		return this, nil
	}

	protoObj := NewObject(vm, vm.ObjectPrototype)
	protoObj.AsPlainObject().SetOwnNonEnumerable("constructor", fv)
	f.putField(keyFromString("prototype"), &Field{value: protoObj, writable: true})
	return fv
}

// Name returns the function's initial name.
func (f *FunctionObject) Name() string { return f.name }

func (f *FunctionObject) IsCallable() bool    { return true }
func (f *FunctionObject) IsConstructor() bool { return f.ctor != nil }

func (f *FunctionObject) Call(this Value, args []Value) (Value, error) {
	if err := f.vm.enter(); err != nil {
		return Undefined, err
	}
	defer f.vm.leave()
	return f.call(this, args)
}

func (f *FunctionObject) Construct(args []Value, newTarget Value) (Value, error) {
	if f.ctor == nil {
		return Undefined, f.vm.newNotConstructible("%s is not a constructor", f.describe())
	}
	if err := f.vm.enter(); err != nil {
		return Undefined, err
	}
	defer f.vm.leave()
	return f.ctor(args, newTarget)
}

func (f *FunctionObject) describe() string {
	if f.name == "" {
		return "anonymous function"
	}
	return f.name
}
