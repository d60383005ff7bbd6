package vm

import "fmt"

// Trap names one of the handler methods a proxy may consult.
type Trap uint8

const (
	TrapGetPrototypeOf Trap = iota
	TrapSetPrototypeOf
	TrapIsExtensible
	TrapPreventExtensions
	TrapGetOwnPropertyDescriptor
	TrapDefineProperty
	TrapHas
	TrapGet
	TrapSet
	TrapDeleteProperty
	TrapOwnKeys
	TrapApply
	TrapConstruct
	trapCount
)

var trapNames = [trapCount]string{
	TrapGetPrototypeOf:           "getPrototypeOf",
	TrapSetPrototypeOf:           "setPrototypeOf",
	TrapIsExtensible:             "isExtensible",
	TrapPreventExtensions:        "preventExtensions",
	TrapGetOwnPropertyDescriptor: "getOwnPropertyDescriptor",
	TrapDefineProperty:           "defineProperty",
	TrapHas:                      "has",
	TrapGet:                      "get",
	TrapSet:                      "set",
	TrapDeleteProperty:           "deleteProperty",
	TrapOwnKeys:                  "ownKeys",
	TrapApply:                    "apply",
	TrapConstruct:                "construct",
}

// String returns the handler property name of the trap.
func (t Trap) String() string {
	if t < trapCount {
		return trapNames[t]
	}
	return fmt.Sprintf("Trap(%d)", uint8(t))
}

func (t Trap) key() PropertyKey { return keyFromString(t.String()) }

// Traps lists every trap in dispatch-table order.
func Traps() []Trap {
	out := make([]Trap, trapCount)
	for i := range out {
		out[i] = Trap(i)
	}
	return out
}

// ParseTrap resolves a handler property name.
func ParseTrap(name string) (Trap, bool) {
	for i, n := range trapNames {
		if n == name {
			return Trap(i), true
		}
	}
	return 0, false
}

// HandlerRecord is a Go-side handler description: each non-nil entry becomes a
// native function on the handler object. Trap functions receive the handler
// as this and the trap's argument list (target first).
type HandlerRecord struct {
	traps [trapCount]NativeFunc
}

// On installs fn for trap and returns the record for chaining.
func (h *HandlerRecord) On(trap Trap, fn NativeFunc) *HandlerRecord {
	h.traps[trap] = fn
	return h
}

// Trap returns the installed function for trap, or nil.
func (h *HandlerRecord) Trap(trap Trap) NativeFunc {
	return h.traps[trap]
}

// Object materializes the record as an ordinary handler object.
func (h *HandlerRecord) Object(vm *VM) Value {
	handler := NewObject(vm, vm.ObjectPrototype)
	po := handler.AsPlainObject()
	for i, fn := range h.traps {
		if fn == nil {
			continue
		}
		name := Trap(i).String()
		po.createDataField(name, NewNativeFunction(vm, "[native "+name+"]", trapArity[i], fn))
	}
	return handler
}

var trapArity = [trapCount]int{
	TrapGetPrototypeOf:           1,
	TrapSetPrototypeOf:           2,
	TrapIsExtensible:             1,
	TrapPreventExtensions:        1,
	TrapGetOwnPropertyDescriptor: 2,
	TrapDefineProperty:           3,
	TrapHas:                      2,
	TrapGet:                      3,
	TrapSet:                      4,
	TrapDeleteProperty:           2,
	TrapOwnKeys:                  1,
	TrapApply:                    3,
	TrapConstruct:                3,
}

// LookupTrap reads the trap entry from handler with a full [[Get]], so a
// handler that is itself a proxy may run code here. ok is false when the entry
// is undefined or null; a non-callable entry is a TypeError.
func LookupTrap(vm *VM, handler Value, trap Trap) (fn Value, ok bool, err error) {
	fn, err = GetMethod(vm, handler, trap.key())
	if err != nil || fn.IsUndefined() {
		return Undefined, false, err
	}
	return fn, true, nil
}
