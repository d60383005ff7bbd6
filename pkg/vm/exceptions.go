package vm

import (
	"errors"
	"fmt"

	exoerrors "exotic/pkg/errors"
)

// ErrorKind classifies an Exception by who raised it.
type ErrorKind uint8

const (
	// KindThrow is a value thrown by user code (including trap handlers).
	KindThrow ErrorKind = iota
	KindTypeError
	KindRangeError
	KindNotConstructible
	KindInvariantViolation
)

func (k ErrorKind) String() string {
	switch k {
	case KindThrow:
		return "Throw"
	case KindTypeError:
		return "TypeError"
	case KindRangeError:
		return "RangeError"
	case KindNotConstructible:
		return "NotConstructible"
	case KindInvariantViolation:
		return "InvariantViolation"
	default:
		return "Unknown"
	}
}

// Exception is the error carrying a thrown ECMAScript value through Go call frames.
// Trap failures reach the caller as the very same *Exception the trap produced.
type Exception struct {
	Value Value
	kind  ErrorKind
}

// Throw wraps an arbitrary value as a thrown exception.
func Throw(v Value) error {
	return &Exception{Value: v, kind: KindThrow}
}

func (e *Exception) Error() string {
	return "Uncaught " + e.Value.Inspect()
}

// Kind reports the exception's classification.
func (e *Exception) Kind() ErrorKind { return e.kind }

// Unwrap exposes the taxonomy sentinel for engine-raised exceptions.
func (e *Exception) Unwrap() error {
	switch e.kind {
	case KindNotConstructible:
		return exoerrors.ErrNotConstructible
	case KindInvariantViolation:
		return exoerrors.ErrInvariantViolation
	default:
		return nil
	}
}

// AsException extracts the *Exception from err, if any.
func AsException(err error) (*Exception, bool) {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// newError allocates an error object inheriting from proto with an own,
// non-enumerable message property.
func (vm *VM) newError(proto Value, kind ErrorKind, message string) error {
	obj := NewObject(vm, proto)
	obj.AsPlainObject().SetOwnNonEnumerable("message", NewString(message))
	return &Exception{Value: obj, kind: kind}
}

// NewTypeError constructs a TypeError exception error for builtin helpers to return
func (vm *VM) NewTypeError(format string, args ...any) error {
	return vm.newError(vm.TypeErrorPrototype, KindTypeError, fmt.Sprintf(format, args...))
}

// NewRangeError constructs a RangeError exception error for builtin helpers to return
func (vm *VM) NewRangeError(format string, args ...any) error {
	return vm.newError(vm.RangeErrorPrototype, KindRangeError, fmt.Sprintf(format, args...))
}

// newNotConstructible raises a TypeError classified as NotConstructible.
func (vm *VM) newNotConstructible(format string, args ...any) error {
	return vm.newError(vm.TypeErrorPrototype, KindNotConstructible, fmt.Sprintf(format, args...))
}

// newInvariantViolation raises a TypeError classified as InvariantViolation.
func (vm *VM) newInvariantViolation(trap Trap, format string, args ...any) error {
	msg := fmt.Sprintf("'%s' on proxy: %s", trap, fmt.Sprintf(format, args...))
	return vm.newError(vm.TypeErrorPrototype, KindInvariantViolation, msg)
}
