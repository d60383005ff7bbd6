package vm

import "go.uber.org/zap"

// Outcome is the terminal state of one proxy trap dispatch.
type Outcome uint8

const (
	// OutcomeForwarded: no trap was installed; the target handled the operation.
	OutcomeForwarded Outcome = iota
	// OutcomeInvoked: the trap ran and returned normally.
	OutcomeInvoked
	// OutcomeFailed: the trap lookup or the trap itself raised.
	OutcomeFailed
	// OutcomeViolation: the trap returned, but its result broke an invariant.
	OutcomeViolation
)

func (o Outcome) String() string {
	switch o {
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeInvoked:
		return "invoked"
	case OutcomeFailed:
		return "failed"
	case OutcomeViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// TrapObserver is notified synchronously of proxy dispatch outcomes. A violation
// is reported after the invoked event of the same dispatch.
type TrapObserver interface {
	TrapDispatched(trap Trap, outcome Outcome)
}

// TrapObserverFunc adapts a function to TrapObserver.
type TrapObserverFunc func(trap Trap, outcome Outcome)

func (f TrapObserverFunc) TrapDispatched(trap Trap, outcome Outcome) { f(trap, outcome) }

func (vm *VM) observeTrap(trap Trap, outcome Outcome) {
	vm.logger.Debug("proxy trap", zap.Stringer("trap", trap), zap.Stringer("outcome", outcome))
	if vm.observer != nil {
		vm.observer.TrapDispatched(trap, outcome)
	}
}
