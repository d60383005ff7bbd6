package builtins

import (
	"sort"

	"go.uber.org/zap"

	"exotic/pkg/vm"
)

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	initializers := []BuiltinInitializer{
		&ObjectInitializer{},
		&FunctionInitializer{},
		&ArrayInitializer{},
		&ErrorInitializer{},
		&ReflectInitializer{},
		&ProxyInitializer{},
	}

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// Install runs every standard initializer against machine.
func Install(machine *vm.VM) error {
	ctx := &RuntimeContext{
		VM:                machine,
		DefineGlobal:      machine.DefineGlobal,
		ObjectPrototype:   machine.ObjectPrototype,
		FunctionPrototype: machine.FunctionPrototype,
		ArrayPrototype:    machine.ArrayPrototype,
	}
	for _, initializer := range GetStandardInitializers() {
		if err := initializer.InitRuntime(ctx); err != nil {
			return err
		}
		machine.Logger().Debug("builtin initialized", zap.String("name", initializer.Name()), zap.Int("priority", initializer.Priority()))
	}
	return nil
}

// NewRuntime creates a VM with the standard globals installed.
func NewRuntime(cfg vm.Config) (*vm.VM, error) {
	machine := vm.NewVM(cfg)
	if err := Install(machine); err != nil {
		return nil, err
	}
	return machine, nil
}
