package builtins

import (
	"exotic/pkg/vm"
)

// ProxyInitializer installs the Proxy constructor. Proxies are never revoked,
// so there is no Proxy.revocable.
type ProxyInitializer struct{}

func (p *ProxyInitializer) Name() string {
	return "Proxy"
}

func (p *ProxyInitializer) Priority() int {
	return PriorityProxy
}

func (p *ProxyInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	// Proxy has no prototype property; instances take the target's shape.
	proxyConstructor := vm.NewNativeConstructor(vmInstance, "Proxy", 2,
		func(this vm.Value, args []vm.Value) (vm.Value, error) {
			return vm.Undefined, vmInstance.NewTypeError("Constructor Proxy requires 'new'")
		},
		func(args []vm.Value, newTarget vm.Value) (vm.Value, error) {
			return vm.MakeProxy(vmInstance, arg(args, 0), arg(args, 1))
		})

	return ctx.DefineGlobal("Proxy", proxyConstructor)
}
