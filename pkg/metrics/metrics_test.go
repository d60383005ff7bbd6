package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exotic/pkg/vm"
)

func TestTrapDispatchedCounts(t *testing.T) {
	m := New()
	m.TrapDispatched(vm.TrapDefineProperty, vm.OutcomeInvoked)
	m.TrapDispatched(vm.TrapDefineProperty, vm.OutcomeInvoked)
	m.TrapDispatched(vm.TrapDefineProperty, vm.OutcomeViolation)
	m.TrapDispatched(vm.TrapConstruct, vm.OutcomeFailed)
	m.TrapDispatched(vm.TrapGet, vm.OutcomeForwarded)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrapDispatch.WithLabelValues("defineProperty", "invoked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrapDispatch.WithLabelValues("defineProperty", "violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrapDispatch.WithLabelValues("construct", "failed")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.TrapDispatch))

	assert.Equal(t, Snapshot{Dispatches: 4, Failures: 1, Violations: 1}, m.Snapshot())
}

func TestRecordScenario(t *testing.T) {
	m := New()
	m.RecordScenario(true)
	m.RecordScenario(true)
	m.RecordScenario(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Scenarios.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scenarios.WithLabelValues("fail")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.TrapDispatched(vm.TrapHas, vm.OutcomeInvoked)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TrapDispatch.WithLabelValues("has", "invoked")))
}

func TestObserverThroughVM(t *testing.T) {
	m := New()
	machine := vm.NewVM(vm.Config{Observer: m})
	target := vm.NewObject(machine, machine.ObjectPrototype)
	handler := vm.NewObject(machine, machine.ObjectPrototype)
	proxy, err := vm.MakeProxy(machine, target, handler)
	require.NoError(t, err)

	_, err = proxy.AsObject().Get(vm.NewStringKey("x"), proxy)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrapDispatch.WithLabelValues("get", "forwarded")))
}

func TestWriteSummary(t *testing.T) {
	m := New()
	m.TrapDispatched(vm.TrapSet, vm.OutcomeInvoked)
	m.TrapDispatched(vm.TrapDefineProperty, vm.OutcomeFailed)
	m.TrapDispatched(vm.TrapDefineProperty, vm.OutcomeFailed)

	var buf bytes.Buffer
	require.NoError(t, m.WriteSummary(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TRAP"))
	assert.Equal(t, []string{"defineProperty", "failed", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"set", "invoked", "1"}, strings.Fields(lines[2]))
}
