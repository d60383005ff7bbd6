package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"exotic/pkg/vm"
)

// TrapMetrics counts proxy trap dispatches and scenario results. It implements
// vm.TrapObserver and owns its registry so several runs never collide on the
// global default registerer.
type TrapMetrics struct {
	Registry *prometheus.Registry

	TrapDispatch *prometheus.CounterVec
	Scenarios    *prometheus.CounterVec

	// Snapshot for summaries, kept alongside the counters
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current totals.
type Snapshot struct {
	Dispatches int64
	Failures   int64
	Violations int64
}

// New creates a collector with a fresh registry.
func New() *TrapMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &TrapMetrics{
		Registry: reg,
		TrapDispatch: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exotic_proxy_trap_dispatch_total",
				Help: "Proxy internal method dispatches by trap and outcome",
			},
			[]string{"trap", "outcome"},
		),
		Scenarios: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exotic_scenarios_total",
				Help: "Probe scenarios run, by result",
			},
			[]string{"result"},
		),
	}
}

// TrapDispatched records one dispatch outcome.
func (m *TrapMetrics) TrapDispatched(trap vm.Trap, outcome vm.Outcome) {
	m.TrapDispatch.WithLabelValues(trap.String(), outcome.String()).Inc()

	m.mu.Lock()
	switch outcome {
	case vm.OutcomeFailed:
		m.snapshot.Failures++
	case vm.OutcomeViolation:
		m.snapshot.Violations++
	}
	// A violation follows the invoked event of the same dispatch.
	if outcome != vm.OutcomeViolation {
		m.snapshot.Dispatches++
	}
	m.mu.Unlock()
}

// RecordScenario records a finished scenario.
func (m *TrapMetrics) RecordScenario(passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	m.Scenarios.WithLabelValues(result).Inc()
}

// Snapshot returns the current totals.
func (m *TrapMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// WriteSummary prints every non-zero trap counter, sorted by trap then outcome.
func (m *TrapMetrics) WriteSummary(w io.Writer) error {
	families, err := m.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	type row struct {
		trap, outcome string
		count         float64
	}
	var rows []row
	for _, mf := range families {
		if mf.GetName() != "exotic_proxy_trap_dispatch_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			r := row{count: metric.GetCounter().GetValue()}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "trap":
					r.trap = lp.GetValue()
				case "outcome":
					r.outcome = lp.GetValue()
				}
			}
			if r.count > 0 {
				rows = append(rows, r)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].trap != rows[j].trap {
			return rows[i].trap < rows[j].trap
		}
		return rows[i].outcome < rows[j].outcome
	})

	if _, err := fmt.Fprintf(w, "%-26s %-10s %s\n", "TRAP", "OUTCOME", "COUNT"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-26s %-10s %d\n", r.trap, r.outcome, int64(r.count)); err != nil {
			return err
		}
	}
	return nil
}
