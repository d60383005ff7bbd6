package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exotic/pkg/metrics"
	"exotic/pkg/vm"
)

func loadBundled(t *testing.T) []*Scenario {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(bundledDir, "*.yaml"))
	require.NoError(t, err)
	var all []*Scenario
	for _, f := range files {
		scenarios, err := Load(f)
		require.NoError(t, err)
		all = append(all, scenarios...)
	}
	return all
}

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	scenarios, err := Parse("inline.yaml", []byte(src))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	return scenarios[0]
}

func TestBundledScenariosPass(t *testing.T) {
	runner := NewRunner()
	for _, s := range loadBundled(t) {
		t.Run(s.Name, func(t *testing.T) {
			res, err := runner.Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, res.Passed, "failures: %v", res.Failures)
		})
	}
}

func TestRunPropagationScenario(t *testing.T) {
	s := mustParse(t, `
name: propagate
proxy:
  target: {kind: constructor}
  handler:
    construct: {return: {ref: self}}
    defineProperty: {throw: 42}
operation:
  kind: array-of
  args: [{ref: undefined}, {ref: undefined}]
expect:
  throws: 42
`)
	res, err := NewRunner().Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, res.Passed, "failures: %v", res.Failures)

	ex, ok := vm.AsException(res.Err)
	require.True(t, ok)
	assert.Equal(t, 42.0, ex.Value.AsNumber())
	assert.Equal(t, map[string]int{"construct": 1, "defineProperty": 1}, res.Calls)
}

func TestRunReportsMismatches(t *testing.T) {
	s := mustParse(t, `
name: wrong
proxy:
  target: {kind: constructor}
  handler:
    construct: {return: {}}
    defineProperty: {throw: 42}
operation:
  kind: array-of
  args: [5]
expect:
  throws: 42
  targetKeys: ["nope"]
  calls: {defineProperty: 1}
`)
	res, err := NewRunner().Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Failures, 3)
	assert.Contains(t, res.Failures[0], "expected the trap's exception 42, got normal completion")
	assert.Contains(t, res.Failures[1], "target keys")
	assert.Contains(t, res.Failures[2], "defineProperty trap called 0 times, want 1")
}

func TestRunErrorKindAndMessage(t *testing.T) {
	s := mustParse(t, `
name: kinds
proxy:
  target: {kind: constructor}
  handler:
    construct: {return: "str"}
operation: {kind: construct}
expect:
  error: NotConstructible
  message: "^nothing like this$"
`)
	res, err := NewRunner().Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Passed)
	require.Len(t, res.Failures, 2)
	assert.Contains(t, res.Failures[0], "error kind = InvariantViolation, want NotConstructible")
	assert.Contains(t, res.Failures[1], "does not match")
}

func TestRunRecordsMetrics(t *testing.T) {
	m := metrics.New()
	runner := NewRunner(WithMetrics(m))
	s := mustParse(t, `
name: forwarded-define
proxy:
  target: {kind: object}
  handler: {}
operation:
  kind: reflect
  method: defineProperty
  args: ["x", {value: 1}]
expect:
  result: true
  targetKeys: ["x"]
`)
	res, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, res.Passed, "failures: %v", res.Failures)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrapDispatch.WithLabelValues("defineProperty", "forwarded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scenarios.WithLabelValues("pass")))
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner().Run(ctx, mustParse(t, "name: c\noperation: {kind: construct}\n"))
	assert.ErrorIs(t, err, context.Canceled)

	results, err := NewRunner().RunAll(ctx, loadBundled(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
