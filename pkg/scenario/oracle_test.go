package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracleAgreesWithBundledScenarios(t *testing.T) {
	oracle := NewOracle(0)
	for _, s := range loadBundled(t) {
		if s.JS == "" {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			mismatches, err := oracle.Check(context.Background(), s)
			require.NoError(t, err)
			assert.Empty(t, mismatches)
		})
	}
}

func TestOracleReportsDisagreement(t *testing.T) {
	s := mustParse(t, `
name: disagree
operation: {kind: construct}
expect:
  throws: 42
  calls: {construct: 2}
js: |
  var calls = {construct: 1};
  throw 41;
`)
	mismatches, err := NewOracle(time.Second).Check(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0], "goja threw 41, want 42")

	s = mustParse(t, `
name: normal
operation: {kind: construct}
expect:
  error: RangeError
js: |
  1 + 1;
`)
	mismatches, err = NewOracle(time.Second).Check(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"goja completed normally, want RangeError"}, mismatches)

	s = mustParse(t, `
name: counts
operation: {kind: construct}
expect:
  keys: ["a"]
  calls: {get: 2}
js: |
  var calls = {get: 1};
  ({a: 1});
`)
	mismatches, err = NewOracle(time.Second).Check(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"goja get trap called 1 times, want 2"}, mismatches)
}

func TestOracleTimeout(t *testing.T) {
	s := mustParse(t, "name: spin\noperation: {kind: construct}\njs: 'for (;;) {}'\n")
	_, err := NewOracle(50*time.Millisecond).Check(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle timeout exceeded")
}

func TestOracleSyntaxError(t *testing.T) {
	s := mustParse(t, "name: broken\noperation: {kind: construct}\njs: 'var = ;'\n")
	_, err := NewOracle(0).Check(context.Background(), s)
	assert.Error(t, err)
}

func TestRunnerWithOracle(t *testing.T) {
	s := mustParse(t, `
name: oracle-mismatch
proxy:
  target: {kind: constructor}
  handler:
    construct: {return: {}}
operation: {kind: construct}
expect:
  keys: []
js: |
  ({extra: true});
`)
	res, err := NewRunner(WithOracle(NewOracle(time.Second))).Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.False(t, res.Passed)
	require.Len(t, res.OracleFailures, 1)
	assert.Contains(t, res.OracleFailures[0], "goja result keys")
}
