package scenario

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exotic/pkg/errors"
	"exotic/pkg/vm"
)

const bundledDir = "../../testdata/scenarios"

func TestParseScenario(t *testing.T) {
	src := `
name: sample
proxy:
  target:
    kind: constructor
    properties: {b: 1, a: "x"}
    fixed: {z: null}
    extensible: false
  handler:
    construct: {return: {ref: self}}
    defineProperty: {failOn: 2, throw: 42}
    get: forward
operation:
  kind: array-of
  args: [1, [true], {k: {symbol: tag}}]
expect:
  throws: 42
  calls: {defineProperty: 2}
`
	scenarios, err := Parse("sample.yaml", []byte(src))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	s := scenarios[0]

	assert.Equal(t, "sample", s.Name)
	assert.Equal(t, errors.Position{File: "sample.yaml", Line: 2, Column: 1}, s.Pos)
	assert.Equal(t, TargetConstructor, s.Proxy.Target.Kind)
	require.Len(t, s.Proxy.Target.Properties, 2)
	assert.Equal(t, "b", s.Proxy.Target.Properties[0].Key, "property order follows the document")
	assert.Nil(t, s.Proxy.Target.Fixed[0].Value.Scalar)
	require.NotNil(t, s.Proxy.Target.Extensible)
	assert.False(t, *s.Proxy.Target.Extensible)

	require.Len(t, s.Proxy.Handler, 3)
	assert.Equal(t, vm.TrapConstruct, s.Proxy.Handler[0].Trap)
	assert.Equal(t, ValueRef, s.Proxy.Handler[0].Return.Kind)
	df := s.Proxy.Handler[1]
	assert.Equal(t, 2, df.FailOn)
	assert.True(t, df.Forward, "failOn without return forwards")
	assert.True(t, s.Proxy.Handler[2].Forward)

	require.Len(t, s.Operation.Args, 3)
	assert.Equal(t, 1.0, s.Operation.Args[0].Scalar)
	assert.Equal(t, ValueArray, s.Operation.Args[1].Kind)
	assert.Equal(t, ValueObject, s.Operation.Args[2].Kind)
	assert.Equal(t, ValueSymbol, s.Operation.Args[2].Props[0].Value.Kind)
	assert.Equal(t, "{k: Symbol(tag)}", s.Operation.Args[2].String())

	assert.True(t, s.Expect.ExpectsFailure())
	assert.Equal(t, 2, s.Expect.Calls["defineProperty"])
}

func TestParseMultipleDocuments(t *testing.T) {
	src := "name: a\noperation: {kind: construct}\n---\nname: b\noperation: {kind: call}\n"
	scenarios, err := Parse("multi.yaml", []byte(src))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "b", scenarios[1].Name)
	assert.Equal(t, 4, scenarios[1].Pos.Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"unknown trap", "name: x\nproxy:\n  handler:\n    fly: forward\noperation: {kind: call}\n", `unknown trap "fly"`, 4},
		{"unknown behavior", "name: x\nproxy:\n  handler:\n    get: ignore\noperation: {kind: call}\n", "unknown trap behavior", 4},
		{"ambiguous behavior", "name: x\nproxy:\n  handler:\n    get: {forward: true, throw: 1}\noperation: {kind: call}\n", "exactly one of", 4},
		{"failOn without throw", "name: x\nproxy:\n  handler:\n    get: {failOn: 2}\noperation: {kind: call}\n", "failOn needs a throw", 4},
		{"unknown target kind", "name: x\nproxy:\n  target: {kind: widget}\noperation: {kind: call}\n", "unknown target kind", 3},
		{"unknown ref", "name: x\noperation:\n  kind: call\n  args: [{ref: nowhere}]\n", `unknown ref "nowhere"`, 4},
		{"unknown operation", "name: x\noperation: {kind: teleport}\n", "unknown operation kind", 2},
		{"unknown reflect method", "name: x\noperation: {kind: reflect, method: fly}\n", "unknown Reflect method", 2},
		{"newTarget outside construct", "name: x\noperation: {kind: call, newTarget: {ref: proxy}}\n", "newTarget only applies", 2},
		{"throws and error", "name: x\noperation: {kind: call}\nexpect: {throws: 1, error: TypeError}\n", "mutually exclusive", 3},
		{"unknown error kind", "name: x\noperation: {kind: call}\nexpect: {error: Oops}\n", "unknown error kind", 3},
		{"bad pattern", "name: x\noperation: {kind: call}\nexpect: {error: TypeError, message: \"(\"}\n", "invalid message pattern", 3},
		{"calls unknown trap", "name: x\noperation: {kind: call}\nexpect: {calls: {fly: 1}}\n", "calls: unknown trap", 3},
		{"missing name", "operation: {kind: call}\n", "no name", 1},
		{"missing operation", "name: x\n", "no operation", 1},
		{"duplicate name", "name: x\noperation: {kind: call}\n---\nname: x\noperation: {kind: call}\n", "duplicate scenario", 4},
		{"empty", "", "no scenarios", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yaml", []byte(tt.src))
			require.Error(t, err)
			var se *errors.ScenarioError
			require.True(t, stderrors.As(err, &se), "got %T: %v", err, err)
			assert.Contains(t, se.Msg, tt.msg)
			assert.Equal(t, "bad.yaml", se.File)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse("broken.yaml", []byte("name: [unclosed\n"))
	var se *errors.ScenarioError
	require.True(t, stderrors.As(err, &se))
	assert.Contains(t, se.Error(), "Scenario Error at broken.yaml")
	assert.NotNil(t, se.Unwrap())
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
	assert.True(t, stderrors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "one.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: one\noperation: {kind: construct}\n"), 0o644))
	scenarios, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, scenarios[0].Pos.File)
}

func TestBundledScenariosLoad(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(bundledDir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		scenarios, err := Load(f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, scenarios)
	}
}
