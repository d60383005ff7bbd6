package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundled = "../../testdata/scenarios"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := createRootCommand(context.Background(), &Input{}, "test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunBundledScenarios(t *testing.T) {
	out, _, err := execute(t, "run", "--metrics", bundled)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS array-of-propagates-define-property-throw")
	assert.Contains(t, out, "PASS array-of-partial-failure")
	assert.NotContains(t, out, "FAIL")
	assert.Contains(t, out, "TRAP")
	assert.Contains(t, out, "defineProperty")
}

func TestRunWithOracle(t *testing.T) {
	out, _, err := execute(t, "run", "--oracle", filepath.Join(bundled, "array_of.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "PASS "))
}

func TestRunReportsFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fail.yaml")
	src := "name: wrong\nproxy:\n  target: {kind: constructor}\noperation: {kind: construct}\nexpect: {error: TypeError}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	out, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 scenarios failed")
	assert.Contains(t, out, "FAIL wrong")
	assert.Contains(t, out, "expected TypeError, got normal completion")
}

func TestRunDisplaysScenarioErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bad\noperation: {kind: teleport}\n"), 0o644))

	_, stderr, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown operation kind")
	assert.Contains(t, stderr, "operation: {kind: teleport}")
}

func TestList(t *testing.T) {
	out, _, err := execute(t, "list", filepath.Join(bundled, "construct.yaml"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "construct-trap-result-returned-as-is\t"))
}

func TestMissingPath(t *testing.T) {
	_, _, err := execute(t, "list", filepath.Join(t.TempDir(), "nothing"))
	assert.Error(t, err)
}
