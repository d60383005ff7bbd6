package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioErrorFormatting(t *testing.T) {
	err := NewScenarioError(Position{File: "a.yaml", Line: 3, Column: 5}, "unknown trap %q", "definePropety")
	assert.Equal(t, `Scenario Error at a.yaml:3:5: unknown trap "definePropety"`, err.Error())
	assert.Equal(t, "Scenario", err.Kind())
	assert.Equal(t, `unknown trap "definePropety"`, err.Message())

	noFile := NewScenarioError(Position{Line: 1, Column: 2}, "bad")
	assert.Equal(t, "Scenario Error at 1:2: bad", noFile.Error())
}

func TestScenarioErrorUnwrap(t *testing.T) {
	err := NewScenarioError(Position{Line: 1, Column: 1}, "read failed").CausedBy(io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))

	var target ExoticError
	require.True(t, stderrors.As(error(err), &target))
	assert.Equal(t, 1, target.Pos().Line)
}

func TestDisplayErrors(t *testing.T) {
	source := "name: x\nhandler:\n  definePropety: {throw: 1}\n"
	var buf bytes.Buffer
	DisplayErrors(&buf, source, []ExoticError{
		NewScenarioError(Position{Line: 3, Column: 3}, "unknown trap"),
		NewScenarioError(Position{Line: 99, Column: 1}, "out of range"),
	})

	want := "Scenario Error at 3:3: unknown trap\n" +
		"    definePropety: {throw: 1}\n" +
		"    ^\n\n" +
		"Scenario Error: out of range\n"
	assert.Equal(t, want, buf.String())
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "f.yaml:2:4", Position{File: "f.yaml", Line: 2, Column: 4}.String())
	assert.Equal(t, "2:4", Position{Line: 2, Column: 4}.String())
	assert.False(t, Position{}.IsValid())
}
