package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"exotic/pkg/vm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("EXOTIC_ENGINE_MAX_CALL_DEPTH", "64")
	t.Setenv("EXOTIC_LOGGING_LEVEL", "debug")
	t.Setenv("EXOTIC_LOGGING_DEV", "true")
	t.Setenv("EXOTIC_PROBE_ORACLE", "true")
	t.Setenv("EXOTIC_PROBE_SCENARIO_DIR", "/tmp/scenarios")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Engine.MaxCallDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.True(t, cfg.Probe.Oracle)
	assert.Equal(t, "/tmp/scenarios", cfg.Probe.ScenarioDir)

	lc := cfg.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Development)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"non-numeric depth", "EXOTIC_ENGINE_MAX_CALL_DEPTH", "deep"},
		{"zero depth", "EXOTIC_ENGINE_MAX_CALL_DEPTH", "0"},
		{"unknown level", "EXOTIC_LOGGING_LEVEL", "shouty"},
		{"bad bool", "EXOTIC_PROBE_ORACLE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to load config")

			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestVMConfig(t *testing.T) {
	cfg := Default()
	cfg.Engine.MaxCallDepth = 7
	logger := zap.NewNop()
	var seen []vm.Trap
	obs := vm.TrapObserverFunc(func(trap vm.Trap, _ vm.Outcome) { seen = append(seen, trap) })

	vc := cfg.VMConfig(logger, obs)
	assert.Equal(t, 7, vc.MaxCallDepth)
	assert.Same(t, logger, vc.Logger)
	vc.Observer.TrapDispatched(vm.TrapGet, vm.OutcomeForwarded)
	assert.Equal(t, []vm.Trap{vm.TrapGet}, seen)
}
