package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"exotic/pkg/logging"
	"exotic/pkg/vm"
)

// Prefix is prepended to every environment key, e.g. EXOTIC_ENGINE_MAX_CALL_DEPTH.
const Prefix = "EXOTIC"

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig
	Logging LogConfig
	Probe   ProbeConfig
}

// EngineConfig holds VM limits.
type EngineConfig struct {
	MaxCallDepth int `envconfig:"MAX_CALL_DEPTH" default:"512"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LEVEL" default:"info"`
	Development bool   `envconfig:"DEV" default:"false"`
}

// ProbeConfig holds defaults for the scenario runner.
type ProbeConfig struct {
	Oracle      bool   `envconfig:"ORACLE" default:"false"`
	ScenarioDir string `envconfig:"SCENARIO_DIR" default:"testdata/scenarios"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Engine.MaxCallDepth <= 0 {
		return nil, fmt.Errorf("failed to load config: %s_ENGINE_MAX_CALL_DEPTH must be positive, got %d", Prefix, cfg.Engine.MaxCallDepth)
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxCallDepth: vm.DefaultMaxCallDepth,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Probe: ProbeConfig{
			ScenarioDir: "testdata/scenarios",
		},
	}
}

// LoggerConfig maps the logging section onto logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Development = c.Logging.Development
	return lc
}

// VMConfig builds the VM settings for one runtime.
func (c *Config) VMConfig(logger *zap.Logger, observer vm.TrapObserver) vm.Config {
	return vm.Config{
		MaxCallDepth: c.Engine.MaxCallDepth,
		Logger:       logger,
		Observer:     observer,
	}
}
