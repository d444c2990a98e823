// Package config loads routing configuration from YAML. The file is optional
// wiring sugar: everything it carries can also be set programmatically via
// orchestrator and invoker options.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level routing configuration.
type Config struct {
	Router    RouterConfig              `yaml:"router"`
	Model     ModelConfig               `yaml:"model"`
	Delegates map[string]DelegateConfig `yaml:"delegates"`
}

// RouterConfig governs the routing cycle.
type RouterConfig struct {
	MaxIterations       int           `yaml:"maxIterations"`
	MaxConcurrentCycles int           `yaml:"maxConcurrentCycles"`
	ModelCallTimeout    time.Duration `yaml:"modelCallTimeout"`
	Instructions        string        `yaml:"instructions"`
	SessionIdleTimeout  time.Duration `yaml:"sessionIdleTimeout"`
	ModelCallsPerSecond float64       `yaml:"modelCallsPerSecond"`
}

// ModelConfig selects and tunes the reasoning model provider.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "anthropic"
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"maxTokens"`
}

// DelegateConfig is the per-delegate tuning block. The delegate's binding is
// always registered in code; this block only adjusts its runtime envelope.
type DelegateConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Idempotent  bool          `yaml:"idempotent"`
	Breaker     bool          `yaml:"breaker"`
	MaxFailures uint32        `yaml:"maxFailures"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Router: RouterConfig{
			MaxIterations:       6,
			MaxConcurrentCycles: 10,
			ModelCallTimeout:    60 * time.Second,
		},
		Model: ModelConfig{
			Provider:    "openai",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Delegates: map[string]DelegateConfig{},
	}
}

// Load reads a YAML file into a Config, layering it over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Delegates == nil {
		cfg.Delegates = map[string]DelegateConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate ensures the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Router.MaxIterations < 1 {
		return errors.New("router.maxIterations must be positive")
	}
	if c.Router.MaxConcurrentCycles < 1 {
		return errors.New("router.maxConcurrentCycles must be positive")
	}
	if c.Router.ModelCallTimeout <= 0 {
		return errors.New("router.modelCallTimeout must be positive")
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "stub":
	default:
		return fmt.Errorf("model.provider %q is not supported", c.Model.Provider)
	}
	for name, d := range c.Delegates {
		if name == "" {
			return errors.New("delegate name cannot be empty")
		}
		if d.Timeout < 0 {
			return fmt.Errorf("delegate %s timeout cannot be negative", name)
		}
	}
	return nil
}
