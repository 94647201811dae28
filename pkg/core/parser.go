package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigFromFile reads, expands and validates a configuration file.
func LoadConfigFromFile(path string) (*Config, VarContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg, vars, err := ParseConfig(data, os.LookupEnv)
	if err != nil {
		return nil, vars, fmt.Errorf("loading config %q: %w", path, err)
	}
	return cfg, vars, nil
}

// ParseConfig substitutes environment placeholders in data, then decodes and validates it.
func ParseConfig(data []byte, lookup func(string) (string, bool)) (*Config, VarContext, error) {
	expanded, vars := ExpandEnv(string(data), lookup)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, vars, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg.normalizeNames()

	if err := ValidateConfigStructure(&cfg); err != nil {
		return nil, vars, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, vars, nil
}
