package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the default saved-answers filename. It pre-fills the
// interactive prompts on later runs. The git token is excluded from
// serialization and must always come from the prompt or environment.
const ConfigFile = "shipway.yaml"

// LoadFile reads a saved deployment configuration. A missing file is
// not an error: it returns an empty config with defaults applied.
func LoadFile(path string) (*DeployConfig, error) {
	if path == "" {
		path = ConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDeployConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewDeployConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}

	return cfg, nil
}

// SaveFile writes the configuration for future runs. Mode 0600: the
// file holds server coordinates. The token field is never serialized.
func SaveFile(cfg *DeployConfig, path string) error {
	if path == "" {
		path = ConfigFile
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
