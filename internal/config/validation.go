package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError identifies the first unmet configuration condition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration in a fixed order and returns the
// first failure. The order matters: required fields first, then local
// file preconditions, then the port range. No network access happens
// here, so a rejected configuration has no side effects.
func Validate(cfg *DeployConfig) error {
	if strings.TrimSpace(cfg.RepoURL) == "" {
		return &ValidationError{"repo_url", "repository URL is required"}
	}
	if !strings.Contains(cfg.RepoURL, "://") {
		return &ValidationError{"repo_url", "repository URL must include a scheme (e.g. https://)"}
	}
	if cfg.Token == "" {
		return &ValidationError{"token", "git access token is required"}
	}
	if strings.TrimSpace(cfg.User) == "" {
		return &ValidationError{"ssh_user", "SSH username is required"}
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return &ValidationError{"ssh_host", "server address is required"}
	}
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return &ValidationError{"ssh_key", "SSH private key path is required"}
	}
	if _, err := os.Stat(cfg.KeyPath); err != nil {
		return &ValidationError{"ssh_key", fmt.Sprintf("key file not found: %s", cfg.KeyPath)}
	}
	if cfg.Port == 0 {
		return &ValidationError{"app_port", "application port is required"}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{"app_port", "port must be between 1 and 65535"}
	}
	return nil
}

// ValidateConnection checks only the fields needed to reach the host
// and name the deployment. Cleanup uses it: tearing a deployment down
// needs no git token and no application port.
func ValidateConnection(cfg *DeployConfig) error {
	if strings.TrimSpace(cfg.RepoURL) == "" {
		return &ValidationError{"repo_url", "repository URL is required"}
	}
	if strings.TrimSpace(cfg.User) == "" {
		return &ValidationError{"ssh_user", "SSH username is required"}
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return &ValidationError{"ssh_host", "server address is required"}
	}
	if strings.TrimSpace(cfg.KeyPath) == "" {
		return &ValidationError{"ssh_key", "SSH private key path is required"}
	}
	if _, err := os.Stat(cfg.KeyPath); err != nil {
		return &ValidationError{"ssh_key", fmt.Sprintf("key file not found: %s", cfg.KeyPath)}
	}
	return nil
}
