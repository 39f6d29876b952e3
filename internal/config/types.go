package config

import (
	"path"
	"strings"
)

// DefaultBranch is the branch deployed when the operator leaves the
// branch prompt empty.
const DefaultBranch = "main"

// DeployConfig holds every parameter for a single deployment run.
// It is built once by the input collector, validated, and then passed
// by reference into each stage. The Token is held in memory only: it
// is never written to shipway.yaml and never printed.
type DeployConfig struct {
	RepoURL string `yaml:"repo_url"`
	Token   string `yaml:"-"`
	Branch  string `yaml:"branch"`
	User    string `yaml:"ssh_user"`
	Host    string `yaml:"ssh_host"`
	KeyPath string `yaml:"ssh_key"`
	Port    int    `yaml:"app_port"`
}

// Project derives the project name from the repository URL basename,
// stripping a trailing ".git". The name is reused as the working-copy
// directory, the remote deployment directory, the container name, and
// the nginx site identifier.
func (c *DeployConfig) Project() string {
	base := path.Base(strings.TrimSuffix(strings.TrimSuffix(c.RepoURL, "/"), ".git"))
	return strings.ToLower(base)
}

// DeployDir returns the fixed remote deployment directory for the project.
func (c *DeployConfig) DeployDir() string {
	return "/opt/" + c.Project()
}

// NewDeployConfig returns a config with defaults applied.
func NewDeployConfig() *DeployConfig {
	return &DeployConfig{
		Branch: DefaultBranch,
	}
}
