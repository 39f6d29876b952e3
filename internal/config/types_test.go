package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/shop.git", "shop"},
		{"https://github.com/acme/shop", "shop"},
		{"https://github.com/acme/Shop.git", "shop"},
		{"https://gitlab.example.com/team/sub/api-server.git", "api-server"},
		{"https://github.com/acme/shop.git/", "shop"},
	}

	for _, tt := range tests {
		cfg := &DeployConfig{RepoURL: tt.url}
		if got := cfg.Project(); got != tt.want {
			t.Errorf("Project(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDeployDir(t *testing.T) {
	cfg := &DeployConfig{RepoURL: "https://github.com/acme/shop.git"}
	if got := cfg.DeployDir(); got != "/opt/shop" {
		t.Errorf("DeployDir() = %q, want /opt/shop", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "shipway.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Branch != DefaultBranch {
		t.Errorf("expected default branch %q, got %q", DefaultBranch, cfg.Branch)
	}
}

func TestSaveFile_NeverWritesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipway.yaml")
	cfg := &DeployConfig{
		RepoURL: "https://github.com/acme/shop.git",
		Token:   "ghp_supersecret",
		Branch:  "main",
		User:    "deploy",
		Host:    "203.0.113.10",
		KeyPath: "/home/op/.ssh/id_ed25519",
		Port:    8080,
	}

	if err := SaveFile(cfg, path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if strings.Contains(string(data), "ghp_supersecret") {
		t.Fatal("token leaked into saved config file")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.RepoURL != cfg.RepoURL || loaded.Port != cfg.Port || loaded.Host != cfg.Host {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.Token != "" {
		t.Errorf("token should not survive a round trip, got %q", loaded.Token)
	}
}
