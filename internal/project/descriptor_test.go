package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Descriptor
	}{
		{"empty working copy", nil, None},
		{"dockerfile only", []string{"Dockerfile"}, Dockerfile},
		{"compose yml only", []string{"docker-compose.yml"}, Compose},
		{"compose yaml only", []string{"docker-compose.yaml"}, Compose},
		{"short compose name", []string{"compose.yaml"}, Compose},
		{"both", []string{"Dockerfile", "docker-compose.yml"}, Both},
		{"unrelated files", []string{"main.go", "README.md"}, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)

			got, err := Detect(dir)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_DirectoryNamedDockerfile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "Dockerfile"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if got != None {
		t.Errorf("a directory is not a build descriptor, got %v", got)
	}
}

func TestDetect_MissingDir(t *testing.T) {
	if _, err := Detect(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestDescriptorPaths(t *testing.T) {
	if !Both.HasCompose() || !Both.HasDockerfile() {
		t.Error("Both must enable both paths")
	}
	if Compose.HasDockerfile() {
		t.Error("Compose must not enable the Dockerfile path")
	}
	if Dockerfile.HasCompose() {
		t.Error("Dockerfile must not enable the compose path")
	}
	if None.HasCompose() || None.HasDockerfile() {
		t.Error("None must enable nothing")
	}
}
