package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor identifies which build definitions a working copy
// contains. Detection runs once; the deploy stage branches on the
// result instead of probing the filesystem again.
type Descriptor int

const (
	// None means no buildable definition was found. Fatal.
	None Descriptor = iota
	// Dockerfile means a single-container build.
	Dockerfile
	// Compose means a multi-container compose stack.
	Compose
	// Both means the working copy carries Dockerfile and compose
	// definitions; compose wins at deploy time.
	Both
)

func (d Descriptor) String() string {
	switch d {
	case Dockerfile:
		return "Dockerfile"
	case Compose:
		return "compose"
	case Both:
		return "Dockerfile+compose"
	default:
		return "none"
	}
}

// HasCompose reports whether the compose deploy path applies.
func (d Descriptor) HasCompose() bool {
	return d == Compose || d == Both
}

// HasDockerfile reports whether a single-container build is available.
func (d Descriptor) HasDockerfile() bool {
	return d == Dockerfile || d == Both
}

// composeNames are the compose file names recognized, in the order
// docker compose itself probes them.
var composeNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// Detect inspects the working copy for build descriptors.
func Detect(dir string) (Descriptor, error) {
	if _, err := os.Stat(dir); err != nil {
		return None, fmt.Errorf("working copy not readable: %w", err)
	}

	hasDockerfile := fileExists(filepath.Join(dir, "Dockerfile"))
	hasCompose := false
	for _, name := range composeNames {
		if fileExists(filepath.Join(dir, name)) {
			hasCompose = true
			break
		}
	}

	switch {
	case hasDockerfile && hasCompose:
		return Both, nil
	case hasCompose:
		return Compose, nil
	case hasDockerfile:
		return Dockerfile, nil
	default:
		return None, nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
