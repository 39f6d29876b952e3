package provision

import (
	"strings"
	"testing"
)

func TestSteps_Order(t *testing.T) {
	steps := Steps("deploy")

	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(steps))
	}

	// Services must be enabled last, after every install.
	last := steps[len(steps)-1]
	if !strings.Contains(last.Command, "systemctl enable --now") {
		t.Errorf("service enablement must be the final step, got: %s", last.Command)
	}
	if !strings.Contains(steps[0].Command, "apt-get update") {
		t.Errorf("package index refresh must run first, got: %s", steps[0].Command)
	}
}

func TestSteps_Idempotent(t *testing.T) {
	// Install steps guard on presence so reruns skip the work.
	steps := Steps("deploy")

	guards := map[string]string{
		"Installing Docker":                "command -v docker",
		"Installing Docker Compose plugin": "docker compose version",
		"Installing nginx":                 "command -v nginx",
		"Adding user to docker group":      "id -nG deploy | grep -qw docker",
	}

	for desc, guard := range guards {
		found := false
		for _, s := range steps {
			if s.Description == desc {
				found = true
				if !strings.Contains(s.Command, guard) {
					t.Errorf("step %q missing idempotency guard %q: %s", desc, guard, s.Command)
				}
			}
		}
		if !found {
			t.Errorf("missing step %q", desc)
		}
	}
}

func TestSteps_UserInterpolation(t *testing.T) {
	steps := Steps("alice")
	var groupStep Step
	for _, s := range steps {
		if s.Description == "Adding user to docker group" {
			groupStep = s
		}
	}
	if !strings.Contains(groupStep.Command, "usermod -aG docker alice") {
		t.Errorf("expected user in group command, got: %s", groupStep.Command)
	}
}

func TestSteps_EveryStepLabeled(t *testing.T) {
	for i, s := range Steps("deploy") {
		if s.Description == "" {
			t.Errorf("step %d has no progress label", i)
		}
		if s.Command == "" {
			t.Errorf("step %d has no command", i)
		}
	}
}
