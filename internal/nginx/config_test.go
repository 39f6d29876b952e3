package nginx

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	g := NewGenerator()
	content, err := g.Render(SiteConfig{
		Project:    "shop",
		ServerName: "203.0.113.10",
		Port:       8080,
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	wantParts := []string{
		"listen 80;",
		"server_name 203.0.113.10;",
		"proxy_pass http://127.0.0.1:8080;",
		"proxy_set_header Host $host;",
		"proxy_set_header X-Real-IP $remote_addr;",
		"proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;",
		"proxy_set_header X-Forwarded-Proto $scheme;",
	}
	for _, part := range wantParts {
		if !strings.Contains(content, part) {
			t.Errorf("site file missing %q:\n%s", part, content)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	// Rerunning the configurator must rewrite an identical site file.
	g := NewGenerator()
	site := SiteConfig{Project: "shop", ServerName: "203.0.113.10", Port: 8080}

	first, err := g.Render(site)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Render(site)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical input must render identical site files")
	}
}

func TestActivationSteps_ValidateBeforeReload(t *testing.T) {
	steps := ActivationSteps("shop")

	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if !strings.Contains(steps[0].Command, "ln -sfn /etc/nginx/sites-available/shop /etc/nginx/sites-enabled/shop") {
		t.Errorf("unexpected symlink command: %s", steps[0].Command)
	}
	if !strings.Contains(steps[1].Command, "nginx -t") {
		t.Errorf("validation must precede reload, got: %s", steps[1].Command)
	}
	if !strings.Contains(steps[2].Command, "systemctl reload nginx") {
		t.Errorf("unexpected reload command: %s", steps[2].Command)
	}
}

func TestRemoveCommand(t *testing.T) {
	cmd := RemoveCommand("shop")
	for _, part := range []string{
		"/etc/nginx/sites-available/shop",
		"/etc/nginx/sites-enabled/shop",
		"systemctl reload nginx",
	} {
		if !strings.Contains(cmd, part) {
			t.Errorf("remove command missing %q: %s", part, cmd)
		}
	}
}
