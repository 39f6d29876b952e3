package nginx

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	// SitesAvailable is where site files are written.
	SitesAvailable = "/etc/nginx/sites-available"
	// SitesEnabled is where active sites are symlinked.
	SitesEnabled = "/etc/nginx/sites-enabled"
)

// SiteConfig describes one reverse-proxied application.
type SiteConfig struct {
	Project    string
	ServerName string
	Port       int
}

// Generator renders nginx site files.
type Generator struct{}

// NewGenerator creates an nginx site file generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Render produces the site file routing plaintext port 80 to the
// application's loopback port, forwarding the standard proxy headers.
func (g *Generator) Render(site SiteConfig) (string, error) {
	tmpl := `# {{ .Project }} - managed by shipway
server {
    listen 80;
    server_name {{ .ServerName }};

    location / {
        proxy_pass http://127.0.0.1:{{ .Port }};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}
`

	t, err := template.New("site").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, site); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// SitePath returns the sites-available path for a project.
func SitePath(project string) string {
	return SitesAvailable + "/" + project
}

// EnabledPath returns the sites-enabled path for a project.
func EnabledPath(project string) string {
	return SitesEnabled + "/" + project
}

// ActivationStep is one remote action of the site activation sequence.
type ActivationStep struct {
	Description string
	Command     string
}

// ActivationSteps returns the remote commands that enable a written
// site file: symlink it into sites-enabled (replacing any previous
// link), validate the full nginx configuration, then reload. The
// validate step runs before reload so a broken site file never
// reaches the live proxy.
func ActivationSteps(project string) []ActivationStep {
	return []ActivationStep{
		{
			Description: "Enabling site",
			Command:     fmt.Sprintf("sudo ln -sfn %s %s", SitePath(project), EnabledPath(project)),
		},
		{
			Description: "Validating nginx configuration",
			Command:     "sudo nginx -t",
		},
		{
			Description: "Reloading nginx",
			Command:     "sudo systemctl reload nginx",
		},
	}
}

// RemoveCommand returns the single teardown command dropping the site
// from both locations and reloading the proxy. Removal failures are
// tolerated; the reload still runs.
func RemoveCommand(project string) string {
	return fmt.Sprintf("sudo rm -f %s %s && sudo systemctl reload nginx",
		SitePath(project), EnabledPath(project))
}
