package provision

import "fmt"

// Step is one provisioning action. Description is the user-visible
// progress label; Command is what runs on the remote host.
type Step struct {
	Description string
	Command     string
}

// Steps returns the ordered provisioning sequence for a Debian-family
// host. Each command is idempotent: it probes for the tool or group
// membership before acting, so reruns are cheap no-ops. Services are
// enabled only after every install step, so a failed install never
// leaves half-enabled services behind.
func Steps(user string) []Step {
	return []Step{
		{
			Description: "Refreshing package index",
			Command:     "sudo apt-get update -qq",
		},
		{
			Description: "Installing Docker",
			Command:     "command -v docker >/dev/null 2>&1 || (curl -fsSL https://get.docker.com | sudo sh)",
		},
		{
			Description: "Installing Docker Compose plugin",
			Command:     "docker compose version >/dev/null 2>&1 || sudo apt-get install -y -qq docker-compose-plugin",
		},
		{
			Description: "Installing nginx",
			Command:     "command -v nginx >/dev/null 2>&1 || sudo apt-get install -y -qq nginx",
		},
		{
			Description: "Adding user to docker group",
			Command:     fmt.Sprintf("id -nG %s | grep -qw docker || sudo usermod -aG docker %s", user, user),
		},
		{
			Description: "Enabling Docker and nginx services",
			Command:     "sudo systemctl enable --now docker nginx",
		},
	}
}
