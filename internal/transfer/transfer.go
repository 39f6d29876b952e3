package transfer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shipway/shipway/internal/security"
)

// StagePath returns a unique remote staging path for the project
// archive. The random suffix keeps concurrent or aborted runs from
// clobbering each other's upload.
func StagePath(project string) string {
	return fmt.Sprintf("/tmp/%s-%s.tar.gz", project, uuid.NewString())
}

// UnpackStep is one remote action of the unpack sequence.
type UnpackStep struct {
	Description string
	Command     string
}

// UnpackSteps returns the remote commands that turn a staged archive
// into the deployment directory: create it, extract into it, hand
// ownership to the operator, drop the staged archive. Each runs as a
// separate remote call so a failure is attributable.
func UnpackSteps(stagePath, deployDir, user string) []UnpackStep {
	dir := security.ShellEscape(deployDir)
	stage := security.ShellEscape(stagePath)
	return []UnpackStep{
		{
			Description: "Creating deployment directory",
			Command:     fmt.Sprintf("sudo mkdir -p %s", dir),
		},
		{
			Description: "Extracting project files",
			Command:     fmt.Sprintf("sudo tar -xzf %s -C %s", stage, dir),
		},
		{
			Description: "Fixing ownership",
			Command:     fmt.Sprintf("sudo chown -R %s:%s %s", user, user, dir),
		},
		{
			Description: "Removing staged archive",
			Command:     fmt.Sprintf("rm -f %s", stage),
		},
	}
}
