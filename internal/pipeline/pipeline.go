package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipway/shipway/internal/config"
	"github.com/shipway/shipway/internal/logging"
	"github.com/shipway/shipway/internal/nginx"
	"github.com/shipway/shipway/internal/project"
	"github.com/shipway/shipway/internal/provision"
	"github.com/shipway/shipway/internal/security"
	"github.com/shipway/shipway/internal/ssh"
	"github.com/shipway/shipway/internal/transfer"
)

// Uploader is the file-shipping half of the SSH client, split out so
// tests can fake it alongside the Executor.
type Uploader interface {
	UploadFile(ctx context.Context, localPath, remotePath string) error
	UploadContent(ctx context.Context, content, remotePath string, sudo bool) error
}

// Pipeline drives the deployment stages against one remote host.
// Stages run strictly in sequence; the first failed remote command
// aborts the run. Every remote mutation funnels through run, which
// logs the step and maps the remote exit code.
type Pipeline struct {
	exec     ssh.Executor
	uploader Uploader
	cfg      *config.DeployConfig
	log      *logging.RunLog

	desc        project.Descriptor
	workDir     string
	keepArchive bool
	verbose     bool

	containerStarted bool
}

// New creates a pipeline over an established SSH connection.
func New(exec ssh.Executor, uploader Uploader, cfg *config.DeployConfig, log *logging.RunLog) (*Pipeline, error) {
	// Project name and user are interpolated into remote commands.
	if err := security.ValidateProjectName(cfg.Project()); err != nil {
		return nil, fmt.Errorf("invalid project name: %w", err)
	}
	if err := security.ValidateUnixUser(cfg.User); err != nil {
		return nil, fmt.Errorf("invalid SSH user: %w", err)
	}
	return &Pipeline{
		exec:     exec,
		uploader: uploader,
		cfg:      cfg,
		log:      log,
	}, nil
}

// SetDescriptor supplies the build-descriptor detection result. The
// deploy stage branches on it without re-probing the working copy.
func (p *Pipeline) SetDescriptor(d project.Descriptor) {
	p.desc = d
}

// SetWorkDir sets the local working-copy path for the transfer stage.
func (p *Pipeline) SetWorkDir(dir string) {
	p.workDir = dir
}

// SetKeepArchive preserves the local archive after a successful
// transfer. On a failed transfer it is always preserved.
func (p *Pipeline) SetKeepArchive(keep bool) {
	p.keepArchive = keep
}

// SetVerbose echoes every remote command before it runs.
func (p *Pipeline) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// run executes one remote command. Zero exit logs success and returns
// control; anything else logs the failure and returns an error that
// terminates the run. This is the single synchronization point for
// every remote side effect.
func (p *Pipeline) run(ctx context.Context, description, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.log.Info("%s...", description)
	if p.verbose {
		p.log.Info("  > %s", command)
	}

	result, err := p.exec.Exec(ctx, command)
	if err != nil {
		p.log.Error("%s failed: %v", description, err)
		return fmt.Errorf("%s: %w", description, err)
	}
	if result.ExitCode != 0 {
		stderr := strings.TrimSpace(result.Stderr)
		p.log.Error("%s failed (exit %d): %s", description, result.ExitCode, stderr)
		return fmt.Errorf("%s: exit %d: %s", description, result.ExitCode, stderr)
	}

	p.log.Success("%s", description)
	return nil
}

// Run executes the full deployment sequence.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Provision(ctx); err != nil {
		return err
	}
	if err := p.Transfer(ctx); err != nil {
		return err
	}
	if err := p.Deploy(ctx); err != nil {
		return err
	}
	if err := p.ConfigureProxy(ctx); err != nil {
		return err
	}
	return p.Validate(ctx)
}

// Provision prepares the remote host: container runtime, compose
// plugin, reverse proxy, group membership, services. Every step is
// idempotent, so reruns against a provisioned host are no-ops.
func (p *Pipeline) Provision(ctx context.Context) error {
	for _, step := range provision.Steps(p.cfg.User) {
		if err := p.run(ctx, step.Description, step.Command); err != nil {
			return err
		}
	}
	return nil
}

// Transfer archives the working copy, ships it to the staging path,
// and unpacks it into the deployment directory. The local archive is
// removed on success (unless keep-archive is set) and preserved on
// remote failure for debugging.
func (p *Pipeline) Transfer(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stagePath := transfer.StagePath(p.cfg.Project())
	localPath := filepath.Join(os.TempDir(), filepath.Base(stagePath))

	p.log.Info("Archiving project files...")
	if err := transfer.BuildArchive(p.workDir, localPath); err != nil {
		p.log.Error("Archiving failed: %v", err)
		return err
	}
	p.log.Success("Archived %s", p.workDir)

	p.log.Info("Uploading archive to %s...", p.cfg.Host)
	if err := p.uploader.UploadFile(ctx, localPath, stagePath); err != nil {
		p.log.Error("Upload failed: %v", err)
		return fmt.Errorf("failed to upload archive: %w", err)
	}
	p.log.Success("Archive uploaded")

	for _, step := range transfer.UnpackSteps(stagePath, p.cfg.DeployDir(), p.cfg.User) {
		if err := p.run(ctx, step.Description, step.Command); err != nil {
			p.log.Warning("Local archive kept at %s", localPath)
			return err
		}
	}

	if p.keepArchive {
		p.log.Info("Local archive kept at %s", localPath)
		return nil
	}
	if err := os.Remove(localPath); err != nil {
		p.log.Warning("Could not remove local archive %s: %v", localPath, err)
	}
	return nil
}

// Deploy builds and (re)starts the application, tearing down any
// previous instance first. Compose wins when both descriptors exist.
func (p *Pipeline) Deploy(ctx context.Context) error {
	dir := p.cfg.DeployDir()
	name := p.cfg.Project()

	if p.desc.HasCompose() {
		if err := p.run(ctx, "Stopping previous compose stack",
			fmt.Sprintf("cd %s && docker compose down --remove-orphans 2>/dev/null || true", dir)); err != nil {
			return err
		}
		if err := p.run(ctx, "Building and starting compose stack",
			fmt.Sprintf("cd %s && docker compose up -d --build", dir)); err != nil {
			return err
		}
		p.containerStarted = true
	} else {
		if err := p.run(ctx, "Stopping previous container",
			fmt.Sprintf("docker stop %s 2>/dev/null || true && docker rm %s 2>/dev/null || true", name, name)); err != nil {
			return err
		}
		if err := p.run(ctx, "Building image",
			fmt.Sprintf("cd %s && docker build -t %s:latest .", dir, name)); err != nil {
			return err
		}
		// Bind on loopback only: the reverse proxy is the sole public entry.
		if err := p.run(ctx, "Starting container",
			fmt.Sprintf("docker run -d --name %s --restart unless-stopped -p 127.0.0.1:%d:%d %s:latest",
				name, p.cfg.Port, p.cfg.Port, name)); err != nil {
			return err
		}
		p.containerStarted = true
	}

	p.log.Info("Waiting for application to come up...")
	waiter := NewWaiter(p.exec, p.statusCommand())
	if err := waiter.Wait(ctx); err != nil {
		p.log.Error("Application did not come up: %v", err)
		return err
	}
	p.log.Success("Application is up")

	// Status snapshot for the run log, regardless of outcome details.
	result, err := p.exec.Exec(ctx, fmt.Sprintf("docker ps --filter name=%s --format '{{.Names}}: {{.Status}}'", name))
	if err == nil && strings.TrimSpace(result.Stdout) != "" {
		p.log.Info("Container status: %s", strings.TrimSpace(result.Stdout))
	}

	return nil
}

// statusCommand returns the remote command that exits zero once the
// deployed workload reports running.
func (p *Pipeline) statusCommand() string {
	if p.desc.HasCompose() {
		return fmt.Sprintf(`cd %s && test -n "$(docker compose ps -q --status running)"`, p.cfg.DeployDir())
	}
	return fmt.Sprintf("docker ps --filter name=%s --format '{{.Status}}' | grep -q Up", p.cfg.Project())
}

// ConfigureProxy writes and activates the nginx site routing port 80
// to the application's loopback port. The site file is validated
// before nginx reloads, so a bad write cannot take the proxy down.
func (p *Pipeline) ConfigureProxy(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gen := nginx.NewGenerator()
	content, err := gen.Render(nginx.SiteConfig{
		Project:    p.cfg.Project(),
		ServerName: p.cfg.Host,
		Port:       p.cfg.Port,
	})
	if err != nil {
		return err
	}

	p.log.Info("Writing nginx site file...")
	if err := p.uploader.UploadContent(ctx, content, nginx.SitePath(p.cfg.Project()), true); err != nil {
		p.log.Error("Failed to write site file: %v", err)
		return fmt.Errorf("failed to write nginx site file: %w", err)
	}
	p.log.Success("Site file written")

	for _, step := range nginx.ActivationSteps(p.cfg.Project()) {
		if err := p.run(ctx, step.Description, step.Command); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs the post-deploy checks: workload status and proxy
// service are fatal; the HTTP probe is the one non-fatal check in the
// pipeline and downgrades to a warning.
func (p *Pipeline) Validate(ctx context.Context) error {
	if err := p.run(ctx, "Checking application status", p.statusCommand()); err != nil {
		return err
	}
	if err := p.run(ctx, "Checking nginx service", "systemctl is-active --quiet nginx"); err != nil {
		return err
	}

	p.log.Info("Probing HTTP endpoint...")
	probe := fmt.Sprintf(
		"curl -sf -o /dev/null http://127.0.0.1:%d/ || curl -sf -o /dev/null http://127.0.0.1:80/",
		p.cfg.Port)
	result, err := p.exec.Exec(ctx, probe)
	if err != nil || result.ExitCode != 0 {
		p.log.Warning("HTTP probe failed; the application may still be starting")
		return nil
	}
	p.log.Success("HTTP endpoint responded")
	return nil
}

// Cleanup is the inverse of transfer+deploy+proxy, collapsed into one
// remote call: stop whatever is running, delete the deployment
// directory and the proxy site, reload nginx. Stop/remove failures
// are tolerated; there may be nothing to stop.
func (p *Pipeline) Cleanup(ctx context.Context) error {
	dir := p.cfg.DeployDir()
	name := p.cfg.Project()

	cmd := strings.Join([]string{
		fmt.Sprintf("cd %s 2>/dev/null && docker compose down --remove-orphans 2>/dev/null", dir),
		fmt.Sprintf("docker stop %s 2>/dev/null", name),
		fmt.Sprintf("docker rm %s 2>/dev/null", name),
		fmt.Sprintf("sudo rm -rf %s", dir),
		nginx.RemoveCommand(name),
	}, "; ")

	return p.run(ctx, "Removing deployment", cmd)
}

// CompensateCancellation undoes the most recent visible side effect
// after an interrupt: a container started mid-run is stopped so the
// host is not left serving a half-deployed application. Runs on a
// fresh context because the run context is already canceled.
func (p *Pipeline) CompensateCancellation(ctx context.Context) {
	if !p.containerStarted {
		return
	}
	name := p.cfg.Project()
	if p.desc.HasCompose() {
		_, _ = p.exec.Exec(ctx, fmt.Sprintf("cd %s && docker compose down 2>/dev/null || true", p.cfg.DeployDir()))
		return
	}
	_, _ = p.exec.Exec(ctx, fmt.Sprintf("docker stop %s 2>/dev/null || true && docker rm %s 2>/dev/null || true", name, name))
}
