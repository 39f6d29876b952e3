package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shipway/shipway/internal/config"
	"github.com/shipway/shipway/internal/gitsync"
	"github.com/shipway/shipway/internal/logging"
	"github.com/shipway/shipway/internal/pipeline"
	"github.com/shipway/shipway/internal/project"
	"github.com/shipway/shipway/internal/ssh"
)

const defaultKeyPath = "~/.ssh/id_rsa"

func runDeploy(cmd *cobra.Command) error {
	cfg, err := gatherConfig()
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.Open(".")
	if err != nil {
		return err
	}
	defer log.Close()
	log.AddSecret(cfg.Token)

	log.Info("Deploying %s (branch %s) to %s@%s", cfg.Project(), cfg.Branch, cfg.User, cfg.Host)

	// A second interrupt kills the process outright.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workDir := cfg.Project()
	syncer := gitsync.New(cfg.RepoURL, cfg.Branch, cfg.Token)
	log.Info("Synchronizing repository into ./%s...", workDir)
	syncResult, err := syncer.Sync(ctx, workDir)
	if err != nil {
		log.Error("Repository sync failed: %v", err)
		return err
	}
	switch {
	case syncResult.Cloned:
		log.Success("Repository cloned at %s", syncResult.Revision)
	case syncResult.UpToDate:
		log.Success("Working copy already up to date at %s", syncResult.Revision)
	default:
		log.Success("Working copy updated to %s", syncResult.Revision)
	}

	desc, err := project.Detect(workDir)
	if err != nil {
		log.Error("Could not inspect project: %v", err)
		return err
	}
	if desc == project.None {
		log.Error("No Dockerfile or compose file found in %s", workDir)
		return fmt.Errorf("project %s has no buildable descriptor", cfg.Project())
	}
	log.Info("Detected build descriptor: %s", desc)

	client := ssh.NewClient(cfg.Host, cfg.User, 22, cfg.KeyPath)
	log.Info("Connecting to %s@%s...", cfg.User, cfg.Host)
	if err := client.Connect(); err != nil {
		log.Error("SSH connection failed: %v", err)
		return err
	}
	defer client.Close()
	log.Success("Connected")

	p, err := pipeline.New(client, client, cfg, log)
	if err != nil {
		return err
	}
	p.SetDescriptor(desc)
	p.SetWorkDir(workDir)
	p.SetKeepArchive(flagKeepArchive)
	p.SetVerbose(flagVerbose)

	if err := p.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warning("Interrupted, stopping containers started this run...")
			compCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			p.CompensateCancellation(compCtx)
		}
		return err
	}

	if flagSaveConfig {
		if err := config.SaveFile(cfg, ""); err != nil {
			log.Warning("Could not save configuration: %v", err)
		} else {
			log.Success("Configuration saved to %s", config.ConfigFile)
		}
	}

	log.Success("Deployment complete: http://%s/", cfg.Host)
	return nil
}

// gatherConfig builds the deployment configuration by precedence:
// shipway.yaml, then SHIPWAY_* environment variables (.env honored),
// then interactive prompts with the current values as defaults. The
// token never comes from the config file.
func gatherConfig() (*config.DeployConfig, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFile("")
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if !IsInteractive() {
		if cfg.KeyPath == "" {
			cfg.KeyPath = expandHome(defaultKeyPath)
		}
		return cfg, nil
	}

	p := NewPrompter()
	if cfg.RepoURL, err = p.Ask("Git repository URL", cfg.RepoURL); err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		if cfg.Token, err = p.AskSecret("Git access token"); err != nil {
			return nil, err
		}
	}
	if cfg.Branch, err = p.Ask("Branch", cfg.Branch); err != nil {
		return nil, err
	}
	if cfg.User, err = p.Ask("SSH username", cfg.User); err != nil {
		return nil, err
	}
	if cfg.Host, err = p.Ask("Server address", cfg.Host); err != nil {
		return nil, err
	}
	keyDefault := cfg.KeyPath
	if keyDefault == "" {
		keyDefault = defaultKeyPath
	}
	if cfg.KeyPath, err = p.Ask("SSH private key path", keyDefault); err != nil {
		return nil, err
	}
	cfg.KeyPath = expandHome(cfg.KeyPath)
	portDefault := cfg.Port
	if portDefault == 0 {
		portDefault = 3000
	}
	if cfg.Port, err = p.AskPort("Application port", portDefault); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays SHIPWAY_* environment variables onto the config.
func applyEnv(cfg *config.DeployConfig) {
	if v := os.Getenv("SHIPWAY_REPO_URL"); v != "" {
		cfg.RepoURL = v
	}
	if v := os.Getenv("SHIPWAY_GIT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("SHIPWAY_BRANCH"); v != "" {
		cfg.Branch = v
	}
	if v := os.Getenv("SHIPWAY_SSH_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("SHIPWAY_SSH_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("SHIPWAY_SSH_KEY"); v != "" {
		cfg.KeyPath = expandHome(v)
	}
	if v := os.Getenv("SHIPWAY_APP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}
