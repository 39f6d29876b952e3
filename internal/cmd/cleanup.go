package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shipway/shipway/internal/config"
	"github.com/shipway/shipway/internal/logging"
	"github.com/shipway/shipway/internal/pipeline"
	"github.com/shipway/shipway/internal/ssh"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove the deployment from the server",
	Long: `Cleanup stops the application, deletes the remote deployment
directory and the nginx site, and reloads nginx. The local working
copy is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCleanup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command) error {
	cfg, err := gatherConfig()
	if err != nil {
		return err
	}
	// Teardown needs no git token and no port.
	if err := config.ValidateConnection(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.Open(".")
	if err != nil {
		return err
	}
	defer log.Close()
	log.AddSecret(cfg.Token)

	log.Info("Removing deployment of %s from %s", cfg.Project(), cfg.Host)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ssh.NewClient(cfg.Host, cfg.User, 22, cfg.KeyPath)
	if err := client.Connect(); err != nil {
		log.Error("SSH connection failed: %v", err)
		return err
	}
	defer client.Close()

	p, err := pipeline.New(client, client, cfg, log)
	if err != nil {
		return err
	}
	p.SetVerbose(flagVerbose)

	if err := p.Cleanup(ctx); err != nil {
		return err
	}

	log.Success("Deployment removed")
	return nil
}
