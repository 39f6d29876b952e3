package cmd

import (
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagCleanup     bool
	flagVerbose     bool
	flagKeepArchive bool
	flagSaveConfig  bool
)

var rootCmd = &cobra.Command{
	Use:     "shipway",
	Version: version,
	Short:   "Deploy a containerized web application to a remote server over SSH",
	Long: `Shipway deploys a git-hosted web application to a single remote host.

It clones or updates the repository locally, provisions Docker and
nginx on the server over SSH, ships the project as a tar archive,
builds and starts the application (via Dockerfile or compose file),
and exposes it through an nginx reverse proxy.

Configuration is collected interactively, pre-filled from shipway.yaml
and SHIPWAY_* environment variables. The git token is read from the
prompt or SHIPWAY_GIT_TOKEN only and is never written to disk.`,
	// Unrecognized positional arguments fall through to a full deploy.
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagCleanup {
			return runCleanup(cmd)
		}
		return runDeploy(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "echo every remote command")
	rootCmd.Flags().BoolVar(&flagCleanup, "cleanup", false, "remove the deployment from the server instead of deploying")
	rootCmd.Flags().BoolVar(&flagKeepArchive, "keep-archive", false, "keep the local project archive after a successful transfer")
	rootCmd.Flags().BoolVar(&flagSaveConfig, "save-config", false, "save the collected answers to shipway.yaml (token excluded)")
}
