// Package commands defines all Cobra CLI commands for the doctorai binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/caresense/doctorai/internal/audit"
	"github.com/caresense/doctorai/internal/config"
	"github.com/caresense/doctorai/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "doctorai",
		Short: "Doctor AI — a retrieval-augmented medical assistant by CareSense",
		Long: `Doctor AI is a medical chatbot that answers questions about diseases and
health conditions, grounded in an ingested corpus of medical reference
documents and any PDF the user uploads during a conversation.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.doctorai/config.yaml).
See 'doctorai --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Load .env from the working directory when present. Real env
			// vars always win over .env values.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.doctorai/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
