// Package commands defines all Cobra CLI commands for the aadis binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/srinivastls/AADIS/internal/audit"
	"github.com/srinivastls/AADIS/internal/config"
	"github.com/srinivastls/AADIS/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aadis",
		Short: "AADIS — question answering over ingested documents",
		Long: `AADIS answers natural language questions over documents processed by the
ingestion pipeline. Questions are classified and routed to specialised
agents: semantic text retrieval, table analysis, and image lookup. Answers
from several agents are synthesised into one response with cited sources.

The document store, similarity index, and embedding backend are configured
via environment variables or a YAML config file (~/.aadis/config.yaml).
See 'aadis --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
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

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.aadis/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
