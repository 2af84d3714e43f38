package commands

import (
	"github.com/spf13/cobra"

	"github.com/craftd/craftd/cmd/craftd/handlers"
)

// Doctor returns the command for diagnosing the deployment.
//
// This command validates configuration and probes the SSH and object
// storage endpoints with ASCII table output and emoji indicators.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect craftd.yaml)
//	--json: Output in JSON format
func Doctor() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long: `Diagnose the craftd configuration and its environment.

Checks performed:
  - Configuration file parses and validates
  - DISCORD_TOKEN is set and the owner ID is numeric
  - SSH key exists and parses, known_hosts is present
  - The Minecraft host answers over SSH
  - Remote scripts and logs directories exist
  - Data directory is writable and the help thumbnail is present
  - Snapshot bucket is reachable (with backups enabled)

Examples:
  # Diagnose the deployment
  craftd doctor

  # Get the report in JSON format
  craftd doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: craftd.yaml)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
