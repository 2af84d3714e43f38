package commands

import (
	"github.com/spf13/cobra"

	"github.com/craftd/craftd/cmd/craftd/handlers"
	"github.com/craftd/craftd/internal/config"
)

// Init returns the command for interactively creating a configuration.
//
// This command guides users through creating a craftd.yaml using an
// interactive wizard, writes a .env scaffold for the secrets, and can
// generate an SSH deploy key for the Minecraft host.
//
// Flags:
//
//	--output, -o: Path to output file (default "craftd.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a configuration",
		Long: `Interactively create a configuration file.

This command walks you through configuring the bot step by step. It
will ask about:

  - SSH connection to the Minecraft host (host, port, user)
  - Key material (private key and known_hosts paths, optional key generation)
  - Remote directory layout (scripts and logs)
  - Discord owner ID and command prefix
  - Daily playtime refresh schedule
  - Optional S3 snapshot target

Secrets never land in the YAML file. The wizard writes a .env scaffold
next to the config naming the DISCORD_TOKEN (and S3 credentials when
backups are enabled) for you to fill in.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultPath, "Output file path")

	return cmd
}
