package commands

import (
	"github.com/spf13/cobra"

	"github.com/craftd/craftd/cmd/craftd/handlers"
)

// Run returns the command that starts the bot.
//
// This command loads configuration, connects to the Minecraft host over
// SSH and to the Discord gateway, then serves commands until it receives
// SIGINT or SIGTERM.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect craftd.yaml)
//
// Environment variables:
//
//	DISCORD_TOKEN: Discord bot token (required)
//	S3_ACCESS_KEY / S3_SECRET_KEY: Object storage credentials (with backups enabled)
func Run() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long: `Start the bot and serve Discord commands.

This command connects to the Discord gateway and to the Minecraft host
over SSH, schedules the daily playtime refresh, and blocks until the
process receives SIGINT or SIGTERM.

If no config file is specified, it looks for craftd.yaml in the current
directory. Use 'craftd init' to create a configuration file. Every
setting can also come from the environment; a .env file next to the
binary is loaded first.

Examples:
  # Start using craftd.yaml in the current directory
  craftd run

  # Start using a specific config file
  craftd run -c /etc/craftd/craftd.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Run(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: craftd.yaml)")

	return cmd
}
