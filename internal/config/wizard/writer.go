package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/craftd/craftd/internal/config"
)

// envTemplate is the .env scaffold written next to the config. It only
// names the secrets; values stay empty for the operator to fill in.
const envTemplate = `# craftd secrets. Keep this file out of version control.
# Loaded at startup by craftd run; every key can also come from the
# real environment instead.
DISCORD_TOKEN=
`

// envBackupTemplate extends the scaffold when S3 backups are enabled.
const envBackupTemplate = `S3_ACCESS_KEY=
S3_SECRET_KEY=
`

// WriteConfig writes the config to a YAML file with a descriptive
// header. Secrets carry a yaml:"-" tag and never appear in the output;
// they belong in the environment or the .env scaffold.
func WriteConfig(cfg *config.Config, outputPath string) error {
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// WriteEnvTemplate writes the .env scaffold. It refuses to touch an
// existing file since that file may already hold real secrets.
func WriteEnvTemplate(path string, withBackup bool) error {
	if FileExists(path) {
		return fmt.Errorf("refusing to overwrite existing %s", path)
	}

	content := envTemplate
	if withBackup {
		content += envBackupTemplate
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string) string {
	return fmt.Sprintf(`# craftd configuration
# Generated by: craftd init
# Generated at: %s
#
# Required environment variable:
#   DISCORD_TOKEN - Your Discord bot token
# With backups enabled additionally:
#   S3_ACCESS_KEY / S3_SECRET_KEY - Credentials for the snapshot bucket
#
# Usage:
#   export DISCORD_TOKEN=<your-token>
#   craftd run -c %s
`, time.Now().Format(time.RFC3339), outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
