package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/craftd/craftd/internal/config"
	"github.com/craftd/craftd/internal/config/wizard"
	"github.com/craftd/craftd/internal/util/keygen"
)

// deployKeyBits sizes generated RSA deploy keys.
const deployKeyBits = 4096

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = wizard.FileExists

	// runWizard runs the interactive setup.
	runWizard = wizard.Run

	// writeConfig writes the config to a file.
	writeConfig = wizard.WriteConfig

	// writeEnvTemplate writes the .env scaffold.
	writeEnvTemplate = wizard.WriteEnvTemplate

	// generateKeyPair generates the SSH deploy key.
	generateKeyPair = keygen.GenerateRSAKeyPair

	// writeKeyPair writes the deploy key to disk.
	writeKeyPair = keygen.WriteKeyPair
)

// Init runs the configuration wizard and writes the result to a file.
// Next to the config it scaffolds a .env for the secrets, and when the
// user asked for one it generates an SSH deploy key.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.BuildConfig()

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// The scaffold is skipped when a .env already exists; it may hold
	// real secrets.
	envPath := filepath.Join(filepath.Dir(outputPath), ".env")
	envWritten := false
	if !fileExists(envPath) {
		if err := writeEnvTemplate(envPath, result.EnableBackup); err != nil {
			return fmt.Errorf("failed to write env scaffold: %w", err)
		}
		envWritten = true
	}

	pubKeyPath := ""
	if result.GenerateKey {
		pubKeyPath, err = generateDeployKey(cfg.SSH.KeyPath)
		if err != nil {
			return err
		}
	}

	printInitSuccess(outputPath, envPath, envWritten, pubKeyPath, cfg)

	return nil
}

// generateDeployKey writes a fresh RSA key pair at keyPath and returns
// the path of the public half.
func generateDeployKey(keyPath string) (string, error) {
	kp, err := generateKeyPair(deployKeyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate deploy key: %w", err)
	}

	privPath, err := writeKeyPair(kp, filepath.Dir(keyPath), filepath.Base(keyPath))
	if err != nil {
		return "", fmt.Errorf("failed to write deploy key: %w", err)
	}

	return privPath + ".pub", nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	fmt.Println()
	fmt.Println(titleStyle.Render("  craftd - Minecraft server bot for Discord"))
	fmt.Println(dimStyle.Render("  " + strings.Repeat("=", 42)))
	fmt.Println()
	fmt.Println("  This wizard creates a configuration with sensible defaults.")
	fmt.Println("  Secrets stay in the environment; the YAML is safe to commit.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath, envPath string, envWritten bool, pubKeyPath string, cfg *config.Config) {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	if envWritten {
		fmt.Printf("  Env:  %s\n", envPath)
	}
	if pubKeyPath != "" {
		fmt.Printf("  Key:  %s\n", pubKeyPath)
	}
	fmt.Println()

	fmt.Println(sectionStyle.Render("Summary"))
	fmt.Println(dimStyle.Render(strings.Repeat("-", 35)))
	fmt.Printf("  Server:       %s@%s:%s\n", cfg.SSH.User, cfg.SSH.Host, cfg.SSH.Port)
	fmt.Printf("  Scripts:      %s\n", cfg.Minecraft.ScriptsPath)
	fmt.Printf("  Logs:         %s\n", cfg.Minecraft.LogsPath)
	fmt.Printf("  Prefix:       %s\n", cfg.Discord.Prefix)
	fmt.Printf("  Daily update: %s\n", cfg.Schedule.DailyUpdate)
	if cfg.Backup.Enabled {
		fmt.Printf("  Backups:      s3://%s (keep %d)\n", cfg.Backup.Bucket, cfg.Backup.Retention)
	} else {
		fmt.Println("  Backups:      disabled")
	}
	fmt.Println()

	fmt.Println(sectionStyle.Render("Next Steps"))
	fmt.Println(dimStyle.Render(strings.Repeat("-", 35)))

	step := 1
	fmt.Printf("  %d. Put your bot token into %s:\n", step, envPath)
	fmt.Println("     DISCORD_TOKEN=<your-token>")
	fmt.Println()

	if pubKeyPath != "" {
		step++
		fmt.Printf("  %d. Authorize the deploy key on the server:\n", step)
		fmt.Printf("     ssh-copy-id -f -i %s %s@%s\n", pubKeyPath, cfg.SSH.User, cfg.SSH.Host)
		fmt.Println()
	}

	step++
	fmt.Printf("  %d. Trust the host key:\n", step)
	fmt.Printf("     ssh-keyscan -p %s %s > %s\n", cfg.SSH.Port, cfg.SSH.Host, cfg.SSH.KnownHostsPath)
	fmt.Println()

	step++
	fmt.Printf("  %d. Check the deployment:\n", step)
	fmt.Println("     craftd doctor")
	fmt.Println()

	step++
	fmt.Printf("  %d. Start the bot:\n", step)
	fmt.Printf("     craftd run -c %s\n", outputPath)
	fmt.Println()
}
