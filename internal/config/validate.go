package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors that break every command.
// Credentials are checked separately by ValidateRun so doctor can inspect
// a half-configured host.
func (c *Config) Validate() error {
	if c.Discord.Prefix == "" {
		return fmt.Errorf("discord.prefix is required")
	}

	if c.SSH.Host == "" {
		return fmt.Errorf("ssh.host is required")
	}
	if c.SSH.User == "" {
		return fmt.Errorf("ssh.user is required")
	}
	if err := validatePort(c.SSH.Port); err != nil {
		return fmt.Errorf("ssh.port validation failed: %w", err)
	}
	if c.SSH.KeyPath == "" {
		return fmt.Errorf("ssh.key_path is required")
	}
	if !c.SSH.InsecureHostKey && c.SSH.KnownHostsPath == "" {
		return fmt.Errorf("ssh.known_hosts_path is required unless insecure_host_key is set")
	}

	if c.Minecraft.CacheTTL < 0 {
		return fmt.Errorf("minecraft cache TTL cannot be negative")
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}

	if _, err := cron.ParseStandard(c.Schedule.DailyUpdate); err != nil {
		return fmt.Errorf("invalid schedule.daily_update %q: %w", c.Schedule.DailyUpdate, err)
	}

	if c.Backup.Enabled {
		if err := c.validateBackup(); err != nil {
			return fmt.Errorf("backup validation failed: %w", err)
		}
	}

	return nil
}

// ValidateRun performs the strict checks required by the bot daemon on
// top of Validate: the Discord credentials must be present and plausible.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Discord.OwnerID == "" {
		return fmt.Errorf("OWNER_ID is required")
	}
	if _, err := strconv.ParseUint(c.Discord.OwnerID, 10, 64); err != nil {
		return fmt.Errorf("OWNER_ID must be a Discord user ID, got %q", c.Discord.OwnerID)
	}

	return nil
}

// validatePort checks that the port is numeric and in range while leaving
// the string representation untouched.
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port is required")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be numeric, got %q", port)
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", n)
	}
	return nil
}

// validateBackup checks the object storage settings.
func (c *Config) validateBackup() error {
	if c.Backup.Bucket == "" {
		return fmt.Errorf("backup.bucket is required")
	}
	if c.Backup.Region == "" {
		return fmt.Errorf("backup.region is required")
	}
	if c.Backup.AccessKey == "" || c.Backup.SecretKey == "" {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	if c.Backup.Retention < 1 {
		return fmt.Errorf("backup.retention must be at least 1, got %d", c.Backup.Retention)
	}
	return nil
}

// EnsureDirs creates the local state directory when missing.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", c.Data.Dir, err)
	}
	return nil
}
