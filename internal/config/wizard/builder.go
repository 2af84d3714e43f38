package wizard

import (
	"strings"

	"github.com/craftd/craftd/internal/config"
)

// BuildConfig maps wizard answers onto a full configuration. Everything
// the wizard does not ask about keeps its default so the written YAML
// is explicit and complete.
func (r *Result) BuildConfig() *config.Config {
	cfg := config.Default()

	cfg.SSH.Host = strings.TrimSpace(r.Host)
	cfg.SSH.Port = strings.TrimSpace(r.Port)
	cfg.SSH.User = strings.TrimSpace(r.User)
	cfg.SSH.KeyPath = strings.TrimSpace(r.KeyPath)
	cfg.SSH.KnownHostsPath = strings.TrimSpace(r.KnownHostsPath)

	cfg.Minecraft.ScriptsPath = strings.TrimSpace(r.ScriptsPath)
	cfg.Minecraft.LogsPath = strings.TrimSpace(r.LogsPath)

	cfg.Discord.OwnerID = strings.TrimSpace(r.OwnerID)
	cfg.Discord.Prefix = r.Prefix

	cfg.Schedule.DailyUpdate = strings.TrimSpace(r.DailyUpdate)

	cfg.Backup.Enabled = r.EnableBackup
	if r.EnableBackup {
		cfg.Backup.Endpoint = strings.TrimSpace(r.S3Endpoint)
		cfg.Backup.Region = strings.TrimSpace(r.S3Region)
		cfg.Backup.Bucket = strings.TrimSpace(r.S3Bucket)
		cfg.Backup.Retention = r.Retention
		// Custom endpoints are almost always MinIO-style stores that
		// need path addressing.
		cfg.Backup.PathStyle = cfg.Backup.Endpoint != ""
	}

	return cfg
}
