package config

import (
	"path/filepath"
	"time"
)

// DefaultPath is the YAML file probed when no --config flag is given.
const DefaultPath = "craftd.yaml"

// Config is the canonical runtime configuration.
type Config struct {
	// LogLevel is a zerolog level name; unknown values fall back to info.
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	Discord   DiscordConfig   `yaml:"discord"`
	SSH       SSHConfig       `yaml:"ssh"`
	Minecraft MinecraftConfig `yaml:"minecraft"`
	Data      DataConfig      `yaml:"data"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Ops       OpsConfig       `yaml:"ops"`
	Backup    BackupConfig    `yaml:"backup"`
}

// DiscordConfig holds the bot identity and command surface settings.
type DiscordConfig struct {
	// Token is the bot token. Env-only so wizard-written YAML never
	// carries a secret.
	Token   string `yaml:"-" env:"DISCORD_TOKEN"`
	OwnerID string `yaml:"owner_id" env:"OWNER_ID"`
	Prefix  string `yaml:"prefix" env:"COMMAND_PREFIX"`
}

// SSHConfig holds the connection settings for the Minecraft host.
type SSHConfig struct {
	Host string `yaml:"host" env:"HOST"`
	// Port stays a string end to end; it is validated numerically but
	// passed through to the dialer unmodified.
	Port            string `yaml:"port" env:"PORT"`
	User            string `yaml:"user" env:"USERNAME"`
	KeyPath         string `yaml:"key_path" env:"SSH_KEY_PATH"`
	KnownHostsPath  string `yaml:"known_hosts_path" env:"KNOWN_HOSTS_PATH"`
	InsecureHostKey bool   `yaml:"insecure_host_key" env:"INSECURE_HOST_KEY"`
}

// MinecraftConfig locates the server installation on the remote host.
type MinecraftConfig struct {
	ScriptsPath string `yaml:"scripts_path" env:"SCRIPTS_PATH"`
	LogsPath    string `yaml:"logs_path" env:"MINECRAFT_LOGS_PATH"`
	// CacheTTL bounds how long fetched log files are served from memory.
	// Env-only, accepts Go duration strings.
	CacheTTL time.Duration `yaml:"-" env:"CACHE_TTL"`
}

// DataConfig locates local state and static assets.
type DataConfig struct {
	Dir       string `yaml:"dir" env:"DATA_DIR"`
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR"`
}

// ScheduleConfig holds cron specs for background jobs.
type ScheduleConfig struct {
	DailyUpdate string `yaml:"daily_update" env:"DAILY_UPDATE_CRON"`
}

// OpsConfig configures the optional health and metrics listener.
type OpsConfig struct {
	// Listen is the bind address, e.g. ":9090". Empty disables the
	// listener.
	Listen string `yaml:"listen" env:"OPS_LISTEN"`
}

// BackupConfig configures optional snapshot uploads to object storage.
type BackupConfig struct {
	Enabled   bool   `yaml:"enabled" env:"BACKUP_ENABLED"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region    string `yaml:"region" env:"S3_REGION"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKey string `yaml:"-" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"-" env:"S3_SECRET_KEY"`
	PathStyle bool   `yaml:"path_style" env:"S3_PATH_STYLE"`
	// Retention is the number of snapshots kept after pruning.
	Retention int `yaml:"retention" env:"BACKUP_RETENTION"`
}

// Default returns a Config populated with built-in defaults. The zero
// values match a bot running on the Minecraft host itself.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Discord: DiscordConfig{
			Prefix: "%",
		},
		SSH: SSHConfig{
			Host:           "localhost",
			Port:           "22",
			User:           "root",
			KeyPath:        "/root/.ssh/id_rsa",
			KnownHostsPath: "/root/.ssh/known_hosts",
		},
		Minecraft: MinecraftConfig{
			ScriptsPath: ".",
			LogsPath:    ".",
			CacheTTL:    time.Minute,
		},
		Data: DataConfig{
			Dir:       "data",
			StaticDir: "static",
		},
		Schedule: ScheduleConfig{
			DailyUpdate: "0 0 * * *",
		},
		Backup: BackupConfig{
			Region:    "us-east-1",
			Retention: 14,
		},
	}
}

// PlayersFile returns the path of the player cache file.
func (c *Config) PlayersFile() string {
	return filepath.Join(c.Data.Dir, "players.json")
}

// PrivilegedFile returns the path of the privileged users file.
func (c *Config) PrivilegedFile() string {
	return filepath.Join(c.Data.Dir, "privileged_users.txt")
}

// ThumbnailFile returns the path of the optional embed thumbnail.
func (c *Config) ThumbnailFile() string {
	return filepath.Join(c.Data.StaticDir, "minecraft.png")
}
