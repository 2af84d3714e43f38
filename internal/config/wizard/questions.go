package wizard

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/robfig/cron/v3"
)

// retentionOptions lists how many daily snapshots to keep.
var retentionOptions = []huh.Option[int]{
	huh.NewOption("7 (one week)", 7),
	huh.NewOption("14 (two weeks)", 14),
	huh.NewOption("30 (one month)", 30),
	huh.NewOption("90 (one quarter)", 90),
}

// runConnectionGroup prompts for the SSH endpoint of the Minecraft host.
func runConnectionGroup(ctx context.Context, result *Result) error {
	result.Port = "22"
	result.User = "root"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server Host").
				Description("Hostname or IP address of the Minecraft host").
				Placeholder("mc.example.com").
				Value(&result.Host).
				Validate(validateHost),
			huh.NewInput().
				Title("SSH Port").
				Description("Port the SSH daemon listens on").
				Value(&result.Port).
				Validate(validatePort),
			huh.NewInput().
				Title("SSH User").
				Description("Account that owns the Minecraft server files").
				Value(&result.User).
				Validate(validateUser),
		).Title("Connection"),
	).RunWithContext(ctx)
}

// runAuthGroup prompts for key material paths and whether to generate a
// fresh deploy key.
func runAuthGroup(ctx context.Context, result *Result) error {
	result.KeyPath = "/root/.ssh/id_rsa"
	result.KnownHostsPath = "/root/.ssh/known_hosts"

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Private Key Path").
				Description("Key used to authenticate against the server").
				Value(&result.KeyPath).
				Validate(validatePath),
			huh.NewInput().
				Title("known_hosts Path").
				Description("Host keys trusted when connecting. Populate with ssh-keyscan.").
				Value(&result.KnownHostsPath).
				Validate(validatePath),
		).Title("Authentication"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	// Only offer key generation when nothing is at the path yet; the
	// handler refuses to overwrite existing key material either way.
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Generate a new key pair?").
				Description("Writes a fresh RSA key to the private key path. Add the public half to the server's authorized_keys.").
				Value(&result.GenerateKey),
		).Title("Deploy Key"),
	).RunWithContext(ctx)
}

// runServerGroup prompts for the remote directory layout.
func runServerGroup(ctx context.Context, result *Result) error {
	result.ScriptsPath = "."
	result.LogsPath = "."

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Scripts Path").
				Description("Remote directory holding run_mc_command.sh, relative to the SSH user's home").
				Value(&result.ScriptsPath).
				Validate(validatePath),
			huh.NewInput().
				Title("Logs Path").
				Description("Remote directory holding the Minecraft server logs").
				Value(&result.LogsPath).
				Validate(validatePath),
		).Title("Server Layout"),
	).RunWithContext(ctx)
}

// runDiscordGroup prompts for the bot owner and command prefix. The bot
// token itself never goes through the wizard; it stays in the
// environment.
func runDiscordGroup(ctx context.Context, result *Result) error {
	result.Prefix = "%"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Owner ID").
				Description("Numeric Discord user ID of the bot owner").
				Placeholder("123456789012345678").
				Value(&result.OwnerID).
				Validate(validateOwnerID),
			huh.NewInput().
				Title("Command Prefix").
				Description("Commands are invoked as <prefix>mine <command>").
				Value(&result.Prefix).
				Validate(validatePrefix),
		).Title("Discord"),
	).RunWithContext(ctx)
}

// runScheduleGroup prompts for the daily playtime refresh schedule.
func runScheduleGroup(ctx context.Context, result *Result) error {
	result.DailyUpdate = "0 0 * * *"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Daily Update Schedule").
				Description("Cron expression for the playtime cache refresh").
				Value(&result.DailyUpdate).
				Validate(validateCron),
		).Title("Schedule"),
	).RunWithContext(ctx)
}

// runBackupGroup prompts for the optional S3 snapshot target.
func runBackupGroup(ctx context.Context, result *Result) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable S3 backups?").
				Description("Uploads the bot's data files to an S3 bucket after every daily update").
				Value(&result.EnableBackup),
		).Title("Backup"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	if !result.EnableBackup {
		return nil
	}

	result.S3Region = "us-east-1"
	result.Retention = 14

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("S3 Endpoint (Optional)").
				Description("Leave empty for AWS; set for MinIO or other S3-compatible stores").
				Placeholder("http://minio:9000").
				Value(&result.S3Endpoint),
			huh.NewInput().
				Title("S3 Region").
				Value(&result.S3Region),
			huh.NewInput().
				Title("Bucket Name").
				Value(&result.S3Bucket).
				Validate(validateBucket),
			huh.NewSelect[int]().
				Title("Snapshot Retention").
				Description("Older snapshots are pruned after each upload").
				Options(retentionOptions...).
				Value(&result.Retention),
		).Title("S3 Target"),
	).RunWithContext(ctx)
}

// validateHost checks that a host was entered.
func validateHost(s string) error {
	if strings.TrimSpace(s) == "" {
		return errHostRequired
	}
	return nil
}

// validatePort checks for a port in the 1-65535 range.
func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return errPortInvalid
	}
	return nil
}

// validateUser checks that a user was entered.
func validateUser(s string) error {
	if strings.TrimSpace(s) == "" {
		return errUserRequired
	}
	return nil
}

// validatePath checks that a path was entered.
func validatePath(s string) error {
	if strings.TrimSpace(s) == "" {
		return errPathRequired
	}
	return nil
}

// validateOwnerID checks for a plain numeric Discord snowflake.
func validateOwnerID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errOwnerIDInvalid
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return errOwnerIDInvalid
		}
	}
	return nil
}

// validatePrefix checks that a prefix was entered.
func validatePrefix(s string) error {
	if s == "" {
		return errPrefixRequired
	}
	return nil
}

// validateCron checks the expression against the standard 5-field parser.
func validateCron(s string) error {
	if _, err := cron.ParseStandard(s); err != nil {
		return errCronInvalid
	}
	return nil
}

// validateBucket checks that a bucket name was entered.
func validateBucket(s string) error {
	if strings.TrimSpace(s) == "" {
		return errBucketRequired
	}
	return nil
}
