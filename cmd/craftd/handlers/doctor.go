package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	cryptossh "golang.org/x/crypto/ssh"

	"github.com/craftd/craftd/internal/config"
	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/platform/s3"
	"github.com/craftd/craftd/internal/util/shellwords"
)

// DoctorStatus is the full diagnostic report.
type DoctorStatus struct {
	ConfigPath string        `json:"configPath"`
	Config     CheckResult   `json:"config"`
	Discord    DiscordHealth `json:"discord"`
	SSH        SSHHealth     `json:"ssh"`
	Remote     *RemoteHealth `json:"remote,omitempty"`
	Data       DataHealth    `json:"data"`
	Backup     *CheckResult  `json:"backup,omitempty"`
	Healthy    bool          `json:"healthy"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// DiscordHealth reports the Discord-side settings.
type DiscordHealth struct {
	TokenSet CheckResult `json:"tokenSet"`
	OwnerID  CheckResult `json:"ownerID"`
}

// SSHHealth reports the local key material.
type SSHHealth struct {
	Key        CheckResult `json:"key"`
	KnownHosts CheckResult `json:"knownHosts"`
}

// RemoteHealth reports the probes run against the Minecraft host. Nil
// when the key material checks already failed.
type RemoteHealth struct {
	Connect CheckResult `json:"connect"`
	Script  CheckResult `json:"script"`
	Logs    CheckResult `json:"logs"`
}

// DataHealth reports the local data directory.
type DataHealth struct {
	Dir       CheckResult `json:"dir"`
	Thumbnail CheckResult `json:"thumbnail"`
}

// Doctor runs the diagnostic checks and renders the report.
//
// The report covers the configuration file, Discord settings, local key
// material, connectivity to the Minecraft host, the data directory and
// the optional snapshot bucket. Optional items (the help thumbnail, a
// bucket that does not exist yet) are reported but do not fail the
// verdict. A failing verdict returns an error so CI and deploy hooks
// exit nonzero.
func Doctor(ctx context.Context, configPath string, jsonOutput bool) error {
	status := collectStatus(ctx, configPath)

	if jsonOutput {
		return printDoctorJSON(status)
	}

	printDoctorReport(status)

	if !status.Healthy {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

// collectStatus runs every check. Remote probes are skipped when the
// key material is unusable, the bucket probe when backups are disabled.
func collectStatus(ctx context.Context, configPath string) *DoctorStatus {
	status := &DoctorStatus{ConfigPath: configPath}
	if status.ConfigPath == "" {
		status.ConfigPath = config.DefaultPath
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		status.Config = CheckResult{Message: err.Error()}
		return status
	}
	if err := cfg.Validate(); err != nil {
		status.Config = CheckResult{Message: err.Error()}
		return status
	}
	status.Config = CheckResult{OK: true}

	status.Discord = checkDiscord(cfg)
	status.SSH = checkKeyMaterial(cfg)

	if status.SSH.Key.OK && status.SSH.KnownHosts.OK {
		status.Remote = checkRemote(ctx, cfg)
	}

	status.Data = checkData(cfg)

	if cfg.Backup.Enabled {
		status.Backup = checkBackup(ctx, cfg)
	}

	status.Healthy = verdict(status)
	return status
}

// checkDiscord verifies the token is present and the owner ID is a
// plausible Discord snowflake.
func checkDiscord(cfg *config.Config) DiscordHealth {
	h := DiscordHealth{}

	if cfg.Discord.Token != "" {
		h.TokenSet = CheckResult{OK: true}
	} else {
		h.TokenSet = CheckResult{Message: "DISCORD_TOKEN is not set"}
	}

	switch {
	case cfg.Discord.OwnerID == "":
		h.OwnerID = CheckResult{Message: "OWNER_ID is not set"}
	case !isNumeric(cfg.Discord.OwnerID):
		h.OwnerID = CheckResult{Message: fmt.Sprintf("%q is not a numeric user ID", cfg.Discord.OwnerID)}
	default:
		h.OwnerID = CheckResult{OK: true}
	}

	return h
}

// checkKeyMaterial verifies the private key parses and the host trust
// store is in place.
func checkKeyMaterial(cfg *config.Config) SSHHealth {
	h := SSHHealth{}

	key, err := os.ReadFile(cfg.SSH.KeyPath)
	switch {
	case err != nil:
		h.Key = CheckResult{Message: err.Error()}
	default:
		if _, perr := cryptossh.ParsePrivateKey(key); perr != nil {
			h.Key = CheckResult{Message: fmt.Sprintf("%s does not parse as a private key", cfg.SSH.KeyPath)}
		} else {
			h.Key = CheckResult{OK: true}
		}
	}

	switch {
	case cfg.SSH.InsecureHostKey:
		h.KnownHosts = CheckResult{OK: true, Message: "host key verification disabled"}
	case fileExists(cfg.SSH.KnownHostsPath):
		h.KnownHosts = CheckResult{OK: true}
	default:
		h.KnownHosts = CheckResult{Message: fmt.Sprintf("%s not found; run ssh-keyscan", cfg.SSH.KnownHostsPath)}
	}

	return h
}

// checkRemote probes the Minecraft host over SSH: an echo round trip,
// the management script, and the server log listing.
func checkRemote(ctx context.Context, cfg *config.Config) *RemoteHealth {
	h := &RemoteHealth{}

	runner, err := newRunner(cfg)
	if err != nil {
		h.Connect = CheckResult{Message: err.Error()}
		return h
	}

	out, err := runner.Run(ctx, "echo craftd-doctor")
	switch {
	case err != nil:
		h.Connect = CheckResult{Message: err.Error()}
		return h
	case !strings.Contains(out, "craftd-doctor"):
		h.Connect = CheckResult{Message: fmt.Sprintf("unexpected echo reply %q", strings.TrimSpace(out))}
		return h
	}
	h.Connect = CheckResult{OK: true}

	scriptPath := cfg.Minecraft.ScriptsPath + "/run_mc_command.sh"
	if _, err := runner.Run(ctx, "test -f "+shellwords.Quote(scriptPath)); err != nil {
		h.Script = CheckResult{Message: scriptPath + " not found"}
	} else {
		h.Script = CheckResult{OK: true}
	}

	gw := minecraft.New(runner, minecraft.Options{
		ScriptsPath: cfg.Minecraft.ScriptsPath,
		LogsPath:    cfg.Minecraft.LogsPath,
		Logger:      zerolog.Nop(),
	})
	files, err := gw.ListLogFiles(ctx, minecraft.SortByDate)
	switch {
	case err != nil:
		h.Logs = CheckResult{Message: err.Error()}
	case len(files) == 0:
		h.Logs = CheckResult{Message: "no log files found"}
	default:
		h.Logs = CheckResult{OK: true, Message: fmt.Sprintf("%d log files", len(files))}
	}

	return h
}

// checkData verifies the data directory is usable and the optional help
// thumbnail is present.
func checkData(cfg *config.Config) DataHealth {
	h := DataHealth{}

	if _, err := os.Stat(cfg.Data.Dir); os.IsNotExist(err) {
		h.Dir = CheckResult{OK: true, Message: "created on first run"}
	} else if probe, err := os.CreateTemp(cfg.Data.Dir, ".doctor-*"); err != nil {
		h.Dir = CheckResult{Message: fmt.Sprintf("%s is not writable: %v", cfg.Data.Dir, err)}
	} else {
		_ = probe.Close()
		_ = os.Remove(probe.Name())
		h.Dir = CheckResult{OK: true}
	}

	if fileExists(cfg.ThumbnailFile()) {
		h.Thumbnail = CheckResult{OK: true}
	} else {
		h.Thumbnail = CheckResult{Message: "optional; help embeds are sent without a thumbnail"}
	}

	return h
}

// checkBackup probes the snapshot bucket. A missing bucket is fine, the
// daily job creates it.
func checkBackup(ctx context.Context, cfg *config.Config) *CheckResult {
	objStore, err := newObjectStore(s3.Config{
		Endpoint:  cfg.Backup.Endpoint,
		Region:    cfg.Backup.Region,
		AccessKey: cfg.Backup.AccessKey,
		SecretKey: cfg.Backup.SecretKey,
		PathStyle: cfg.Backup.PathStyle,
	})
	if err != nil {
		return &CheckResult{Message: err.Error()}
	}

	exists, err := objStore.BucketExists(ctx, cfg.Backup.Bucket)
	switch {
	case err != nil:
		return &CheckResult{Message: err.Error()}
	case !exists:
		return &CheckResult{OK: true, Message: "bucket missing; created on first run"}
	default:
		return &CheckResult{OK: true}
	}
}

// verdict folds the required checks into the overall health. The
// thumbnail is informational only.
func verdict(status *DoctorStatus) bool {
	if !status.Config.OK {
		return false
	}
	if !status.Discord.TokenSet.OK || !status.Discord.OwnerID.OK {
		return false
	}
	if !status.SSH.Key.OK || !status.SSH.KnownHosts.OK {
		return false
	}
	if status.Remote == nil || !status.Remote.Connect.OK || !status.Remote.Script.OK || !status.Remote.Logs.OK {
		return false
	}
	if !status.Data.Dir.OK {
		return false
	}
	if status.Backup != nil && !status.Backup.OK {
		return false
	}
	return true
}

// printDoctorJSON outputs the report as JSON.
func printDoctorJSON(status *DoctorStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printDoctorReport renders the report as an indicator table.
func printDoctorReport(status *DoctorStatus) {
	fmt.Println()
	printHeader("craftd doctor: " + status.ConfigPath)

	printSection("Configuration")
	printRow("Config file", status.Config.OK, status.Config.Message)
	if !status.Config.OK {
		fmt.Println()
		return
	}
	printRow("Discord token", status.Discord.TokenSet.OK, status.Discord.TokenSet.Message)
	printRow("Owner ID", status.Discord.OwnerID.OK, status.Discord.OwnerID.Message)
	fmt.Println()

	printSection("SSH")
	printRow("Private key", status.SSH.Key.OK, status.SSH.Key.Message)
	printRow("known_hosts", status.SSH.KnownHosts.OK, status.SSH.KnownHosts.Message)
	if status.Remote != nil {
		printRow("Connectivity", status.Remote.Connect.OK, status.Remote.Connect.Message)
		printRow("Command script", status.Remote.Script.OK, status.Remote.Script.Message)
		printRow("Server logs", status.Remote.Logs.OK, status.Remote.Logs.Message)
	} else {
		fmt.Println("     (remote probes skipped)")
	}
	fmt.Println()

	printSection("Data")
	printRow("Data directory", status.Data.Dir.OK, status.Data.Dir.Message)
	printRow("Help thumbnail", status.Data.Thumbnail.OK, status.Data.Thumbnail.Message)
	fmt.Println()

	if status.Backup != nil {
		printSection("Backup")
		printRow("Snapshot bucket", status.Backup.OK, status.Backup.Message)
		fmt.Println()
	}

	if status.Healthy {
		fmt.Println("  All checks passed.")
	} else {
		fmt.Println("  Some checks failed. Fix the items marked ❌ and re-run.")
	}
	fmt.Println()
}

// printHeader prints the report title with an underline.
func printHeader(title string) {
	fmt.Printf("  %s\n", title)
	fmt.Println("  " + strings.Repeat("═", len(title)))
	fmt.Println()
}

// printSection prints a section name with a light underline.
func printSection(name string) {
	fmt.Println("  " + name)
	fmt.Println("  " + strings.Repeat("─", 35))
}

// printRow prints one check with a pass/fail indicator.
func printRow(name string, ready bool, extra string) {
	indicator := "✅" // green check
	if !ready {
		indicator = "❌" // red X
	}

	if extra != "" {
		fmt.Printf("  %s  %-20s %s\n", indicator, name, extra)
	} else {
		fmt.Printf("  %s  %s\n", indicator, name)
	}
}

// isNumeric reports whether s is all ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
