package wizard

import (
	"context"
	"fmt"
)

// Result holds the answers collected by the interactive setup.
type Result struct {
	Host string
	Port string
	User string

	KeyPath        string
	KnownHostsPath string
	GenerateKey    bool

	ScriptsPath string
	LogsPath    string

	OwnerID string
	Prefix  string

	DailyUpdate string

	EnableBackup bool
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	Retention    int
}

// Run walks the user through every question group and returns the
// collected answers. Each group is its own form so a cancelled prompt
// reports which section it was in. The context is used for cancellation
// support (e.g., Ctrl+C).
func Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	if err := runConnectionGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}

	if err := runAuthGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}

	if err := runServerGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("server layout: %w", err)
	}

	if err := runDiscordGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("discord: %w", err)
	}

	if err := runScheduleGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	if err := runBackupGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	return result, nil
}
