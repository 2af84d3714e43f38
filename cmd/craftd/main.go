// Package main is the entry point for the craftd daemon.
//
// craftd is a Discord bot for managing a self-hosted Minecraft server.
// It executes server operations over SSH, answers player queries in a
// Discord channel, and keeps a daily playtime cache with optional S3
// snapshots.
//
// Commands: run, init, doctor, version.
//
// For detailed usage information, run:
//
//	craftd --help
package main

import (
	"fmt"
	"os"

	"github.com/craftd/craftd/cmd/craftd/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
