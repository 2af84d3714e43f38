// Package bot implements the Discord command surface: a %mine command
// group whose subcommands inspect and drive the Minecraft server through
// the SSH gateway.
//
// Commands come in three permission tiers. Owner commands compare the
// author against the configured owner account, privileged commands also
// accept users listed in the privileged users file, and the rest are
// open to everyone on the server. Direct messages are rejected.
package bot
