// Package discord wraps the Discord gateway and REST API behind the
// small Messenger interface the bot consumes, so command handlers can be
// tested against a mock instead of a live session.
package discord
