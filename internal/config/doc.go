// Package config defines the runtime configuration model shared by the
// bot, scheduler, and CLI subsystems.
//
// Configuration is resolved from three sources in increasing precedence:
// built-in defaults, an optional YAML file, and environment variables. A
// .env file in the working directory is loaded into the environment first
// when present, mirroring the container deployment where secrets arrive
// as -e flags.
package config
