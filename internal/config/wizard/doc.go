// Package wizard provides the interactive setup flow behind "craftd
// init". It collects connection, Discord and scheduling answers through
// charmbracelet/huh forms, maps them onto a full configuration and
// writes craftd.yaml plus a .env scaffold for the secrets that never
// land in YAML.
package wizard
