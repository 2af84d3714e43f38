// Package minecraft talks to the Minecraft server installation on the
// remote host. Every operation is a shell command executed over SSH:
// reading the username cache and per-player stats files, running the
// management scripts, and scanning the (possibly gzip-compressed) server
// logs.
//
// The gateway never parses binary world data. It relies on the layout of
// a standard server installation: minecraft_server/usernamecache.json,
// minecraft_server/world/stats/<uuid>.json, and *.log / *.log.gz files
// under the configured logs directory.
package minecraft
