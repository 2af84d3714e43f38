// Package store persists local bot state under the data directory: the
// player cache (players.json) and the privileged user list
// (privileged_users.txt). The data directory is bind-mounted in the
// container deployment so both files survive image upgrades.
package store
