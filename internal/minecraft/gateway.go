package minecraft

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/craftd/craftd/internal/logcache"
	"github.com/craftd/craftd/internal/platform/ssh"
	"github.com/craftd/craftd/internal/util/shellwords"
)

// usernameCacheFile maps player UUIDs to their last known username. The
// server maintains it in the installation root.
const usernameCacheFile = "minecraft_server/usernamecache.json"

// statsFilePattern locates the per-player stats JSON inside the world.
const statsFilePattern = "minecraft_server/world/stats/%s.json"

// Player is one entry of the server's username cache.
type Player struct {
	UUID     string
	Username string
}

// Roster is the username cache in file order. The server writes entries
// in first-seen order and the bot preserves it in listings.
type Roster []Player

// Usernames returns all usernames in roster order.
func (r Roster) Usernames() []string {
	names := make([]string, len(r))
	for i, p := range r {
		names[i] = p.Username
	}
	return names
}

// Username resolves a UUID, returning "" when absent.
func (r Roster) Username(uuid string) string {
	for _, p := range r {
		if p.UUID == uuid {
			return p.Username
		}
	}
	return ""
}

// Find returns the UUIDs registered for username. Name changes can leave
// several UUIDs behind the same name.
func (r Roster) Find(username string) []string {
	var uuids []string
	for _, p := range r {
		if p.Username == username {
			uuids = append(uuids, p.UUID)
		}
	}
	return uuids
}

// Stats wraps one player's stats document.
type Stats struct {
	raw gjson.Result
}

// PlaytimeSeconds returns the accumulated play time in seconds, 0 when
// the entry is missing. The server records ticks; 20 ticks make a second.
func (s Stats) PlaytimeSeconds() int64 {
	return s.raw.Get("minecraft:custom.minecraft:play_time").Int() / 20
}

// Options configures a Gateway.
type Options struct {
	// ScriptsPath is the remote directory holding the management
	// scripts, without a trailing slash.
	ScriptsPath string
	// LogsPath is the remote directory holding the server logs, without
	// a trailing slash.
	LogsPath string
	// Cache holds fetched log files. A nil cache disables caching.
	Cache  *logcache.Cache
	Logger zerolog.Logger
}

// Gateway executes server operations over a Runner.
type Gateway struct {
	runner  ssh.Runner
	scripts string
	logs    string
	cache   *logcache.Cache
	log     zerolog.Logger
}

// New returns a Gateway running commands through runner.
func New(runner ssh.Runner, opts Options) *Gateway {
	return &Gateway{
		runner:  runner,
		scripts: opts.ScriptsPath,
		logs:    opts.LogsPath,
		cache:   opts.Cache,
		log:     opts.Logger,
	}
}

// run executes a remote command, logging it at debug level.
func (g *Gateway) run(ctx context.Context, command string) (string, error) {
	g.log.Debug().Str("command", command).Msg("running remote command")
	out, err := g.runner.Run(ctx, command)
	if err != nil {
		g.log.Debug().Str("command", command).Err(err).Msg("remote command failed")
	}
	return out, err
}

// Players reads the username cache and returns the roster in file order.
func (g *Gateway) Players(ctx context.Context) (Roster, error) {
	out, err := g.run(ctx, "cat "+usernameCacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read username cache: %w", err)
	}

	if !gjson.Valid(out) {
		return nil, fmt.Errorf("invalid JSON in username cache")
	}

	var roster Roster
	gjson.Parse(out).ForEach(func(key, value gjson.Result) bool {
		roster = append(roster, Player{UUID: key.String(), Username: value.String()})
		return true
	})
	return roster, nil
}

// PlayerStats fetches the stats documents for the given UUIDs in one
// remote command. The result is keyed by UUID; the server prints the
// files in argument order, which pairs each document with its UUID.
func (g *Gateway) PlayerStats(ctx context.Context, uuids []string) (map[string]Stats, error) {
	if len(uuids) == 0 {
		return map[string]Stats{}, nil
	}

	files := make([]string, len(uuids))
	for i, uuid := range uuids {
		files[i] = fmt.Sprintf(statsFilePattern, uuid)
	}

	out, err := g.run(ctx, "cat "+strings.Join(files, " "))
	if err != nil {
		return nil, fmt.Errorf("failed to read player stats: %w", err)
	}

	// The concatenated output has no separators between documents.
	objects := ExtractJSONObjects(out)

	stats := make(map[string]Stats, len(objects))
	for i, obj := range objects {
		if i >= len(uuids) {
			break
		}
		doc := gjson.Parse(obj)
		if !doc.IsObject() {
			return nil, fmt.Errorf("invalid JSON in stats file for %s", uuids[i])
		}
		stats[uuids[i]] = Stats{raw: doc.Get("stats")}
	}
	return stats, nil
}

// RunScript executes a management script with pre-quoted arguments.
func (g *Gateway) RunScript(ctx context.Context, script string, args ...string) error {
	command := fmt.Sprintf("bash %s/%s", g.scripts, script)
	if len(args) > 0 {
		command += " " + strings.Join(args, " ")
	}

	g.log.Info().Str("script", script).Msg("running script")
	if _, err := g.run(ctx, command); err != nil {
		return fmt.Errorf("failed to run %s: %w", script, err)
	}
	return nil
}

// Console sends one command line to the server console. The line reaches
// the run_mc_command.sh script as a single shell argument.
func (g *Gateway) Console(ctx context.Context, command string) error {
	return g.RunScript(ctx, "run_mc_command.sh", shellwords.Quote(command))
}

// Say broadcasts a chat message to everyone on the server.
func (g *Gateway) Say(ctx context.Context, message string) error {
	return g.Console(ctx, "/say "+message)
}
