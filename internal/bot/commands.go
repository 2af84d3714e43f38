package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/report"
	"github.com/craftd/craftd/internal/util/async"
	"github.com/craftd/craftd/internal/util/timefmt"
)

type tier int

const (
	tierEveryone tier = iota
	tierPrivileged
	tierOwner
)

type command struct {
	name        string
	brief       string
	description string
	usage       string
	minArgs     int
	tier        tier
	// remote commands reach the server over SSH: they show the typing
	// indicator and are rate limited per user.
	remote bool
	run    func(ctx context.Context, m *discordgo.MessageCreate, args []string) error
}

// sessionTimeLayout renders join and leave times in last_joined replies.
const sessionTimeLayout = "2006-01-02 15:04:05"

// sessionFanOut bounds how many log searches run at once when
// last_joined covers the whole roster.
const sessionFanOut = 4

func (b *Bot) buildCommands() map[string]*command {
	cmds := []*command{
		{
			name:        "help",
			brief:       "Shows this help message.",
			description: "Shows a list of available commands.",
			usage:       fmt.Sprintf("`%smine help (command)`", b.prefix),
			run:         b.cmdHelp,
		},
		{
			name:        "test",
			brief:       "Brief description of the `mine test` command.",
			description: "Detailed description of the `mine test` command.",
			usage:       fmt.Sprintf("`%smine test [arg1] (arg2)`", b.prefix),
			minArgs:     1,
			run:         b.cmdTest,
		},
		{
			name:        "grant_privileges",
			brief:       "Grant privileges to a user.",
			description: "Grant privileges to a user.",
			usage:       fmt.Sprintf("`%smine grant_privileges [username]`", b.prefix),
			minArgs:     1,
			tier:        tierOwner,
			run:         b.cmdGrantPrivileges,
		},
		{
			name:        "revoke_privileges",
			brief:       "Revoke privileges from a user.",
			description: "Revoke privileges from a user.",
			usage:       fmt.Sprintf("`%smine revoke_privileges [username]`", b.prefix),
			minArgs:     1,
			tier:        tierOwner,
			run:         b.cmdRevokePrivileges,
		},
		{
			name:        "list_players",
			brief:       "List all players on the server.",
			description: "List all players on the server.",
			usage:       fmt.Sprintf("`%smine list_players`", b.prefix),
			remote:      true,
			run:         b.cmdListPlayers,
		},
		{
			name:        "playtime",
			brief:       "Show the playtime of a player.",
			description: "Show the playtime of a player.",
			usage:       fmt.Sprintf("`%smine playtime (username)`", b.prefix),
			remote:      true,
			run:         b.cmdPlaytime,
		},
		{
			name:        "command",
			brief:       "Runs a command on the Minecraft server.",
			description: "Runs a command on the Minecraft server. Type command inside \"\".",
			usage:       fmt.Sprintf("`%smine command [\"command\"]`", b.prefix),
			minArgs:     1,
			tier:        tierOwner,
			remote:      true,
			run:         b.cmdCommand,
		},
		{
			name:        "say",
			brief:       "Send a message to players on the Minecraft server.",
			description: "Send a message to players on the Minecraft server by running `\\say \"message\"`.",
			usage:       fmt.Sprintf("`%smine say [\"message\"]`", b.prefix),
			minArgs:     1,
			tier:        tierPrivileged,
			remote:      true,
			run:         b.cmdSay,
		},
		{
			name:        "last_joined",
			brief:       "Show the last time players joined and left the server.",
			description: "Show the last time players joined and left the server.",
			usage:       fmt.Sprintf("`%smine last_joined (username)`", b.prefix),
			remote:      true,
			run:         b.cmdLastJoined,
		},
	}

	table := make(map[string]*command, len(cmds))
	for _, cmd := range cmds {
		table[cmd.name] = cmd
	}
	return table
}

func (b *Bot) sortedCommands() []*command {
	cmds := make([]*command, 0, len(b.commands))
	for _, cmd := range b.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	return cmds
}

func (b *Bot) cmdTest(_ context.Context, m *discordgo.MessageCreate, args []string) error {
	first := args[0]
	second := "0"
	if len(args) > 1 {
		second = args[1]
	}
	b.reply(m.ChannelID, fmt.Sprintf("Hello there! %s + %s = %s", first, second, first+second))
	return nil
}

func (b *Bot) cmdGrantPrivileges(_ context.Context, m *discordgo.MessageCreate, args []string) error {
	username := args[0]
	granted, err := b.store.Grant(username)
	if err != nil {
		const msg = "Failed to update privileged users."
		b.logFailure(report.FromError("grant_privileges", msg, err))
		b.reply(m.ChannelID, msg)
		return err
	}
	if granted {
		b.reply(m.ChannelID, fmt.Sprintf("Granted privileges to %s.", username))
	} else {
		b.reply(m.ChannelID, fmt.Sprintf("%s already has privileges.", username))
	}
	return nil
}

func (b *Bot) cmdRevokePrivileges(_ context.Context, m *discordgo.MessageCreate, args []string) error {
	username := args[0]
	revoked, err := b.store.Revoke(username)
	if err != nil {
		const msg = "Failed to update privileged users."
		b.logFailure(report.FromError("revoke_privileges", msg, err))
		b.reply(m.ChannelID, msg)
		return err
	}
	if revoked {
		b.reply(m.ChannelID, fmt.Sprintf("Revoked privileges from %s.", username))
	} else {
		b.reply(m.ChannelID, fmt.Sprintf("%s does not have privileges.", username))
	}
	return nil
}

func (b *Bot) cmdListPlayers(ctx context.Context, m *discordgo.MessageCreate, _ []string) error {
	roster, err := b.gw.Players(ctx)
	if err != nil || len(roster) == 0 {
		const msg = "Failed to get players data."
		if err == nil {
			err = errors.New("username cache is empty")
		}
		b.logFailure(report.New("list_players", msg).
			Add(report.FromError("players", "failed to read the username cache", err)))
		b.reply(m.ChannelID, msg)
		return err
	}

	names := make([]string, len(roster))
	for i, p := range roster {
		names[i] = "`" + p.Username + "`"
	}
	b.reply(m.ChannelID, "Players on the server: "+strings.Join(names, ", "))
	return nil
}

func (b *Bot) cmdPlaytime(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	roster, err := b.gw.Players(ctx)
	if err != nil {
		const msg = "Failed to get players data."
		b.logFailure(report.New("playtime", msg).
			Add(report.FromError("players", "failed to read the username cache", err)))
		b.reply(m.ChannelID, msg)
		return err
	}

	var target string
	var uuids []string
	if len(args) > 0 {
		target = args[0]
		uuids = roster.Find(target)
	} else {
		for _, p := range roster {
			uuids = append(uuids, p.UUID)
		}
	}
	if len(uuids) == 0 {
		if target == "" {
			b.reply(m.ChannelID, "No playtime data available.")
			return nil
		}
		msg := fmt.Sprintf("No player with username `%s` found.", target)
		b.log.Info().Msg(msg)
		b.reply(m.ChannelID, msg)
		return nil
	}

	stats, err := b.gw.PlayerStats(ctx, uuids)
	if err != nil || len(stats) == 0 {
		const msg = "Failed to get player stats."
		if err == nil {
			err = errors.New("no stats in command output")
		}
		b.logFailure(report.New("playtime", msg).
			Add(report.FromError("player_stats", "failed to read stats files", err)))
		b.reply(m.ChannelID, msg)
		return err
	}

	// Aggregate per username in roster order. Several uuids can map to
	// one username after a rename; the last one wins.
	type row struct {
		username string
		seconds  int64
	}
	index := make(map[string]int)
	var rows []row
	for _, uuid := range uuids {
		st, ok := stats[uuid]
		if !ok {
			continue
		}
		username := roster.Username(uuid)
		if i, seen := index[username]; seen {
			rows[i].seconds = st.PlaytimeSeconds()
			continue
		}
		index[username] = len(rows)
		rows = append(rows, row{username: username, seconds: st.PlaytimeSeconds()})
	}
	if len(rows) == 0 {
		const msg = "No playtime data available."
		b.logFailure(report.New("playtime", msg).
			Add(report.New("player_stats", "play_time entry not found for any player")))
		b.reply(m.ChannelID, msg)
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].seconds > rows[j].seconds })
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("`%s`: %dh %dmin", r.username, r.seconds/3600, (r.seconds%3600)/60)
	}
	b.reply(m.ChannelID, "Playtime:\n"+strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) cmdCommand(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	return b.runConsole(m, func() error { return b.gw.Console(ctx, args[0]) })
}

func (b *Bot) cmdSay(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	return b.runConsole(m, func() error { return b.gw.Say(ctx, args[0]) })
}

// runConsole forwards a console command to the server and reports the
// outcome as a reaction on the invoking message.
func (b *Bot) runConsole(m *discordgo.MessageCreate, send func() error) error {
	if err := send(); err != nil {
		const msg = "Failed to run script."
		b.logFailure(report.New("command", msg).
			Add(report.FromError("run_script", "SSH command failed while running script", err)))
		if rerr := b.session.Reply(m.ChannelID, m.ID, msg); rerr != nil {
			b.log.Error().Err(rerr).Msg("failed to send reply")
		}
		b.react(m, crossEmoji)
		return err
	}
	b.react(m, checkEmoji)
	return nil
}

func (b *Bot) react(m *discordgo.MessageCreate, emoji string) {
	if err := b.session.React(m.ChannelID, m.ID, emoji); err != nil {
		b.log.Warn().Err(err).Msg("failed to add reaction")
	}
}

func (b *Bot) cmdLastJoined(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	var usernames []string
	if len(args) > 0 {
		usernames = []string{args[0]}
	} else {
		roster, err := b.gw.Players(ctx)
		if err != nil || len(roster) == 0 {
			const msg = "Failed to get players data."
			if err == nil {
				err = errors.New("username cache is empty")
			}
			b.logFailure(report.New("last_joined", msg).
				Add(report.FromError("players", "failed to read the username cache", err)))
			b.reply(m.ChannelID, msg)
			return err
		}
		usernames = roster.Usernames()
	}

	// Session lookups must see fresh logs, and a batch over the whole
	// roster would otherwise pin every log file in memory.
	b.gw.FlushLogCache()
	defer b.gw.FlushLogCache()

	sessions, errs := async.Map(ctx, sessionFanOut, usernames,
		func(ctx context.Context, username string) (minecraft.Session, error) {
			return b.gw.LastSession(ctx, username)
		})
	for _, err := range errs {
		if err != nil && !errors.Is(err, minecraft.ErrNoJoinRecord) {
			const msg = "Failed to get last joined time."
			b.logFailure(report.New("last_joined", msg).
				Add(report.FromError("last_session", "failed to search the logs", err)))
			b.reply(m.ChannelID, msg)
			return err
		}
	}

	var sb strings.Builder
	for i, username := range usernames {
		if errors.Is(errs[i], minecraft.ErrNoJoinRecord) {
			fmt.Fprintf(&sb, "`%s`: No data\n", username)
			continue
		}
		sess := sessions[i]

		joined := sess.Joined.Format(sessionTimeLayout)
		since := timefmt.Since(sess.Joined, b.now())
		if sess.StillPlaying {
			fmt.Fprintf(&sb, "`%s`: %s - Still playing (%s ago)\n", username, joined, since)
			continue
		}
		left := sess.Left.Format(sessionTimeLayout)
		fmt.Fprintf(&sb, "`%s`: %s - %s [%s] (%s ago)\n",
			username, joined, left, timefmt.Humanize(sess.Duration()), since)
	}
	b.reply(m.ChannelID, sb.String())
	return nil
}
