package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftd/craftd/internal/logcache"
	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/platform/discord"
	"github.com/craftd/craftd/internal/store"
)

const ownerID = "42"

var (
	ownerUser  = &discordgo.User{ID: ownerID, Username: "owner", Discriminator: "0"}
	memberUser = &discordgo.User{ID: "7", Username: "steve", Discriminator: "0"}
)

// scriptedRunner answers remote commands from a fixed table. Guarded
// because last_joined fans lookups out over several goroutines.
type scriptedRunner struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (r *scriptedRunner) Run(_ context.Context, command string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, command)
	if err, ok := r.errs[command]; ok {
		return "", err
	}
	out, ok := r.responses[command]
	if !ok {
		return "", errors.New("unexpected command: " + command)
	}
	return out, nil
}

type fixture struct {
	bot       *Bot
	session   *discord.MockMessenger
	runner    *scriptedRunner
	store     *store.Store
	staticDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	runner := &scriptedRunner{responses: map[string]string{}, errs: map[string]error{}}
	st := store.New(t.TempDir())
	require.NoError(t, st.EnsurePrivileged())

	session := &discord.MockMessenger{
		UserFunc: func(id string) (*discordgo.User, error) {
			if id == ownerID {
				return ownerUser, nil
			}
			return &discordgo.User{ID: id, Username: "user-" + id, Discriminator: "0"}, nil
		},
	}
	gw := minecraft.New(runner, minecraft.Options{
		ScriptsPath: "/opt/minecraft/scripts",
		LogsPath:    "/opt/minecraft/logs",
		Cache:       logcache.New(0),
		Logger:      zerolog.Nop(),
	})
	staticDir := t.TempDir()
	b := New(session, gw, st, Options{
		Prefix:    "%",
		OwnerID:   ownerID,
		StaticDir: staticDir,
		Logger:    zerolog.Nop(),
	})
	return &fixture{bot: b, session: session, runner: runner, store: st, staticDir: staticDir}
}

func guildMessage(author *discordgo.User, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   content,
		Author:    author,
	}}
}

func (f *fixture) handle(m *discordgo.MessageCreate) {
	f.bot.HandleMessage(context.Background(), m)
}

func (f *fixture) lastContent(t *testing.T) string {
	t.Helper()
	last, ok := f.session.LastMessage()
	require.True(t, ok, "expected a message to be sent")
	return last.Content
}

func TestIgnoresBotAuthors(t *testing.T) {
	f := newFixture(t)
	author := &discordgo.User{ID: "99", Username: "other-bot", Bot: true}

	f.handle(guildMessage(author, "%mine help"))

	assert.Empty(t, f.session.Messages)
}

func TestIgnoresMessagesWithoutAuthor(t *testing.T) {
	f := newFixture(t)

	f.handle(&discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   "%mine help",
	}})

	assert.Empty(t, f.session.Messages)
}

func TestRejectsDirectMessages(t *testing.T) {
	f := newFixture(t)
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "dm-1",
		Content:   "%mine list_players",
		Author:    memberUser,
	}}

	f.handle(m)

	assert.Equal(t, "Sorry you can't talk to me in private", f.lastContent(t))
	assert.Empty(t, f.runner.calls)
}

func TestIgnoresUnprefixedMessages(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, "hello everyone"))
	f.handle(guildMessage(memberUser, "mine help"))

	assert.Empty(t, f.session.Messages)
}

func TestIgnoresOtherCommandGroups(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, "%other help"))
	f.handle(guildMessage(memberUser, "%minehelp"))

	assert.Empty(t, f.session.Messages)
}

func TestBareGroupIsInvalid(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, "%mine"))

	assert.Equal(t, "Invalid command. Use `%mine help` to see available commands.", f.lastContent(t))
}

func TestUnknownSubcommandIsInvalid(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, "%mine frobnicate"))

	assert.Equal(t, "Invalid command. Use `%mine help` to see available commands.", f.lastContent(t))
}

func TestCustomPrefix(t *testing.T) {
	f := newFixture(t)
	f.bot.prefix = "!"
	f.bot.commands = f.bot.buildCommands()

	f.handle(guildMessage(memberUser, "%mine"))
	assert.Empty(t, f.session.Messages)

	f.handle(guildMessage(memberUser, "!mine"))
	assert.Equal(t, "Invalid command. Use `!mine help` to see available commands.", f.lastContent(t))
}

func TestMissingArgsRepliesUsage(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(ownerUser, "%mine say"))

	assert.Equal(t, "Usage: `%mine say [\"message\"]`", f.lastContent(t))
	assert.Empty(t, f.runner.calls)
}

func TestMissingArgsCheckedBeforePermissions(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, "%mine command"))

	assert.Equal(t, "Usage: `%mine command [\"command\"]`", f.lastContent(t))
}

func TestOwnerCommandDeniedForMember(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, `%mine command "stop"`))

	assert.Equal(t, "You do not have permission to use this command.", f.lastContent(t))
	assert.Empty(t, f.runner.calls)
}

func TestPrivilegedCommandDeniedForMember(t *testing.T) {
	f := newFixture(t)

	f.handle(guildMessage(memberUser, `%mine say "hi"`))

	assert.Equal(t, "You do not have permission to use this command.", f.lastContent(t))
	assert.Empty(t, f.runner.calls)
}

func TestPrivilegedCommandAllowedViaStore(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Grant("steve")
	require.NoError(t, err)
	f.runner.responses[`bash /opt/minecraft/scripts/run_mc_command.sh '/say hi'`] = ""

	f.handle(guildMessage(memberUser, `%mine say "hi"`))

	require.Len(t, f.runner.calls, 1)
	require.Len(t, f.session.Reactions, 1)
	assert.Equal(t, "✅", f.session.Reactions[0].Emoji)
}

func TestOwnerBypassesPrivilegedList(t *testing.T) {
	f := newFixture(t)
	f.runner.responses[`bash /opt/minecraft/scripts/run_mc_command.sh '/say hi'`] = ""

	f.handle(guildMessage(ownerUser, `%mine say "hi"`))

	require.Len(t, f.runner.calls, 1)
}

func TestOwnerLookupFailureDenies(t *testing.T) {
	f := newFixture(t)
	f.session.UserFunc = func(string) (*discordgo.User, error) {
		return nil, errors.New("rate limited")
	}

	f.handle(guildMessage(ownerUser, `%mine command "stop"`))

	assert.Equal(t, "You do not have permission to use this command.", f.lastContent(t))
	assert.Empty(t, f.runner.calls)
}

func TestRemoteCommandsAreRateLimited(t *testing.T) {
	f := newFixture(t)
	f.runner.responses["cat minecraft_server/usernamecache.json"] = `{"uuid-steve": "steve"}`

	for i := 0; i < limiterBurst+1; i++ {
		f.handle(guildMessage(memberUser, "%mine list_players"))
	}

	assert.Equal(t, "You're sending commands too quickly. Try again in a moment.", f.lastContent(t))
	assert.Len(t, f.runner.calls, limiterBurst)
	assert.Len(t, f.session.Typed, limiterBurst)
}

func TestRateLimiterIsPerUser(t *testing.T) {
	f := newFixture(t)
	f.runner.responses["cat minecraft_server/usernamecache.json"] = `{"uuid-steve": "steve"}`

	for i := 0; i < limiterBurst; i++ {
		f.handle(guildMessage(memberUser, "%mine list_players"))
	}
	other := &discordgo.User{ID: "8", Username: "alex", Discriminator: "0"}
	f.handle(guildMessage(other, "%mine list_players"))

	assert.Equal(t, "Players on the server: `steve`", f.lastContent(t))
	assert.Len(t, f.runner.calls, limiterBurst+1)
}

func TestTypingIndicatorOnRemoteCommands(t *testing.T) {
	f := newFixture(t)
	f.runner.responses["cat minecraft_server/usernamecache.json"] = `{"uuid-steve": "steve"}`

	f.handle(guildMessage(memberUser, "%mine list_players"))

	assert.Equal(t, []string{"chan-1"}, f.session.Typed)
}

func TestLocalCommandsSkipTypingAndLimit(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < limiterBurst+2; i++ {
		f.handle(guildMessage(memberUser, fmt.Sprintf("%%mine test a%d b", i)))
	}

	assert.Empty(t, f.session.Typed)
	assert.Len(t, f.session.Messages, limiterBurst+2)
}

func TestDefaultPrefixApplied(t *testing.T) {
	b := New(&discord.MockMessenger{}, nil, nil, Options{Logger: zerolog.Nop()})
	assert.Equal(t, "%", b.prefix)
}

func TestDescriptionUsesPrefix(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t,
		"A bot to manage a self-hosted minecraft server. Start all commands with `%mine`. Type `%mine help` to see available commands.",
		f.bot.Description())
}

func TestNowDefaultsToWallClock(t *testing.T) {
	f := newFixture(t)
	before := time.Now()
	got := f.bot.now()
	assert.False(t, got.Before(before))
}
