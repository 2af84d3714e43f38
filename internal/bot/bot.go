package bot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/craftd/craftd/internal/metrics"
	"github.com/craftd/craftd/internal/minecraft"
	"github.com/craftd/craftd/internal/platform/discord"
	"github.com/craftd/craftd/internal/report"
	"github.com/craftd/craftd/internal/store"
	"github.com/craftd/craftd/internal/util/shellwords"
)

// groupName is the command group every invocation starts with, directly
// after the prefix: "%mine list_players".
const groupName = "mine"

const (
	dmRejection      = "Sorry you can't talk to me in private"
	permissionDenied = "You do not have permission to use this command."
	rateLimited      = "You're sending commands too quickly. Try again in a moment."

	checkEmoji = "✅"
	crossEmoji = "❌"
)

// Remote commands refill one token per limiterInterval, with a small
// burst, per user. The SSH fan-out behind playtime or last_joined is
// expensive enough to protect.
const (
	limiterInterval = 2 * time.Second
	limiterBurst    = 3
)

// Options configures a Bot.
type Options struct {
	// Prefix is the command prefix, "%" by default.
	Prefix string
	// OwnerID is the Discord user ID of the bot owner.
	OwnerID string
	// StaticDir holds bundled assets like the help embed thumbnail.
	StaticDir string
	Logger    zerolog.Logger
}

// Bot routes Discord messages to command handlers.
type Bot struct {
	session   discord.Messenger
	gw        *minecraft.Gateway
	store     *store.Store
	prefix    string
	ownerID   string
	staticDir string
	log       zerolog.Logger
	now       func() time.Time

	commands map[string]*command

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New wires the command table to the given session, gateway and store.
func New(session discord.Messenger, gw *minecraft.Gateway, st *store.Store, opts Options) *Bot {
	b := &Bot{
		session:   session,
		gw:        gw,
		store:     st,
		prefix:    opts.Prefix,
		ownerID:   opts.OwnerID,
		staticDir: opts.StaticDir,
		log:       opts.Logger,
		now:       time.Now,
		limiters:  make(map[string]*rate.Limiter),
	}
	if b.prefix == "" {
		b.prefix = "%"
	}
	b.commands = b.buildCommands()
	return b
}

// Description is the bot's self-description, shown in the help embed.
func (b *Bot) Description() string {
	return fmt.Sprintf("A bot to manage a self-hosted minecraft server. Start all commands with `%[1]smine`. Type `%[1]smine help` to see available commands.", b.prefix)
}

func (b *Bot) invalidCommand() string {
	return fmt.Sprintf("Invalid command. Use `%smine help` to see available commands.", b.prefix)
}

// HandleMessage routes one incoming message. Register it as the
// discordgo message-create handler.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		b.reply(m.ChannelID, dmRejection)
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	fields := shellwords.Split(strings.TrimPrefix(m.Content, b.prefix))
	if len(fields) == 0 || fields[0] != groupName {
		return
	}
	if len(fields) == 1 {
		b.reply(m.ChannelID, b.invalidCommand())
		return
	}
	cmd, ok := b.commands[fields[1]]
	if !ok {
		b.reply(m.ChannelID, b.invalidCommand())
		return
	}
	b.dispatch(ctx, cmd, m, fields[2:])
}

func (b *Bot) dispatch(ctx context.Context, cmd *command, m *discordgo.MessageCreate, args []string) {
	b.log.Info().
		Str("command", cmd.name).
		Str("user", m.Author.String()).
		Msg("command executed")

	if len(args) < cmd.minArgs {
		b.reply(m.ChannelID, "Usage: "+cmd.usage)
		return
	}

	allowed, err := b.authorized(cmd.tier, m.Author)
	if err != nil {
		b.log.Error().Str("command", cmd.name).Err(err).Msg("permission check failed")
	}
	if !allowed {
		b.reply(m.ChannelID, permissionDenied)
		return
	}

	if cmd.remote {
		if !b.allow(m.Author.ID) {
			b.reply(m.ChannelID, rateLimited)
			return
		}
		if err := b.session.Typing(m.ChannelID); err != nil {
			b.log.Warn().Err(err).Msg("failed to send typing indicator")
		}
	}

	start := b.now()
	runErr := cmd.run(ctx, m, args)
	metrics.RecordCommand(cmd.name, runErr == nil, time.Since(start))
}

// authorized reports whether author may run commands of the given tier.
// A failed owner lookup denies rather than erroring out silently.
func (b *Bot) authorized(t tier, author *discordgo.User) (bool, error) {
	switch t {
	case tierOwner:
		return b.isOwner(author)
	case tierPrivileged:
		return b.isPrivileged(author)
	default:
		return true, nil
	}
}

// isOwner compares the author against the configured owner account. The
// comparison uses the rendered username so the privileged users file and
// owner checks share one identity format.
func (b *Bot) isOwner(author *discordgo.User) (bool, error) {
	owner, err := b.session.User(b.ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve owner %s: %w", b.ownerID, err)
	}
	return author.String() == owner.String(), nil
}

func (b *Bot) isPrivileged(author *discordgo.User) (bool, error) {
	isOwner, err := b.isOwner(author)
	if err != nil {
		return false, err
	}
	if isOwner {
		return true, nil
	}
	users, err := b.store.Privileged()
	if err != nil {
		return false, fmt.Errorf("failed to load privileged users: %w", err)
	}
	return slices.Contains(users, author.String()), nil
}

// allow consumes one rate limiter token for the user.
func (b *Bot) allow(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	limiter, ok := b.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(limiterInterval), limiterBurst)
		b.limiters[userID] = limiter
	}
	return limiter.Allow()
}

func (b *Bot) reply(channelID, content string) {
	if err := b.session.SendMessage(channelID, content); err != nil {
		b.log.Error().Err(err).Msg("failed to send message")
	}
}

// logFailure writes the nested failure report for a command, mirroring
// the one-line summary the user received.
func (b *Bot) logFailure(node *report.Node) {
	b.log.Error().Msg(strings.TrimSuffix(node.String(), "\n"))
}
