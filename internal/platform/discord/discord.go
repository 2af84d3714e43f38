package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Messenger is the slice of the Discord API the bot uses to talk back to
// channels and inspect users.
type Messenger interface {
	// SendMessage posts plain text to a channel.
	SendMessage(channelID, content string) error
	// Reply posts plain text as a reply to an existing message.
	Reply(channelID, messageID, content string) error
	// SendEmbed posts an embed, optionally with file attachments that
	// the embed can reference via attachment:// URLs.
	SendEmbed(channelID string, embed *discordgo.MessageEmbed, files ...*discordgo.File) error
	// React adds an emoji reaction to a message.
	React(channelID, messageID, emoji string) error
	// Typing shows the typing indicator in a channel until the next
	// message is sent.
	Typing(channelID string) error
	// User resolves a user by ID through the REST API.
	User(id string) (*discordgo.User, error)
	// SelfID returns the bot's own user ID, or "" before the gateway
	// handshake completes.
	SelfID() string
}

// Client is the live Messenger backed by a discordgo session.
type Client struct {
	session *discordgo.Session
	log     zerolog.Logger
}

var _ Messenger = (*Client)(nil)

// New builds a gateway client for the given bot token. The session is
// not connected until Open is called.
func New(token string, logger zerolog.Logger) (*Client, error) {
	if token == "" {
		return nil, errors.New("discord token cannot be empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	return &Client{session: session, log: logger}, nil
}

// OnMessage registers handler for message creation events. Register
// handlers before calling Open.
func (c *Client) OnMessage(handler func(m *discordgo.MessageCreate)) {
	c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		handler(m)
	})
}

// Open connects to the Discord gateway.
func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to connect to discord: %w", err)
	}
	if user := c.session.State.User; user != nil {
		c.log.Info().Str("user", user.String()).Msg("logged in to discord")
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) SendMessage(channelID, content string) error {
	if _, err := c.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *Client) Reply(channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{ChannelID: channelID, MessageID: messageID}
	if _, err := c.session.ChannelMessageSendReply(channelID, content, ref); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (c *Client) SendEmbed(channelID string, embed *discordgo.MessageEmbed, files ...*discordgo.File) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embed: embed,
		Files: files,
	})
	if err != nil {
		return fmt.Errorf("failed to send embed: %w", err)
	}
	return nil
}

func (c *Client) React(channelID, messageID, emoji string) error {
	if err := c.session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (c *Client) Typing(channelID string) error {
	return c.session.ChannelTyping(channelID)
}

func (c *Client) User(id string) (*discordgo.User, error) {
	user, err := c.session.User(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return user, nil
}

func (c *Client) SelfID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}
