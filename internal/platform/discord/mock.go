package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// SentMessage records one SendMessage, Reply or SendEmbed call. ReplyTo
// is the replied-to message ID, empty for plain sends.
type SentMessage struct {
	ChannelID string
	ReplyTo   string
	Content   string
	Embed     *discordgo.MessageEmbed
	Files     []*discordgo.File
}

// SentReaction records one React call.
type SentReaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// MockMessenger is a mock implementation of Messenger. Successful calls
// are recorded in order; set a Func field to override the default
// behavior of a method.
type MockMessenger struct {
	mu        sync.Mutex
	Messages  []SentMessage
	Reactions []SentReaction
	Typed     []string

	SendMessageFunc func(channelID, content string) error
	ReplyFunc       func(channelID, messageID, content string) error
	SendEmbedFunc   func(channelID string, embed *discordgo.MessageEmbed, files ...*discordgo.File) error
	ReactFunc       func(channelID, messageID, emoji string) error
	TypingFunc      func(channelID string) error
	UserFunc        func(id string) (*discordgo.User, error)
	SelfIDFunc      func() string
}

var _ Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendMessage(channelID, content string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(channelID, content); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{ChannelID: channelID, Content: content})
	return nil
}

func (m *MockMessenger) Reply(channelID, messageID, content string) error {
	if m.ReplyFunc != nil {
		if err := m.ReplyFunc(channelID, messageID, content); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{ChannelID: channelID, ReplyTo: messageID, Content: content})
	return nil
}

func (m *MockMessenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed, files ...*discordgo.File) error {
	if m.SendEmbedFunc != nil {
		if err := m.SendEmbedFunc(channelID, embed, files...); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{ChannelID: channelID, Embed: embed, Files: files})
	return nil
}

func (m *MockMessenger) React(channelID, messageID, emoji string) error {
	if m.ReactFunc != nil {
		if err := m.ReactFunc(channelID, messageID, emoji); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reactions = append(m.Reactions, SentReaction{ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (m *MockMessenger) Typing(channelID string) error {
	if m.TypingFunc != nil {
		if err := m.TypingFunc(channelID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Typed = append(m.Typed, channelID)
	return nil
}

func (m *MockMessenger) User(id string) (*discordgo.User, error) {
	if m.UserFunc != nil {
		return m.UserFunc(id)
	}
	return &discordgo.User{ID: id, Username: "user-" + id, Discriminator: "0"}, nil
}

func (m *MockMessenger) SelfID() string {
	if m.SelfIDFunc != nil {
		return m.SelfIDFunc()
	}
	return "mock-bot-id"
}

// LastMessage returns the most recent recorded message.
func (m *MockMessenger) LastMessage() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return SentMessage{}, false
	}
	return m.Messages[len(m.Messages)-1], true
}
