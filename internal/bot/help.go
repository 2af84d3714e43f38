package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
)

// embedColor is the blue used for all help embeds.
const embedColor = 0x3498db

// thumbnailName is the bundled image attached to the full help embed.
const thumbnailName = "minecraft.png"

func (b *Bot) cmdHelp(_ context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) > 0 {
		return b.sendCommandHelp(m, args[0])
	}
	return b.sendFullHelp(m)
}

func (b *Bot) sendCommandHelp(m *discordgo.MessageCreate, name string) error {
	cmd, ok := b.commands[name]
	if !ok {
		b.reply(m.ChannelID, fmt.Sprintf("There is no command with name `%s`.", name))
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title:       cmd.name,
		Description: cmd.description,
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "use", Value: cmd.usage},
		},
	}
	if err := b.session.SendEmbed(m.ChannelID, embed); err != nil {
		b.log.Error().Err(err).Msg("failed to send help embed")
		return err
	}
	return nil
}

// sendFullHelp lists every command the author may run, alphabetically,
// with help itself left out. An unresolvable permission check falls back
// to the public command set.
func (b *Bot) sendFullHelp(m *discordgo.MessageCreate) error {
	isPrivileged, err := b.isPrivileged(m.Author)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to resolve privileged status for help")
	}
	isOwner, err := b.isOwner(m.Author)
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to resolve owner status for help")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Minecraft Bot",
		Description: b.Description(),
		Color:       embedColor,
	}
	for _, cmd := range b.sortedCommands() {
		if cmd.name == "help" {
			continue
		}
		if cmd.tier == tierOwner && !isOwner {
			continue
		}
		if cmd.tier == tierPrivileged && !isPrivileged {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   cmd.name,
			Value:  cmd.brief,
			Inline: false,
		})
	}

	var files []*discordgo.File
	path := filepath.Join(b.staticDir, thumbnailName)
	f, err := os.Open(path)
	if err != nil {
		b.log.Warn().Str("path", path).Err(err).Msg("help thumbnail unavailable")
	} else {
		defer f.Close()
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: "attachment://" + thumbnailName}
		files = append(files, &discordgo.File{
			Name:        thumbnailName,
			ContentType: "image/png",
			Reader:      f,
		})
	}

	if err := b.session.SendEmbed(m.ChannelID, embed, files...); err != nil {
		b.log.Error().Err(err).Msg("failed to send help embed")
		return err
	}
	return nil
}
