// Package gateway implements the outbound platform surface on top of a
// discordgo session.
package gateway

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"forumguard/dispatcher"
)

// Discord adapts a discordgo session to the dispatcher's Gateway interface.
type Discord struct {
	Session *discordgo.Session
}

// New wraps a discordgo session.
func New(s *discordgo.Session) *Discord {
	return &Discord{Session: s}
}

// DeleteMessage removes a message from a channel.
func (g *Discord) DeleteMessage(channelID, messageID string) error {
	return g.Session.ChannelMessageDelete(channelID, messageID)
}

// SendDM opens (or reuses) a DM channel with the user and sends the embed.
func (g *Discord) SendDM(userID string, embed *discordgo.MessageEmbed) error {
	channel, err := g.Session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel with %s: %w", userID, err)
	}
	_, err = g.Session.ChannelMessageSendEmbed(channel.ID, embed)
	return err
}

// ArchiveThread archives and locks a thread.
func (g *Discord) ArchiveThread(threadID string) error {
	archived := true
	locked := true
	_, err := g.Session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Archived: &archived,
		Locked:   &locked,
	})
	return err
}

// UnarchiveThread unarchives and unlocks a thread.
func (g *Discord) UnarchiveThread(threadID string) error {
	archived := false
	locked := false
	_, err := g.Session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Archived: &archived,
		Locked:   &locked,
	})
	return err
}

// ApplyTag adds a tag to a thread's applied tags if not already present.
func (g *Discord) ApplyTag(threadID, tagID string) error {
	channel, err := g.Session.Channel(threadID)
	if err != nil {
		return fmt.Errorf("failed to fetch thread %s: %w", threadID, err)
	}
	for _, applied := range channel.AppliedTags {
		if applied == tagID {
			return nil
		}
	}
	tags := append([]string{}, channel.AppliedTags...)
	tags = append(tags, tagID)
	_, err = g.Session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{AppliedTags: &tags})
	return err
}

// PostThreadNotice sends an embed into a thread.
func (g *Discord) PostThreadNotice(threadID string, embed *discordgo.MessageEmbed) error {
	_, err := g.Session.ChannelMessageSendEmbed(threadID, embed)
	return err
}

// PostNotification sends a message (optional plain content plus embed) to a
// channel, typically the guild's escalation channel.
func (g *Discord) PostNotification(channelID, content string, embed *discordgo.MessageEmbed) error {
	_, err := g.Session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	return err
}

// ThreadInfo fetches the metadata needed to synthesize a lifecycle record for
// an untracked thread. The creation time comes from the thread's snowflake.
func (g *Discord) ThreadInfo(threadID string) (dispatcher.ThreadMeta, error) {
	channel, err := g.Session.Channel(threadID)
	if err != nil {
		return dispatcher.ThreadMeta{}, fmt.Errorf("failed to fetch thread %s: %w", threadID, err)
	}
	if !channel.IsThread() {
		return dispatcher.ThreadMeta{}, fmt.Errorf("channel %s is not a thread", threadID)
	}
	createdAt, err := discordgo.SnowflakeTimestamp(threadID)
	if err != nil {
		return dispatcher.ThreadMeta{}, fmt.Errorf("failed to parse thread snowflake %s: %w", threadID, err)
	}
	return dispatcher.ThreadMeta{
		GuildID:   channel.GuildID,
		ParentID:  channel.ParentID,
		OwnerID:   channel.OwnerID,
		CreatedAt: createdAt,
	}, nil
}
