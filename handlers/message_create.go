package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"forumguard/models"
)

// MessageCreate feeds replies posted in guild threads to the dispatcher.
func (h *Handlers) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from the bot itself and from other bots.
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	channel, err := s.State.Channel(m.ChannelID)
	if err != nil {
		channel, err = s.Channel(m.ChannelID)
		if err != nil {
			log.Printf("Could not resolve channel %s for message %s: %v", m.ChannelID, m.ID, err)
			return
		}
	}
	if !channel.IsThread() {
		return
	}

	var authorRoles []string
	if m.Member != nil {
		authorRoles = m.Member.Roles
	} else {
		authorRoles = memberRoles(s, m.GuildID, m.Author.ID)
	}

	reply := models.ReplyEvent{
		GuildID:   m.GuildID,
		ThreadID:  m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		Timestamp: m.Timestamp,
	}
	if err := h.Dispatcher.OnReplyCreated(reply, authorRoles); err != nil {
		log.Printf("Error handling reply %s in thread %s: %v", m.ID, m.ChannelID, err)
	}
}
