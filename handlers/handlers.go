// Package handlers adapts discordgo gateway events into dispatcher
// operations and implements the slash command surface.
package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"forumguard/database"
	"forumguard/dispatcher"
)

// Handlers holds the dependencies the event handlers need.
type Handlers struct {
	Store      *database.Store
	Dispatcher *dispatcher.Dispatcher
}

// New creates the handler set.
func New(store *database.Store, d *dispatcher.Dispatcher) *Handlers {
	return &Handlers{Store: store, Dispatcher: d}
}

// Register attaches all event handlers to the session.
func (h *Handlers) Register(s *discordgo.Session) {
	s.AddHandler(h.MessageCreate)
	s.AddHandler(h.ThreadCreate)
	s.AddHandler(h.ThreadUpdate)
	s.AddHandler(h.ThreadDelete)
	s.AddHandler(h.InteractionCreate)

	// Log when the bot is connected.
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}

// memberRoles returns a guild member's role IDs, preferring the state cache.
func memberRoles(s *discordgo.Session, guildID, userID string) []string {
	if member, err := s.State.Member(guildID, userID); err == nil {
		return member.Roles
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		log.Printf("Could not fetch member %s in guild %s: %v", userID, guildID, err)
		return nil
	}
	return member.Roles
}
