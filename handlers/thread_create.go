package handlers

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ThreadCreate starts tracking threads created in monitored forum channels.
func (h *Handlers) ThreadCreate(s *discordgo.Session, t *discordgo.ThreadCreate) {
	if t.GuildID == "" || t.ParentID == "" {
		return
	}

	// The thread's snowflake encodes its creation time.
	createdAt, err := discordgo.SnowflakeTimestamp(t.ID)
	if err != nil {
		log.Printf("Could not parse creation timestamp for thread %s: %v", t.ID, err)
		createdAt = time.Now()
	}

	if err := h.Dispatcher.OnThreadObserved(t.GuildID, t.ID, t.ParentID, t.OwnerID, createdAt); err != nil {
		log.Printf("Error observing thread %s: %v", t.ID, err)
	}
}
