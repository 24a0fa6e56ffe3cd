package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// ThreadDelete drops lifecycle state for threads deleted upstream.
func (h *Handlers) ThreadDelete(s *discordgo.Session, t *discordgo.ThreadDelete) {
	if err := h.Dispatcher.OnThreadDeleted(t.ID); err != nil {
		log.Printf("Error removing state for deleted thread %s: %v", t.ID, err)
	}
}
