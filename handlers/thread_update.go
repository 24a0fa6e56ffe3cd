package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"forumguard/models"
)

// ThreadUpdate diffs a thread's applied tags and feeds solution tag changes
// to the dispatcher. Without the previous snapshot there is nothing to diff
// against, so those updates are skipped.
func (h *Handlers) ThreadUpdate(s *discordgo.Session, t *discordgo.ThreadUpdate) {
	if t.GuildID == "" || t.BeforeUpdate == nil {
		return
	}

	before := make(map[string]bool, len(t.BeforeUpdate.AppliedTags))
	for _, tagID := range t.BeforeUpdate.AppliedTags {
		before[tagID] = true
	}
	after := make(map[string]bool, len(t.AppliedTags))
	for _, tagID := range t.AppliedTags {
		after[tagID] = true
	}

	var added, removed []string
	for tagID := range after {
		if !before[tagID] {
			added = append(added, tagID)
		}
	}
	for tagID := range before {
		if !after[tagID] {
			removed = append(removed, tagID)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return
	}

	actorID := h.resolveTagActor(s, t.GuildID, t.ID, t.OwnerID)
	actorRoles := memberRoles(s, t.GuildID, actorID)

	for _, tagID := range added {
		event := models.TagEvent{GuildID: t.GuildID, ThreadID: t.ID, TagID: tagID, Added: true, ActorID: actorID}
		if err := h.Dispatcher.OnTagChanged(event, actorRoles); err != nil {
			log.Printf("Error handling tag %s added on thread %s: %v", tagID, t.ID, err)
		}
	}
	for _, tagID := range removed {
		event := models.TagEvent{GuildID: t.GuildID, ThreadID: t.ID, TagID: tagID, Added: false, ActorID: actorID}
		if err := h.Dispatcher.OnTagChanged(event, actorRoles); err != nil {
			log.Printf("Error handling tag %s removed on thread %s: %v", tagID, t.ID, err)
		}
	}
}

// resolveTagActor finds who changed the thread's tags via the guild audit
// log. The gateway does not deliver the actor, so this is best effort; the
// thread OP is assumed when the audit log is unavailable or inconclusive.
func (h *Handlers) resolveTagActor(s *discordgo.Session, guildID, threadID, ownerID string) string {
	auditLog, err := s.GuildAuditLog(guildID, "", "", int(discordgo.AuditLogActionThreadUpdate), 5)
	if err != nil {
		log.Printf("Could not read audit log for guild %s: %v", guildID, err)
		return ownerID
	}
	for _, entry := range auditLog.AuditLogEntries {
		if entry.TargetID == threadID {
			return entry.UserID
		}
	}
	return ownerID
}
