package dispatcher

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// ThreadMeta is the metadata the dispatcher needs to synthesize a lifecycle
// record for a thread it has never seen.
type ThreadMeta struct {
	GuildID   string
	ParentID  string
	OwnerID   string
	CreatedAt time.Time
}

// Gateway is the outbound platform surface. The discordgo-backed
// implementation lives in the gateway package; tests substitute a fake.
type Gateway interface {
	DeleteMessage(channelID, messageID string) error
	SendDM(userID string, embed *discordgo.MessageEmbed) error
	ArchiveThread(threadID string) error
	UnarchiveThread(threadID string) error
	ApplyTag(threadID, tagID string) error
	PostThreadNotice(threadID string, embed *discordgo.MessageEmbed) error
	PostNotification(channelID, content string, embed *discordgo.MessageEmbed) error
	ThreadInfo(threadID string) (ThreadMeta, error)
}
