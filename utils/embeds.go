package utils

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"forumguard/models"
)

const (
	ColorSuccess = 0x00ff00 // Green
	ColorError   = 0xff0000 // Red
	ColorInfo    = 0x0000ff // Blue
	ColorWarn    = 0xffff00 // Yellow
)

// SimpleEmbed creates a basic embed with a title, description and color.
func SimpleEmbed(title, message string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: message,
		Color:       color,
	}
}

// SuccessEmbed creates a success-themed embed.
func SuccessEmbed(title, message string) *discordgo.MessageEmbed {
	return SimpleEmbed("✅ "+title, message, ColorSuccess)
}

// ErrorEmbed creates an error-themed embed.
func ErrorEmbed(title, message string) *discordgo.MessageEmbed {
	return SimpleEmbed("❌ "+title, message, ColorError)
}

// InfoEmbed creates an info-themed embed.
func InfoEmbed(title, message string) *discordgo.MessageEmbed {
	return SimpleEmbed("ℹ️ "+title, message, ColorInfo)
}

// RemovalNoticeEmbed is the DM sent to a user whose reply was removed from a
// monitored thread.
func RemovalNoticeEmbed(threadID string) *discordgo.MessageEmbed {
	message := fmt.Sprintf(
		"Your message in the thread <#%s> was automatically removed.\n\n"+
			"In this server, replies in monitored forum posts are restricted to the original poster "+
			"and designated support roles to keep the discussion focused.\n\n"+
			"If you believe this was an error, please contact a server moderator.",
		threadID,
	)
	return SimpleEmbed("Message Removed", message, ColorError)
}

// ThreadSolvedEmbed is posted into a thread when it is marked solved and archived.
func ThreadSolvedEmbed(actorID string) *discordgo.MessageEmbed {
	message := fmt.Sprintf(
		"This thread was marked as solved by <@%s> and has been archived.\n"+
			"Remove the solution tag to reopen it.",
		actorID,
	)
	return SimpleEmbed("Thread Solved", message, ColorSuccess)
}

// ThreadReopenedEmbed is posted into a thread when its solution tag is removed.
func ThreadReopenedEmbed() *discordgo.MessageEmbed {
	return SimpleEmbed("Thread Reopened",
		"The solution tag was removed, so this thread has been reopened.", ColorInfo)
}

// EscalationEmbed is the stale-thread alert posted to the guild's
// notification channel.
func EscalationEmbed(threadID, opID string, elapsed time.Duration) *discordgo.MessageEmbed {
	embed := SimpleEmbed("⏰ Thread Needs Attention",
		fmt.Sprintf("A thread has been waiting **%s** without a reply from its author or the support team.", formatElapsed(elapsed)),
		ColorWarn)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Thread", Value: fmt.Sprintf("<#%s>", threadID), Inline: true},
		{Name: "Author", Value: fmt.Sprintf("<@%s>", opID), Inline: true},
	}
	embed.Timestamp = time.Now().Format(time.RFC3339)
	return embed
}

// PermissionNoticeEmbed tells moderators the bot lacked rights for an action.
func PermissionNoticeEmbed(operation, threadID string) *discordgo.MessageEmbed {
	message := fmt.Sprintf(
		"The bot could not perform **%s** on <#%s> because it lacks the required permissions.\n"+
			"Please check the bot's role permissions in this forum.",
		operation, threadID,
	)
	return SimpleEmbed("Missing Permissions", message, ColorError)
}

// SettingsEmbed renders a guild's full configuration.
func SettingsEmbed(guildName string, config models.GuildConfig) *discordgo.MessageEmbed {
	channels := "None"
	if len(config.MonitoredChannels) > 0 {
		channels = ""
		for _, id := range config.MonitoredChannels {
			channels += fmt.Sprintf("<#%s>\n", id)
		}
	}
	roles := "None"
	if len(config.SupportRoles) > 0 {
		roles = ""
		for _, id := range config.SupportRoles {
			roles += fmt.Sprintf("<@&%s>\n", id)
		}
	}
	tags := "None"
	if len(config.SolutionTags) > 0 {
		tags = ""
		for forumID, tagID := range config.SolutionTags {
			tags += fmt.Sprintf("<#%s> → tag `%s`\n", forumID, tagID)
		}
	}
	dmStatus := "Disabled"
	if config.DMOnDelete {
		dmStatus = "Enabled"
	}
	resolveStatus := "OP only"
	if config.ResolveBySupport {
		resolveStatus = "OP and support roles"
	}
	escalation := "Disabled"
	if config.Escalation.Enabled {
		escalation = fmt.Sprintf("Enabled — window %s, alerts to <#%s>",
			formatElapsed(config.Escalation.StalenessWindow), config.Escalation.NotifyChannelID)
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("ForumGuard Settings for %s", guildName),
		Color: ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Monitored Forum Channels", Value: channels},
			{Name: "Support Roles", Value: roles},
			{Name: "Solution Tags", Value: tags},
			{Name: "DM Notifications on Reply Deletion", Value: dmStatus},
			{Name: "Who May Resolve Threads", Value: resolveStatus},
			{Name: "Escalation", Value: escalation},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Guild ID: %s", config.GuildID)},
	}
	return embed
}

func formatElapsed(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 1 {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	if hours < 48 {
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d days", hours/24)
}
