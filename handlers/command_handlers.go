package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"forumguard/database"
	"forumguard/models"
	"forumguard/utils"
)

// respond sends an ephemeral embed reply to an interaction.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// HandleGuard handles the logic for the /guard command group.
func (h *Handlers) HandleGuard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, utils.ErrorEmbed("Server Only", "This command can only be used inside a server."))
		return
	}
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}
	opt := options[0]

	switch opt.Name {
	case "help":
		respond(s, i, helpEmbed())
	case "channel":
		h.handleChannel(s, i, opt)
	case "role":
		h.handleRole(s, i, opt)
	case "tag":
		h.handleTag(s, i, opt)
	case "escalation":
		h.handleEscalation(s, i, opt)
	case "thread":
		h.handleThread(s, i, opt)
	case "settings":
		h.handleSettings(s, i, opt)
	}
}

func (h *Handlers) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]
	channelID := sub.Options[0].ChannelValue(nil).ID

	switch sub.Name {
	case "add":
		added, err := h.Store.AddMonitoredChannel(i.GuildID, channelID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the monitored channel list."))
			log.Printf("Error adding monitored channel %s: %v", channelID, err)
			return
		}
		if !added {
			respond(s, i, utils.ErrorEmbed("Already Added", fmt.Sprintf("<#%s> is already being monitored.", channelID)))
			return
		}
		respond(s, i, utils.SuccessEmbed("Channel Added", fmt.Sprintf("Successfully added <#%s> to the list of monitored channels.", channelID)))
	case "remove":
		removed, err := h.Store.RemoveMonitoredChannel(i.GuildID, channelID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the monitored channel list."))
			log.Printf("Error removing monitored channel %s: %v", channelID, err)
			return
		}
		if !removed {
			respond(s, i, utils.ErrorEmbed("Not Found", fmt.Sprintf("<#%s> was not on the list of monitored channels.", channelID)))
			return
		}
		respond(s, i, utils.SuccessEmbed("Channel Removed", fmt.Sprintf("Successfully removed <#%s> from the list.", channelID)))
	}
}

func (h *Handlers) handleRole(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]
	roleID := sub.Options[0].RoleValue(nil, i.GuildID).ID

	switch sub.Name {
	case "add":
		added, err := h.Store.AddSupportRole(i.GuildID, roleID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the support role list."))
			log.Printf("Error adding support role %s: %v", roleID, err)
			return
		}
		if !added {
			respond(s, i, utils.ErrorEmbed("Already Added", fmt.Sprintf("<@&%s> is already a support role.", roleID)))
			return
		}
		respond(s, i, utils.SuccessEmbed("Role Added", fmt.Sprintf("Successfully added <@&%s> as a support role.", roleID)))
	case "remove":
		removed, err := h.Store.RemoveSupportRole(i.GuildID, roleID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the support role list."))
			log.Printf("Error removing support role %s: %v", roleID, err)
			return
		}
		if !removed {
			respond(s, i, utils.ErrorEmbed("Not Found", fmt.Sprintf("<@&%s> was not a support role.", roleID)))
			return
		}
		respond(s, i, utils.SuccessEmbed("Role Removed", fmt.Sprintf("Successfully removed <@&%s> from support roles.", roleID)))
	}
}

func (h *Handlers) handleTag(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]
	channelID := sub.Options[0].ChannelValue(nil).ID

	switch sub.Name {
	case "set":
		tagID := sub.Options[1].StringValue()
		if err := h.Store.SetSolutionTag(i.GuildID, channelID, tagID); err != nil {
			respond(s, i, utils.ErrorEmbed("Not Monitored", fmt.Sprintf("<#%s> must be monitored before a solution tag can be set.", channelID)))
			log.Printf("Error setting solution tag for %s: %v", channelID, err)
			return
		}
		respond(s, i, utils.SuccessEmbed("Solution Tag Set", fmt.Sprintf("Threads in <#%s> tagged with `%s` will now be treated as solved.", channelID, tagID)))
	case "clear":
		cleared, err := h.Store.ClearSolutionTag(i.GuildID, channelID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not clear the solution tag."))
			log.Printf("Error clearing solution tag for %s: %v", channelID, err)
			return
		}
		if !cleared {
			respond(s, i, utils.ErrorEmbed("Not Found", fmt.Sprintf("<#%s> has no solution tag configured.", channelID)))
			return
		}
		respond(s, i, utils.SuccessEmbed("Solution Tag Cleared", fmt.Sprintf("Removed the solution tag for <#%s>.", channelID)))
	}
}

func (h *Handlers) handleEscalation(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]

	switch sub.Name {
	case "set":
		windowHours := sub.Options[0].IntValue()
		channelID := sub.Options[1].ChannelValue(nil).ID
		if windowHours < 1 {
			respond(s, i, utils.ErrorEmbed("Invalid Window", "The staleness window must be at least one hour."))
			return
		}
		settings := models.EscalationSettings{
			Enabled:         true,
			StalenessWindow: time.Duration(windowHours) * time.Hour,
			NotifyChannelID: channelID,
		}
		if err := h.Store.SetEscalationSettings(i.GuildID, settings); err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not save the escalation settings."))
			log.Printf("Error setting escalation settings for %s: %v", i.GuildID, err)
			return
		}
		respond(s, i, utils.SuccessEmbed("Escalation Enabled",
			fmt.Sprintf("Threads without a qualifying reply for **%d hours** will be escalated to <#%s>.", windowHours, channelID)))
	case "disable":
		disabled, err := h.Store.DisableEscalation(i.GuildID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not disable escalation."))
			log.Printf("Error disabling escalation for %s: %v", i.GuildID, err)
			return
		}
		if !disabled {
			respond(s, i, utils.ErrorEmbed("Not Configured", "Escalation was not configured for this server."))
			return
		}
		respond(s, i, utils.SuccessEmbed("Escalation Disabled", "Stale threads will no longer be escalated."))
	case "reset":
		count, err := h.Dispatcher.ResetEscalations(i.GuildID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not reset escalated threads."))
			log.Printf("Error resetting escalations for %s: %v", i.GuildID, err)
			return
		}
		respond(s, i, utils.SuccessEmbed("Escalations Reset", fmt.Sprintf("Returned %d escalated thread(s) to open.", count)))
	}
}

func (h *Handlers) handleThread(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]
	if sub.Name != "reset" {
		return
	}
	threadID := sub.Options[0].ChannelValue(nil).ID

	if err := h.Dispatcher.ResetThread(i.GuildID, threadID); err != nil {
		if errors.Is(err, database.ErrThreadNotFound) {
			respond(s, i, utils.ErrorEmbed("Not Tracked", fmt.Sprintf("<#%s> is not a tracked thread.", threadID)))
			return
		}
		respond(s, i, utils.ErrorEmbed("Storage Error", "Could not reset the thread."))
		log.Printf("Error resetting thread %s: %v", threadID, err)
		return
	}
	respond(s, i, utils.SuccessEmbed("Thread Reset", fmt.Sprintf("<#%s> is open again and its staleness clock has restarted.", threadID)))
}

func (h *Handlers) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) {
	sub := opt.Options[0]

	switch sub.Name {
	case "dms":
		enabled := sub.Options[0].BoolValue()
		if err := h.Store.SetDMOnDelete(i.GuildID, enabled); err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the DM setting."))
			log.Printf("Error setting dm_on_delete for %s: %v", i.GuildID, err)
			return
		}
		status := "disabled"
		if enabled {
			status = "enabled"
		}
		respond(s, i, utils.SuccessEmbed("Settings Updated", fmt.Sprintf("DM notifications have been %s.", status)))
	case "resolve":
		bySupport := sub.Options[0].BoolValue()
		if err := h.Store.SetResolveBySupport(i.GuildID, bySupport); err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not update the resolve setting."))
			log.Printf("Error setting resolve_by_support for %s: %v", i.GuildID, err)
			return
		}
		who := "only the original poster"
		if bySupport {
			who = "the original poster and support roles"
		}
		respond(s, i, utils.SuccessEmbed("Settings Updated", fmt.Sprintf("Threads can now be marked solved by %s.", who)))
	case "view":
		config, err := h.Store.GetGuildConfig(i.GuildID)
		if err != nil {
			respond(s, i, utils.ErrorEmbed("Storage Error", "Could not load the configuration."))
			log.Printf("Error loading config for %s: %v", i.GuildID, err)
			return
		}
		guildName := i.GuildID
		if guild, err := s.State.Guild(i.GuildID); err == nil {
			guildName = guild.Name
		}
		respond(s, i, utils.SettingsEmbed(guildName, config))
	}
}

func helpEmbed() *discordgo.MessageEmbed {
	embed := utils.InfoEmbed("ForumGuard Commands",
		"Commands to configure the bot. You must have `Manage Server` permissions to use them.")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "`/guard channel add|remove <channel>`", Value: "Start or stop moderating a forum channel."},
		{Name: "`/guard role add|remove <role>`", Value: "Manage roles that can reply in monitored threads."},
		{Name: "`/guard tag set|clear <channel> [tag_id]`", Value: "Configure the solution tag for a monitored forum."},
		{Name: "`/guard escalation set|disable|reset`", Value: "Configure stale-thread escalation."},
		{Name: "`/guard thread reset <thread>`", Value: "Return a thread to open and restart its staleness clock."},
		{Name: "`/guard settings dms|resolve|view`", Value: "General settings and the current configuration."},
		{Name: "`/guard help`", Value: "Shows this help message."},
	}
	return embed
}
