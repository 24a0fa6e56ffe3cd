package command

import "github.com/bwmarrin/discordgo"

// GuardCommand defines the /guard configuration command group.
type GuardCommand struct{}

// Definition returns the application command definition.
func (c *GuardCommand) Definition() *discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageGuild)
	forumChannelTypes := []discordgo.ChannelType{discordgo.ChannelTypeGuildForum}
	threadChannelTypes := []discordgo.ChannelType{discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread}

	return &discordgo.ApplicationCommand{
		Name:                     "guard",
		Description:              "Configure ForumGuard moderation settings",
		DefaultMemberPermissions: &manageGuild,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "channel",
				Description: "Manage monitored forum channels",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "add",
						Description: "Start moderating a forum channel",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "channel",
								Description:  "The forum channel to add",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: forumChannelTypes,
								Required:     true,
							},
						},
					},
					{
						Name:        "remove",
						Description: "Stop moderating a forum channel",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "channel",
								Description:  "The forum channel to remove",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: forumChannelTypes,
								Required:     true,
							},
						},
					},
				},
			},
			{
				Name:        "role",
				Description: "Manage support roles",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "add",
						Description: "Add a role that can reply in any monitored thread",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "role",
								Description: "The support role to add",
								Type:        discordgo.ApplicationCommandOptionRole,
								Required:    true,
							},
						},
					},
					{
						Name:        "remove",
						Description: "Remove a support role",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "role",
								Description: "The support role to remove",
								Type:        discordgo.ApplicationCommandOptionRole,
								Required:    true,
							},
						},
					},
				},
			},
			{
				Name:        "tag",
				Description: "Manage solution tags",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "set",
						Description: "Set the solution tag for a monitored forum",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "channel",
								Description:  "The monitored forum channel",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: forumChannelTypes,
								Required:     true,
							},
							{
								Name:        "tag_id",
								Description: "The ID of the forum tag that marks a thread solved",
								Type:        discordgo.ApplicationCommandOptionString,
								Required:    true,
							},
						},
					},
					{
						Name:        "clear",
						Description: "Remove a forum's solution tag",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "channel",
								Description:  "The monitored forum channel",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: forumChannelTypes,
								Required:     true,
							},
						},
					},
				},
			},
			{
				Name:        "escalation",
				Description: "Manage stale-thread escalation",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "set",
						Description: "Enable escalation for unanswered threads",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "window_hours",
								Description: "Hours without a qualifying reply before a thread escalates",
								Type:        discordgo.ApplicationCommandOptionInteger,
								Required:    true,
							},
							{
								Name:        "channel",
								Description: "The channel escalation alerts are posted to",
								Type:        discordgo.ApplicationCommandOptionChannel,
								Required:    true,
							},
						},
					},
					{
						Name:        "disable",
						Description: "Disable escalation",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
					},
					{
						Name:        "reset",
						Description: "Return all escalated threads to open",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
					},
				},
			},
			{
				Name:        "thread",
				Description: "Manage individual threads",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "reset",
						Description: "Return a thread to open and restart its staleness clock",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:         "thread",
								Description:  "The thread to reset",
								Type:         discordgo.ApplicationCommandOptionChannel,
								ChannelTypes: threadChannelTypes,
								Required:     true,
							},
						},
					},
				},
			},
			{
				Name:        "settings",
				Description: "General settings",
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "dms",
						Description: "Enable or disable DM notifications for deleted replies",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "enabled",
								Description: "Set to True to enable DMs, False to disable",
								Type:        discordgo.ApplicationCommandOptionBoolean,
								Required:    true,
							},
						},
					},
					{
						Name:        "resolve",
						Description: "Choose whether support roles may mark threads solved",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Options: []*discordgo.ApplicationCommandOption{
							{
								Name:        "by_support",
								Description: "True: OP and support roles. False: OP only",
								Type:        discordgo.ApplicationCommandOptionBoolean,
								Required:    true,
							},
						},
					},
					{
						Name:        "view",
						Description: "Display the current configuration",
						Type:        discordgo.ApplicationCommandOptionSubCommand,
					},
				},
			},
			{
				Name:        "help",
				Description: "Show a list of all available commands",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
