package models

import "time"

// EscalationSettings holds a guild's stale-thread escalation configuration.
type EscalationSettings struct {
	Enabled         bool          `json:"enabled"`
	StalenessWindow time.Duration `json:"staleness_window"`
	NotifyChannelID string        `json:"notify_channel_id"`
}

// GuildConfig represents the full moderation configuration for a single guild.
type GuildConfig struct {
	GuildID           string            `json:"guild_id"`
	MonitoredChannels []string          `json:"monitored_channels"`
	SupportRoles      []string          `json:"support_roles"`
	SolutionTags      map[string]string `json:"solution_tags"` // forum channel ID -> tag ID
	DMOnDelete        bool              `json:"dm_on_delete"`
	// ResolveBySupport lets support members, not just the OP, drive solution
	// tag transitions.
	ResolveBySupport bool               `json:"resolve_by_support"`
	Escalation       EscalationSettings `json:"escalation"`
}

// DefaultGuildConfig returns the configuration an unconfigured guild starts
// with: nothing monitored, DM notifications on, support may resolve,
// escalation disabled.
func DefaultGuildConfig(guildID string) GuildConfig {
	return GuildConfig{
		GuildID:          guildID,
		SolutionTags:     make(map[string]string),
		DMOnDelete:       true,
		ResolveBySupport: true,
	}
}

// IsMonitored reports whether the given forum channel is monitored.
func (c GuildConfig) IsMonitored(channelID string) bool {
	for _, id := range c.MonitoredChannels {
		if id == channelID {
			return true
		}
	}
	return false
}

// HasSupportRole reports whether any of the given role IDs is a support role.
func (c GuildConfig) HasSupportRole(roleIDs []string) bool {
	for _, supportID := range c.SupportRoles {
		for _, roleID := range roleIDs {
			if roleID == supportID {
				return true
			}
		}
	}
	return false
}

// SolutionTag returns the solution tag configured for a forum channel.
func (c GuildConfig) SolutionTag(forumID string) (string, bool) {
	tagID, ok := c.SolutionTags[forumID]
	return tagID, ok
}
