package database

import (
	"database/sql"
	"fmt"
	"time"

	"forumguard/models"
)

// GetGuildConfig fetches the entire configuration for a guild. An
// unconfigured guild yields the documented defaults, never an error.
func (s *Store) GetGuildConfig(guildID string) (models.GuildConfig, error) {
	config := models.DefaultGuildConfig(guildID)

	var dmOnDelete, resolveBySupport int
	err := s.db.QueryRow(`SELECT dm_on_delete, resolve_by_support FROM guild_settings WHERE guild_id = ?`, guildID).Scan(&dmOnDelete, &resolveBySupport)
	switch {
	case err == sql.ErrNoRows:
		// Guild has never been configured; defaults apply.
		return config, nil
	case err != nil:
		return config, fmt.Errorf("failed to query guild settings for %s: %w", guildID, err)
	}
	config.DMOnDelete = dmOnDelete != 0
	config.ResolveBySupport = resolveBySupport != 0

	rows, err := s.db.Query(`SELECT channel_id FROM monitored_channels WHERE guild_id = ? ORDER BY channel_id`, guildID)
	if err != nil {
		return config, fmt.Errorf("failed to query monitored channels for %s: %w", guildID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var channelID string
		if err := rows.Scan(&channelID); err != nil {
			return config, fmt.Errorf("failed to scan monitored channel: %w", err)
		}
		config.MonitoredChannels = append(config.MonitoredChannels, channelID)
	}
	if err := rows.Err(); err != nil {
		return config, fmt.Errorf("failed to read monitored channels: %w", err)
	}

	roleRows, err := s.db.Query(`SELECT role_id FROM support_roles WHERE guild_id = ? ORDER BY role_id`, guildID)
	if err != nil {
		return config, fmt.Errorf("failed to query support roles for %s: %w", guildID, err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var roleID string
		if err := roleRows.Scan(&roleID); err != nil {
			return config, fmt.Errorf("failed to scan support role: %w", err)
		}
		config.SupportRoles = append(config.SupportRoles, roleID)
	}
	if err := roleRows.Err(); err != nil {
		return config, fmt.Errorf("failed to read support roles: %w", err)
	}

	tagRows, err := s.db.Query(`SELECT forum_id, tag_id FROM solution_tags WHERE guild_id = ?`, guildID)
	if err != nil {
		return config, fmt.Errorf("failed to query solution tags for %s: %w", guildID, err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var forumID, tagID string
		if err := tagRows.Scan(&forumID, &tagID); err != nil {
			return config, fmt.Errorf("failed to scan solution tag: %w", err)
		}
		config.SolutionTags[forumID] = tagID
	}
	if err := tagRows.Err(); err != nil {
		return config, fmt.Errorf("failed to read solution tags: %w", err)
	}

	var enabled, stalenessSeconds int64
	var notifyChannelID string
	err = s.db.QueryRow(
		`SELECT enabled, staleness_seconds, notify_channel_id
         FROM escalation_settings WHERE guild_id = ?`, guildID,
	).Scan(&enabled, &stalenessSeconds, &notifyChannelID)
	if err != nil && err != sql.ErrNoRows {
		return config, fmt.Errorf("failed to query escalation settings for %s: %w", guildID, err)
	}
	if err == nil {
		config.Escalation = models.EscalationSettings{
			Enabled:         enabled != 0,
			StalenessWindow: time.Duration(stalenessSeconds) * time.Second,
			NotifyChannelID: notifyChannelID,
		}
	}

	return config, nil
}

// AddMonitoredChannel starts moderating a forum channel. Returns false if the
// channel was already monitored.
func (s *Store) AddMonitoredChannel(guildID, channelID string) (bool, error) {
	var added bool
	err := s.withTx(func(tx *sql.Tx) error {
		if err := ensureGuild(tx, guildID); err != nil {
			return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
		}
		res, err := tx.Exec(`INSERT OR IGNORE INTO monitored_channels (guild_id, channel_id) VALUES (?, ?)`, guildID, channelID)
		if err != nil {
			return fmt.Errorf("failed to add monitored channel %s: %w", channelID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		added = n > 0
		return nil
	})
	return added, err
}

// RemoveMonitoredChannel stops moderating a forum channel. The channel's
// solution tag mapping and all of its thread states go with it. Returns false
// if the channel was not monitored.
func (s *Store) RemoveMonitoredChannel(guildID, channelID string) (bool, error) {
	var removed bool
	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM monitored_channels WHERE guild_id = ? AND channel_id = ?`, guildID, channelID)
		if err != nil {
			return fmt.Errorf("failed to remove monitored channel %s: %w", channelID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		removed = n > 0
		if !removed {
			return nil
		}
		if _, err := tx.Exec(`DELETE FROM solution_tags WHERE guild_id = ? AND forum_id = ?`, guildID, channelID); err != nil {
			return fmt.Errorf("failed to clear solution tag for %s: %w", channelID, err)
		}
		if _, err := tx.Exec(`DELETE FROM thread_states WHERE guild_id = ? AND parent_id = ?`, guildID, channelID); err != nil {
			return fmt.Errorf("failed to clear thread states for %s: %w", channelID, err)
		}
		return nil
	})
	return removed, err
}

// AddSupportRole adds a support role. Returns false if it already existed.
func (s *Store) AddSupportRole(guildID, roleID string) (bool, error) {
	var added bool
	err := s.withTx(func(tx *sql.Tx) error {
		if err := ensureGuild(tx, guildID); err != nil {
			return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
		}
		res, err := tx.Exec(`INSERT OR IGNORE INTO support_roles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
		if err != nil {
			return fmt.Errorf("failed to add support role %s: %w", roleID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		added = n > 0
		return nil
	})
	return added, err
}

// RemoveSupportRole removes a support role. Returns false if it wasn't there.
func (s *Store) RemoveSupportRole(guildID, roleID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM support_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to remove support role %s: %w", roleID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// SetSolutionTag maps a monitored forum channel to its solution tag. The
// forum must already be monitored.
func (s *Store) SetSolutionTag(guildID, forumID, tagID string) error {
	return s.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM monitored_channels WHERE guild_id = ? AND channel_id = ?`, guildID, forumID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("channel %s is not monitored", forumID)
		}
		if err != nil {
			return fmt.Errorf("failed to check monitored channel %s: %w", forumID, err)
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO solution_tags (guild_id, forum_id, tag_id) VALUES (?, ?, ?)`, guildID, forumID, tagID); err != nil {
			return fmt.Errorf("failed to set solution tag for %s: %w", forumID, err)
		}
		return nil
	})
}

// ClearSolutionTag removes a forum's solution tag mapping. Returns false if
// none was configured.
func (s *Store) ClearSolutionTag(guildID, forumID string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM solution_tags WHERE guild_id = ? AND forum_id = ?`, guildID, forumID)
	if err != nil {
		return false, fmt.Errorf("failed to clear solution tag for %s: %w", forumID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// SetDMOnDelete sets whether users are DMed when their reply is removed.
func (s *Store) SetDMOnDelete(guildID string, enabled bool) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := ensureGuild(tx, guildID); err != nil {
			return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
		}
		value := 0
		if enabled {
			value = 1
		}
		if _, err := tx.Exec(`UPDATE guild_settings SET dm_on_delete = ? WHERE guild_id = ?`, value, guildID); err != nil {
			return fmt.Errorf("failed to set dm_on_delete for %s: %w", guildID, err)
		}
		return nil
	})
}

// SetResolveBySupport sets whether support members may drive solution tag
// transitions, or only the OP.
func (s *Store) SetResolveBySupport(guildID string, enabled bool) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := ensureGuild(tx, guildID); err != nil {
			return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
		}
		value := 0
		if enabled {
			value = 1
		}
		if _, err := tx.Exec(`UPDATE guild_settings SET resolve_by_support = ? WHERE guild_id = ?`, value, guildID); err != nil {
			return fmt.Errorf("failed to set resolve_by_support for %s: %w", guildID, err)
		}
		return nil
	})
}

// SetEscalationSettings writes a guild's escalation configuration.
func (s *Store) SetEscalationSettings(guildID string, settings models.EscalationSettings) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := ensureGuild(tx, guildID); err != nil {
			return fmt.Errorf("failed to ensure guild %s: %w", guildID, err)
		}
		enabled := 0
		if settings.Enabled {
			enabled = 1
		}
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO escalation_settings
             (guild_id, enabled, staleness_seconds, notify_channel_id)
             VALUES (?, ?, ?, ?)`,
			guildID, enabled, int64(settings.StalenessWindow/time.Second), settings.NotifyChannelID,
		)
		if err != nil {
			return fmt.Errorf("failed to set escalation settings for %s: %w", guildID, err)
		}
		return nil
	})
}

// DisableEscalation turns escalation off for a guild. Returns false if no
// settings existed.
func (s *Store) DisableEscalation(guildID string) (bool, error) {
	res, err := s.db.Exec(`UPDATE escalation_settings SET enabled = 0 WHERE guild_id = ?`, guildID)
	if err != nil {
		return false, fmt.Errorf("failed to disable escalation for %s: %w", guildID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// ListEscalationGuilds returns the IDs of all guilds with escalation enabled.
func (s *Store) ListEscalationGuilds() ([]string, error) {
	rows, err := s.db.Query(`SELECT guild_id FROM escalation_settings WHERE enabled = 1 ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalation guilds: %w", err)
	}
	defer rows.Close()

	var guildIDs []string
	for rows.Next() {
		var guildID string
		if err := rows.Scan(&guildID); err != nil {
			return nil, fmt.Errorf("failed to scan guild ID: %w", err)
		}
		guildIDs = append(guildIDs, guildID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read escalation guilds: %w", err)
	}
	return guildIDs, nil
}
