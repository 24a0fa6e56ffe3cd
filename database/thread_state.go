package database

import (
	"database/sql"
	"fmt"
	"time"

	"forumguard/models"
)

// ErrThreadNotFound is returned when no lifecycle record exists for a thread.
var ErrThreadNotFound = fmt.Errorf("thread state not found")

func scanThreadState(row *sql.Row) (models.ThreadState, error) {
	var state models.ThreadState
	var status string
	var lastReply, createdAt int64
	err := row.Scan(&state.ThreadID, &state.GuildID, &state.ParentID, &state.OPID, &status, &lastReply, &createdAt)
	if err == sql.ErrNoRows {
		return state, ErrThreadNotFound
	}
	if err != nil {
		return state, fmt.Errorf("failed to scan thread state: %w", err)
	}
	state.Status = models.ThreadStatus(status)
	state.LastQualifyingReply = time.Unix(lastReply, 0).UTC()
	state.CreatedAt = time.Unix(createdAt, 0).UTC()
	return state, nil
}

// GetThreadState fetches the lifecycle record for a thread. Returns
// ErrThreadNotFound if the thread isn't tracked.
func (s *Store) GetThreadState(threadID string) (models.ThreadState, error) {
	row := s.db.QueryRow(
		`SELECT thread_id, guild_id, parent_id, op_id, status, last_qualifying_reply, created_at
         FROM thread_states WHERE thread_id = ?`, threadID)
	return scanThreadState(row)
}

// PutThreadState inserts or replaces a thread's lifecycle record.
func (s *Store) PutThreadState(state models.ThreadState) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO thread_states
         (thread_id, guild_id, parent_id, op_id, status, last_qualifying_reply, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		state.ThreadID, state.GuildID, state.ParentID, state.OPID,
		string(state.Status), state.LastQualifyingReply.Unix(), state.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to put thread state %s: %w", state.ThreadID, err)
	}
	return nil
}

// UpdateThreadState applies mutate to a thread's record inside a transaction,
// so a gateway event and a scheduler sweep racing on the same thread cannot
// interleave. mutate returns false to leave the record untouched.
func (s *Store) UpdateThreadState(threadID string, mutate func(*models.ThreadState) (bool, error)) (models.ThreadState, error) {
	var state models.ThreadState
	err := s.withTx(func(tx *sql.Tx) error {
		row := tx.QueryRow(
			`SELECT thread_id, guild_id, parent_id, op_id, status, last_qualifying_reply, created_at
             FROM thread_states WHERE thread_id = ?`, threadID)
		var err error
		state, err = scanThreadState(row)
		if err != nil {
			return err
		}
		changed, err := mutate(&state)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		_, err = tx.Exec(
			`UPDATE thread_states
             SET status = ?, last_qualifying_reply = ?, op_id = ?
             WHERE thread_id = ?`,
			string(state.Status), state.LastQualifyingReply.Unix(), state.OPID, threadID,
		)
		if err != nil {
			return fmt.Errorf("failed to update thread state %s: %w", threadID, err)
		}
		return nil
	})
	return state, err
}

// DeleteThreadState removes a thread's lifecycle record.
func (s *Store) DeleteThreadState(threadID string) error {
	if _, err := s.db.Exec(`DELETE FROM thread_states WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("failed to delete thread state %s: %w", threadID, err)
	}
	return nil
}

// ListOpenThreads returns one page of Open threads for a guild, ordered by
// thread ID. Pass the last thread ID of the previous page as afterThreadID to
// continue; an empty afterThreadID starts from the beginning. The scheduler
// pages through this so a sweep never holds a full guild's threads in memory.
func (s *Store) ListOpenThreads(guildID, afterThreadID string, limit int) ([]models.ThreadState, error) {
	rows, err := s.db.Query(
		`SELECT thread_id, guild_id, parent_id, op_id, status, last_qualifying_reply, created_at
         FROM thread_states
         WHERE guild_id = ? AND status = ? AND thread_id > ?
         ORDER BY thread_id LIMIT ?`,
		guildID, string(models.ThreadOpen), afterThreadID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query open threads for %s: %w", guildID, err)
	}
	defer rows.Close()

	var states []models.ThreadState
	for rows.Next() {
		var state models.ThreadState
		var status string
		var lastReply, createdAt int64
		if err := rows.Scan(&state.ThreadID, &state.GuildID, &state.ParentID, &state.OPID, &status, &lastReply, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan open thread: %w", err)
		}
		state.Status = models.ThreadStatus(status)
		state.LastQualifyingReply = time.Unix(lastReply, 0).UTC()
		state.CreatedAt = time.Unix(createdAt, 0).UTC()
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read open threads: %w", err)
	}
	return states, nil
}

// ListEscalatedThreads returns all Escalated threads for a guild. Used by the
// escalation reset command.
func (s *Store) ListEscalatedThreads(guildID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT thread_id FROM thread_states WHERE guild_id = ? AND status = ? ORDER BY thread_id`,
		guildID, string(models.ThreadEscalated),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalated threads for %s: %w", guildID, err)
	}
	defer rows.Close()

	var threadIDs []string
	for rows.Next() {
		var threadID string
		if err := rows.Scan(&threadID); err != nil {
			return nil, fmt.Errorf("failed to scan escalated thread: %w", err)
		}
		threadIDs = append(threadIDs, threadID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read escalated threads: %w", err)
	}
	return threadIDs, nil
}
