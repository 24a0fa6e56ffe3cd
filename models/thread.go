package models

import "time"

// ThreadStatus is the lifecycle status of a tracked thread.
type ThreadStatus string

const (
	ThreadOpen      ThreadStatus = "open"
	ThreadResolved  ThreadStatus = "resolved"
	ThreadEscalated ThreadStatus = "escalated"
)

// ThreadState is the persisted lifecycle record for one monitored thread.
// LastQualifyingReply carries the wall-clock time of the most recent reply
// from the OP or a support member; staleness is always recomputed from it,
// never from an in-process countdown.
type ThreadState struct {
	ThreadID            string       `json:"thread_id"`
	GuildID             string       `json:"guild_id"`
	ParentID            string       `json:"parent_id"`
	OPID                string       `json:"op_id"`
	Status              ThreadStatus `json:"status"`
	LastQualifyingReply time.Time    `json:"last_qualifying_reply"`
	CreatedAt           time.Time    `json:"created_at"`
}

// NewThreadState returns the Open state for a freshly observed thread. The
// staleness clock starts at creation time.
func NewThreadState(threadID, guildID, parentID, opID string, createdAt time.Time) ThreadState {
	return ThreadState{
		ThreadID:            threadID,
		GuildID:             guildID,
		ParentID:            parentID,
		OPID:                opID,
		Status:              ThreadOpen,
		LastQualifyingReply: createdAt,
		CreatedAt:           createdAt,
	}
}
