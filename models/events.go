package models

import "time"

// ReplyEvent describes a reply posted inside a thread. It is consumed once by
// the access policy and never persisted.
type ReplyEvent struct {
	GuildID   string
	ThreadID  string
	MessageID string
	AuthorID  string
	Timestamp time.Time
}

// TagEvent describes an applied-tag change on a thread.
type TagEvent struct {
	GuildID  string
	ThreadID string
	TagID    string
	Added    bool
	ActorID  string
}
