// Package policy decides whether a reply in a monitored thread is permitted.
// It is a pure predicate: no I/O, no side effects. The dispatcher owns
// deletion and DM notification for denied replies.
package policy

import (
	"forumguard/models"
)

// Reason identifies which rule produced a decision.
type Reason string

const (
	// ReasonUnmonitored means the thread's parent channel is not monitored,
	// so the policy does not apply. The reply is allowed but does not count
	// as activity.
	ReasonUnmonitored Reason = "unmonitored"
	// ReasonOP means the author is the thread's original poster.
	ReasonOP Reason = "op"
	// ReasonSupport means the author holds a support role.
	ReasonSupport Reason = "support"
	// ReasonNotPermitted means none of the allow rules matched.
	ReasonNotPermitted Reason = "not_permitted"
)

// Decision is the outcome of evaluating a reply.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Qualifying reports whether the reply counts as activity for staleness
// purposes: a reply from the OP or a support member does, a reply in an
// unmonitored channel does not.
func (d Decision) Qualifying() bool {
	return d.Allowed && (d.Reason == ReasonOP || d.Reason == ReasonSupport)
}

// Evaluate applies the reply-permission rules in order: unmonitored parent
// channel allows, then OP, then support role membership; everything else is
// denied. Message content never enters into it.
func Evaluate(reply models.ReplyEvent, config models.GuildConfig, state models.ThreadState, authorRoles []string) Decision {
	if !config.IsMonitored(state.ParentID) {
		return Decision{Allowed: true, Reason: ReasonUnmonitored}
	}
	if reply.AuthorID == state.OPID {
		return Decision{Allowed: true, Reason: ReasonOP}
	}
	if config.HasSupportRole(authorRoles) {
		return Decision{Allowed: true, Reason: ReasonSupport}
	}
	return Decision{Allowed: false, Reason: ReasonNotPermitted}
}
