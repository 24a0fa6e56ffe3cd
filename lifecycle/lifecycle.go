// Package lifecycle implements the per-thread state machine driven by
// solution tags, qualifying replies, and the escalation sweep. Transitions
// are pure functions over a ThreadState; they mutate the state in place and
// return the side effects the caller must execute. Persistence and platform
// I/O stay with the caller.
package lifecycle

import (
	"time"

	"forumguard/models"
)

// EffectKind identifies an outbound side effect requested by a transition.
type EffectKind string

const (
	// EffectArchiveThread archives and locks a solved thread.
	EffectArchiveThread EffectKind = "archive_thread"
	// EffectUnarchiveThread unarchives and unlocks a reopened thread.
	EffectUnarchiveThread EffectKind = "unarchive_thread"
	// EffectSolvedNotice posts the closure notice into the thread.
	EffectSolvedNotice EffectKind = "solved_notice"
	// EffectReopenedNotice posts the reopening notice into the thread.
	EffectReopenedNotice EffectKind = "reopened_notice"
	// EffectEscalationNotice posts the stale-thread alert to the guild's
	// notification channel.
	EffectEscalationNotice EffectKind = "escalation_notice"
)

// Effect is one outbound side effect. ChannelID is only set for notification
// effects targeting a channel other than the thread itself.
type Effect struct {
	Kind      EffectKind
	ThreadID  string
	ChannelID string
	ActorID   string
	Elapsed   time.Duration
}

// tagActorAuthorized reports whether the actor may drive solution tag
// transitions on this thread: the OP always may, support members may when the
// guild allows it. Anyone else is ignored so that hostile or accidental tag
// changes cannot alter thread state.
func tagActorAuthorized(state models.ThreadState, config models.GuildConfig, actorID string, actorRoles []string) bool {
	if actorID == state.OPID {
		return true
	}
	return config.ResolveBySupport && config.HasSupportRole(actorRoles)
}

// ApplySolutionTag handles the configured solution tag being added to a
// thread. Open and Escalated threads become Resolved; the thread is archived
// and a closure notice posted. Returns false (with no effects) when the actor
// is not authorized or the thread is already Resolved.
func ApplySolutionTag(state *models.ThreadState, config models.GuildConfig, actorID string, actorRoles []string) ([]Effect, bool) {
	if !tagActorAuthorized(*state, config, actorID, actorRoles) {
		return nil, false
	}
	if state.Status != models.ThreadOpen && state.Status != models.ThreadEscalated {
		return nil, false
	}
	state.Status = models.ThreadResolved
	return []Effect{
		{Kind: EffectArchiveThread, ThreadID: state.ThreadID},
		{Kind: EffectSolvedNotice, ThreadID: state.ThreadID, ActorID: actorID},
	}, true
}

// RemoveSolutionTag handles the configured solution tag being removed. Only a
// Resolved thread reacts: it reopens, is unarchived, and its staleness clock
// restarts at now. Tag removal while Open or Escalated is a no-op — Escalated
// is not tag-driven.
func RemoveSolutionTag(state *models.ThreadState, config models.GuildConfig, actorID string, actorRoles []string, now time.Time) ([]Effect, bool) {
	if !tagActorAuthorized(*state, config, actorID, actorRoles) {
		return nil, false
	}
	if state.Status != models.ThreadResolved {
		return nil, false
	}
	state.Status = models.ThreadOpen
	state.LastQualifyingReply = now
	return []Effect{
		{Kind: EffectUnarchiveThread, ThreadID: state.ThreadID},
		{Kind: EffectReopenedNotice, ThreadID: state.ThreadID, ActorID: actorID},
	}, true
}

// QualifyingReply records activity from the OP or a support member. The
// staleness clock always advances; an Escalated thread returns to Open (the
// only non-tag path back).
func QualifyingReply(state *models.ThreadState, at time.Time) bool {
	changed := false
	if at.After(state.LastQualifyingReply) {
		state.LastQualifyingReply = at
		changed = true
	}
	if state.Status == models.ThreadEscalated {
		state.Status = models.ThreadOpen
		changed = true
	}
	return changed
}

// Escalate transitions an Open thread past its staleness window to Escalated
// and requests the notification. The Escalated status itself is the
// de-duplication guard: subsequent sweeps skip non-Open threads.
func Escalate(state *models.ThreadState, settings models.EscalationSettings, now time.Time) ([]Effect, bool) {
	if !settings.Enabled || state.Status != models.ThreadOpen {
		return nil, false
	}
	elapsed := now.Sub(state.LastQualifyingReply)
	if elapsed < settings.StalenessWindow {
		return nil, false
	}
	state.Status = models.ThreadEscalated
	return []Effect{{
		Kind:      EffectEscalationNotice,
		ThreadID:  state.ThreadID,
		ChannelID: settings.NotifyChannelID,
		ActorID:   state.OPID,
		Elapsed:   elapsed,
	}}, true
}

// Reset forces a Resolved or Escalated thread back to Open and restarts the
// staleness clock. Invoked by the explicit reset commands only. A previously
// Resolved thread is unarchived.
func Reset(state *models.ThreadState, now time.Time) ([]Effect, bool) {
	if state.Status == models.ThreadOpen {
		return nil, false
	}
	wasResolved := state.Status == models.ThreadResolved
	state.Status = models.ThreadOpen
	state.LastQualifyingReply = now
	if wasResolved {
		return []Effect{{Kind: EffectUnarchiveThread, ThreadID: state.ThreadID}}, true
	}
	return nil, true
}
