// Package dispatcher routes inbound gateway events to the access policy and
// the lifecycle engine, and executes the side effects they return. It is the
// only place where decisions turn into platform I/O.
package dispatcher

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"

	"forumguard/database"
	"forumguard/lifecycle"
	"forumguard/models"
	"forumguard/policy"
	"forumguard/utils"
)

const (
	defaultMaxAttempts = 4
	defaultBackoffBase = 250 * time.Millisecond
)

// Dispatcher wires the store, the decision logic, and the platform gateway
// together. Now is injectable for tests and defaults to time.Now.
type Dispatcher struct {
	Store   *database.Store
	Gateway Gateway
	Now     func() time.Time

	// MaxAttempts and BackoffBase bound the retry of outbound calls on
	// transient platform errors.
	MaxAttempts uint
	BackoffBase time.Duration
}

// New creates a dispatcher with default retry settings.
func New(store *database.Store, gw Gateway) *Dispatcher {
	return &Dispatcher{
		Store:       store,
		Gateway:     gw,
		Now:         time.Now,
		MaxAttempts: defaultMaxAttempts,
		BackoffBase: defaultBackoffBase,
	}
}

// callPlatform runs one outbound call, retrying transient failures with
// bounded binary-exponential backoff. Permission and other permanent errors
// are returned immediately without further attempts.
func (d *Dispatcher) callPlatform(fn func() error) error {
	var final error
	retry.Retry(func(attempt uint) error {
		err := fn()
		final = err
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			// Returning nil stops the retry loop; final carries the error.
			return nil
		}
		return err
	}, strategy.Limit(d.MaxAttempts), strategy.Backoff(backoff.BinaryExponential(d.BackoffBase)))
	return final
}

// surfacePermission reports a missing-permission failure to the guild's
// notification channel so moderators see it; there is nothing to retry.
func (d *Dispatcher) surfacePermission(config models.GuildConfig, operation, threadID string, err error) {
	utils.Error("Dispatcher", operation, fmt.Sprintf("Missing permissions on thread %s: %v", threadID, err))
	if config.Escalation.NotifyChannelID == "" {
		return
	}
	notice := utils.PermissionNoticeEmbed(operation, threadID)
	if err := d.callPlatform(func() error {
		return d.Gateway.PostNotification(config.Escalation.NotifyChannelID, "", notice)
	}); err != nil {
		log.Printf("Could not surface permission failure for thread %s: %v", threadID, err)
	}
}

// loadOrSynthesizeState returns the thread's lifecycle record, creating one
// from gateway metadata when the thread predates monitoring. The bool result
// reports whether a record is available; false means the caller should treat
// the event as outside policy (fail open).
func (d *Dispatcher) loadOrSynthesizeState(guildID, threadID string, config models.GuildConfig) (models.ThreadState, bool, error) {
	state, err := d.Store.GetThreadState(threadID)
	if err == nil {
		return state, true, nil
	}
	if !errors.Is(err, database.ErrThreadNotFound) {
		return state, false, fmt.Errorf("failed to load thread state %s: %w", threadID, err)
	}

	meta, err := d.Gateway.ThreadInfo(threadID)
	if err != nil {
		// Best effort only: without metadata there is no OP to compare
		// against, so the event passes through unmoderated.
		log.Printf("Could not fetch metadata for untracked thread %s: %v", threadID, err)
		return models.ThreadState{}, false, nil
	}
	if !config.IsMonitored(meta.ParentID) {
		return models.ThreadState{ThreadID: threadID, GuildID: guildID, ParentID: meta.ParentID, OPID: meta.OwnerID, Status: models.ThreadOpen}, true, nil
	}

	state = models.NewThreadState(threadID, guildID, meta.ParentID, meta.OwnerID, meta.CreatedAt)
	if err := d.Store.PutThreadState(state); err != nil {
		return state, false, fmt.Errorf("failed to persist synthesized state for %s: %w", threadID, err)
	}
	log.Printf("Synthesized lifecycle record for previously untracked thread %s (OP %s)", threadID, meta.OwnerID)
	return state, true, nil
}

// OnReplyCreated evaluates a reply against the access policy. Denied replies
// are deleted (and the author optionally DMed); allowed qualifying replies
// advance the thread's staleness clock and clear an Escalated status.
func (d *Dispatcher) OnReplyCreated(reply models.ReplyEvent, authorRoles []string) error {
	config, err := d.Store.GetGuildConfig(reply.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %s: %w", reply.GuildID, err)
	}
	if len(config.MonitoredChannels) == 0 {
		return nil
	}

	state, ok, err := d.loadOrSynthesizeState(reply.GuildID, reply.ThreadID, config)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	decision := policy.Evaluate(reply, config, state, authorRoles)
	if !decision.Allowed {
		return d.removeReply(reply, config)
	}

	if !decision.Qualifying() {
		return nil
	}
	_, err = d.Store.UpdateThreadState(reply.ThreadID, func(st *models.ThreadState) (bool, error) {
		return lifecycle.QualifyingReply(st, reply.Timestamp), nil
	})
	if err != nil && !errors.Is(err, database.ErrThreadNotFound) {
		return fmt.Errorf("failed to record qualifying reply for %s: %w", reply.ThreadID, err)
	}
	return nil
}

// removeReply deletes a denied reply and optionally DMs the author. The
// staleness clock is never touched for removed replies.
func (d *Dispatcher) removeReply(reply models.ReplyEvent, config models.GuildConfig) error {
	err := d.callPlatform(func() error {
		return d.Gateway.DeleteMessage(reply.ThreadID, reply.MessageID)
	})
	if err != nil {
		if IsPermission(err) {
			d.surfacePermission(config, "delete message", reply.ThreadID, err)
			return nil
		}
		if IsNotFound(err) {
			// Already gone; nothing to notify about.
			return nil
		}
		return fmt.Errorf("failed to delete message %s: %w", reply.MessageID, err)
	}
	log.Printf("Deleted reply %s from %s in thread %s", reply.MessageID, reply.AuthorID, reply.ThreadID)

	if !config.DMOnDelete {
		return nil
	}
	if err := d.callPlatform(func() error {
		return d.Gateway.SendDM(reply.AuthorID, utils.RemovalNoticeEmbed(reply.ThreadID))
	}); err != nil {
		// DMs can be disabled user-side; never worth failing the event over.
		log.Printf("Could not DM %s about removed reply: %v", reply.AuthorID, err)
	}
	return nil
}

// OnTagChanged reacts to a solution tag being added to or removed from a
// thread. Changes to other tags, unmonitored threads, and unauthorized actors
// are ignored.
func (d *Dispatcher) OnTagChanged(event models.TagEvent, actorRoles []string) error {
	config, err := d.Store.GetGuildConfig(event.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %s: %w", event.GuildID, err)
	}

	state, ok, err := d.loadOrSynthesizeState(event.GuildID, event.ThreadID, config)
	if err != nil {
		return err
	}
	if !ok || !config.IsMonitored(state.ParentID) {
		return nil
	}
	solutionTag, configured := config.SolutionTag(state.ParentID)
	if !configured || solutionTag != event.TagID {
		return nil
	}

	var effects []lifecycle.Effect
	_, err = d.Store.UpdateThreadState(event.ThreadID, func(st *models.ThreadState) (bool, error) {
		var changed bool
		if event.Added {
			effects, changed = lifecycle.ApplySolutionTag(st, config, event.ActorID, actorRoles)
		} else {
			effects, changed = lifecycle.RemoveSolutionTag(st, config, event.ActorID, actorRoles, d.Now())
		}
		return changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply tag change on thread %s: %w", event.ThreadID, err)
	}
	d.runEffects(config, effects)
	return nil
}

// OnThreadObserved tracks a thread newly created in a monitored forum.
func (d *Dispatcher) OnThreadObserved(guildID, threadID, parentID, opID string, createdAt time.Time) error {
	config, err := d.Store.GetGuildConfig(guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %s: %w", guildID, err)
	}
	if !config.IsMonitored(parentID) {
		return nil
	}
	if _, err := d.Store.GetThreadState(threadID); err == nil {
		return nil
	}
	state := models.NewThreadState(threadID, guildID, parentID, opID, createdAt)
	if err := d.Store.PutThreadState(state); err != nil {
		return fmt.Errorf("failed to track thread %s: %w", threadID, err)
	}
	log.Printf("Now tracking thread %s in forum %s (OP %s)", threadID, parentID, opID)
	return nil
}

// OnThreadDeleted drops the lifecycle record for a thread removed upstream.
func (d *Dispatcher) OnThreadDeleted(threadID string) error {
	return d.Store.DeleteThreadState(threadID)
}

// EscalateThread applies the staleness transition to one thread and emits the
// notification effect. Called by the escalation sweeper only.
func (d *Dispatcher) EscalateThread(config models.GuildConfig, threadID string, now time.Time) error {
	var effects []lifecycle.Effect
	_, err := d.Store.UpdateThreadState(threadID, func(st *models.ThreadState) (bool, error) {
		var changed bool
		effects, changed = lifecycle.Escalate(st, config.Escalation, now)
		return changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to escalate thread %s: %w", threadID, err)
	}
	d.runEffects(config, effects)
	return nil
}

// ResetThread forces a thread back to Open, restarting its staleness clock.
func (d *Dispatcher) ResetThread(guildID, threadID string) error {
	config, err := d.Store.GetGuildConfig(guildID)
	if err != nil {
		return fmt.Errorf("failed to load config for guild %s: %w", guildID, err)
	}
	var effects []lifecycle.Effect
	_, err = d.Store.UpdateThreadState(threadID, func(st *models.ThreadState) (bool, error) {
		var changed bool
		effects, changed = lifecycle.Reset(st, d.Now())
		return changed, nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset thread %s: %w", threadID, err)
	}
	d.runEffects(config, effects)
	return nil
}

// ResetEscalations returns every Escalated thread in a guild to Open and
// reports how many were reset.
func (d *Dispatcher) ResetEscalations(guildID string) (int, error) {
	threadIDs, err := d.Store.ListEscalatedThreads(guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to list escalated threads for %s: %w", guildID, err)
	}
	count := 0
	for _, threadID := range threadIDs {
		if err := d.ResetThread(guildID, threadID); err != nil {
			log.Printf("Could not reset escalated thread %s: %v", threadID, err)
			continue
		}
		count++
	}
	return count, nil
}

// runEffects executes the side effects a transition requested. Each effect is
// retried independently; a failure in one never blocks the others.
func (d *Dispatcher) runEffects(config models.GuildConfig, effects []lifecycle.Effect) {
	for _, effect := range effects {
		if err := d.runEffect(config, effect); err != nil {
			if IsPermission(err) {
				d.surfacePermission(config, string(effect.Kind), effect.ThreadID, err)
				continue
			}
			log.Printf("Side effect %s on thread %s failed: %v", effect.Kind, effect.ThreadID, err)
		}
	}
}

func (d *Dispatcher) runEffect(config models.GuildConfig, effect lifecycle.Effect) error {
	switch effect.Kind {
	case lifecycle.EffectArchiveThread:
		return d.callPlatform(func() error { return d.Gateway.ArchiveThread(effect.ThreadID) })
	case lifecycle.EffectUnarchiveThread:
		return d.callPlatform(func() error { return d.Gateway.UnarchiveThread(effect.ThreadID) })
	case lifecycle.EffectSolvedNotice:
		return d.callPlatform(func() error {
			return d.Gateway.PostThreadNotice(effect.ThreadID, utils.ThreadSolvedEmbed(effect.ActorID))
		})
	case lifecycle.EffectReopenedNotice:
		return d.callPlatform(func() error {
			return d.Gateway.PostThreadNotice(effect.ThreadID, utils.ThreadReopenedEmbed())
		})
	case lifecycle.EffectEscalationNotice:
		if effect.ChannelID == "" {
			return fmt.Errorf("escalation enabled for guild %s but no notification channel configured", config.GuildID)
		}
		return d.callPlatform(func() error {
			return d.Gateway.PostNotification(effect.ChannelID, "", utils.EscalationEmbed(effect.ThreadID, effect.ActorID, effect.Elapsed))
		})
	default:
		return fmt.Errorf("unknown effect kind %q", effect.Kind)
	}
}
