package lifecycle

import (
	"testing"
	"time"

	"forumguard/models"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() models.GuildConfig {
	config := models.DefaultGuildConfig("guild-1")
	config.MonitoredChannels = []string{"forum-1"}
	config.SupportRoles = []string{"role-support"}
	return config
}

func openState() models.ThreadState {
	return models.NewThreadState("thread-1", "guild-1", "forum-1", "user-op", baseTime)
}

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func TestApplySolutionTagByOP(t *testing.T) {
	state := openState()
	effects, changed := ApplySolutionTag(&state, testConfig(), "user-op", nil)
	if !changed {
		t.Fatal("OP applying the solution tag should resolve the thread")
	}
	if state.Status != models.ThreadResolved {
		t.Fatalf("expected status %q, got %q", models.ThreadResolved, state.Status)
	}
	got := kinds(effects)
	if len(got) != 2 || got[0] != EffectArchiveThread || got[1] != EffectSolvedNotice {
		t.Fatalf("expected archive + solved notice, got %v", got)
	}
}

func TestApplySolutionTagBySupport(t *testing.T) {
	state := openState()
	_, changed := ApplySolutionTag(&state, testConfig(), "user-helper", []string{"role-support"})
	if !changed {
		t.Fatal("support member should be able to resolve by default")
	}
	if state.Status != models.ThreadResolved {
		t.Fatalf("expected status %q, got %q", models.ThreadResolved, state.Status)
	}
}

func TestApplySolutionTagSupportDisallowed(t *testing.T) {
	config := testConfig()
	config.ResolveBySupport = false

	state := openState()
	_, changed := ApplySolutionTag(&state, config, "user-helper", []string{"role-support"})
	if changed {
		t.Fatal("support member must not resolve when the guild disallows it")
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("state must be untouched, got %q", state.Status)
	}
}

func TestApplySolutionTagByStrangerIgnored(t *testing.T) {
	state := openState()
	effects, changed := ApplySolutionTag(&state, testConfig(), "user-random", nil)
	if changed || len(effects) != 0 {
		t.Fatalf("unauthorized tag add must be a no-op, changed=%v effects=%v", changed, effects)
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("state must be untouched, got %q", state.Status)
	}
}

func TestApplySolutionTagOnResolvedIsNoOp(t *testing.T) {
	state := openState()
	state.Status = models.ThreadResolved

	effects, changed := ApplySolutionTag(&state, testConfig(), "user-op", nil)
	if changed || len(effects) != 0 {
		t.Fatal("re-applying the solution tag to a resolved thread must not archive twice")
	}
}

func TestApplySolutionTagOnEscalatedResolves(t *testing.T) {
	state := openState()
	state.Status = models.ThreadEscalated

	_, changed := ApplySolutionTag(&state, testConfig(), "user-op", nil)
	if !changed {
		t.Fatal("an escalated thread can still be resolved")
	}
	if state.Status != models.ThreadResolved {
		t.Fatalf("expected status %q, got %q", models.ThreadResolved, state.Status)
	}
}

func TestRemoveSolutionTagReopens(t *testing.T) {
	state := openState()
	state.Status = models.ThreadResolved
	now := baseTime.Add(48 * time.Hour)

	effects, changed := RemoveSolutionTag(&state, testConfig(), "user-op", nil, now)
	if !changed {
		t.Fatal("removing the solution tag from a resolved thread should reopen it")
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("expected status %q, got %q", models.ThreadOpen, state.Status)
	}
	if !state.LastQualifyingReply.Equal(now) {
		t.Fatalf("staleness clock should restart at reopen time, got %v", state.LastQualifyingReply)
	}
	got := kinds(effects)
	if len(got) != 2 || got[0] != EffectUnarchiveThread || got[1] != EffectReopenedNotice {
		t.Fatalf("expected unarchive + reopened notice, got %v", got)
	}
}

func TestRemoveSolutionTagOnOpenIsNoOp(t *testing.T) {
	state := openState()
	_, changed := RemoveSolutionTag(&state, testConfig(), "user-op", nil, baseTime.Add(time.Hour))
	if changed {
		t.Fatal("removing a tag from an open thread must not change anything")
	}
}

func TestRemoveSolutionTagOnEscalatedIsNoOp(t *testing.T) {
	// Escalated is not a tag-driven status; tag removal must not clear it.
	state := openState()
	state.Status = models.ThreadEscalated

	_, changed := RemoveSolutionTag(&state, testConfig(), "user-op", nil, baseTime.Add(time.Hour))
	if changed {
		t.Fatal("tag removal must not touch an escalated thread")
	}
	if state.Status != models.ThreadEscalated {
		t.Fatalf("expected status %q, got %q", models.ThreadEscalated, state.Status)
	}
}

func TestQualifyingReplyAdvancesClock(t *testing.T) {
	state := openState()
	at := baseTime.Add(3 * time.Hour)
	if !QualifyingReply(&state, at) {
		t.Fatal("later reply should advance the clock")
	}
	if !state.LastQualifyingReply.Equal(at) {
		t.Fatalf("clock should be %v, got %v", at, state.LastQualifyingReply)
	}
}

func TestQualifyingReplyNeverMovesClockBackward(t *testing.T) {
	state := openState()
	state.LastQualifyingReply = baseTime.Add(5 * time.Hour)

	if QualifyingReply(&state, baseTime.Add(time.Hour)) {
		t.Fatal("an out-of-order reply must not move the clock backward")
	}
	if !state.LastQualifyingReply.Equal(baseTime.Add(5 * time.Hour)) {
		t.Fatalf("clock moved to %v", state.LastQualifyingReply)
	}
}

func TestQualifyingReplyClearsEscalated(t *testing.T) {
	state := openState()
	state.Status = models.ThreadEscalated

	if !QualifyingReply(&state, baseTime.Add(time.Hour)) {
		t.Fatal("a qualifying reply on an escalated thread must change it")
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("expected status %q, got %q", models.ThreadOpen, state.Status)
	}
}

func TestEscalateStaleThread(t *testing.T) {
	state := openState()
	settings := models.EscalationSettings{
		Enabled:         true,
		StalenessWindow: 24 * time.Hour,
		NotifyChannelID: "channel-alerts",
	}
	now := baseTime.Add(48 * time.Hour)

	effects, changed := Escalate(&state, settings, now)
	if !changed {
		t.Fatal("a thread stale past the window should escalate")
	}
	if state.Status != models.ThreadEscalated {
		t.Fatalf("expected status %q, got %q", models.ThreadEscalated, state.Status)
	}
	if len(effects) != 1 || effects[0].Kind != EffectEscalationNotice {
		t.Fatalf("expected a single escalation notice, got %v", effects)
	}
	if effects[0].ChannelID != "channel-alerts" {
		t.Fatalf("notice should target the configured channel, got %q", effects[0].ChannelID)
	}
	if effects[0].Elapsed != 48*time.Hour {
		t.Fatalf("expected elapsed 48h, got %v", effects[0].Elapsed)
	}
}

func TestEscalateFreshThreadIsNoOp(t *testing.T) {
	state := openState()
	settings := models.EscalationSettings{Enabled: true, StalenessWindow: 24 * time.Hour}

	_, changed := Escalate(&state, settings, baseTime.Add(time.Hour))
	if changed {
		t.Fatal("a thread inside the window must not escalate")
	}
}

func TestEscalateDisabledIsNoOp(t *testing.T) {
	state := openState()
	settings := models.EscalationSettings{Enabled: false, StalenessWindow: 24 * time.Hour}

	_, changed := Escalate(&state, settings, baseTime.Add(72*time.Hour))
	if changed {
		t.Fatal("escalation must not fire when disabled")
	}
}

func TestEscalateOnlyOnce(t *testing.T) {
	state := openState()
	settings := models.EscalationSettings{Enabled: true, StalenessWindow: 24 * time.Hour}
	now := baseTime.Add(48 * time.Hour)

	if _, changed := Escalate(&state, settings, now); !changed {
		t.Fatal("first escalation should fire")
	}
	if _, changed := Escalate(&state, settings, now.Add(time.Hour)); changed {
		t.Fatal("an already escalated thread must not escalate again")
	}
}

func TestResetResolvedThread(t *testing.T) {
	state := openState()
	state.Status = models.ThreadResolved
	now := baseTime.Add(10 * time.Hour)

	effects, changed := Reset(&state, now)
	if !changed {
		t.Fatal("reset should reopen a resolved thread")
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("expected status %q, got %q", models.ThreadOpen, state.Status)
	}
	if !state.LastQualifyingReply.Equal(now) {
		t.Fatalf("clock should restart at %v, got %v", now, state.LastQualifyingReply)
	}
	if len(effects) != 1 || effects[0].Kind != EffectUnarchiveThread {
		t.Fatalf("a resolved thread should be unarchived on reset, got %v", effects)
	}
}

func TestResetEscalatedThread(t *testing.T) {
	state := openState()
	state.Status = models.ThreadEscalated

	effects, changed := Reset(&state, baseTime.Add(time.Hour))
	if !changed {
		t.Fatal("reset should reopen an escalated thread")
	}
	if len(effects) != 0 {
		t.Fatalf("an escalated thread was never archived, got effects %v", effects)
	}
}

func TestResetOpenThreadIsNoOp(t *testing.T) {
	state := openState()
	before := state.LastQualifyingReply

	_, changed := Reset(&state, baseTime.Add(time.Hour))
	if changed {
		t.Fatal("resetting an open thread must be a no-op")
	}
	if !state.LastQualifyingReply.Equal(before) {
		t.Fatal("clock must be untouched")
	}
}
