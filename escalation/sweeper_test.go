package escalation

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"forumguard/database"
	"forumguard/dispatcher"
	"forumguard/models"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// recordingGateway counts escalation notices and message deletions;
// everything else succeeds silently.
type recordingGateway struct {
	notices []string // channel IDs
	deletes []string // message IDs
}

func (g *recordingGateway) DeleteMessage(channelID, messageID string) error {
	g.deletes = append(g.deletes, messageID)
	return nil
}
func (g *recordingGateway) SendDM(userID string, embed *discordgo.MessageEmbed) error {
	return nil
}
func (g *recordingGateway) ArchiveThread(threadID string) error   { return nil }
func (g *recordingGateway) UnarchiveThread(threadID string) error { return nil }
func (g *recordingGateway) ApplyTag(threadID, tagID string) error { return nil }
func (g *recordingGateway) PostThreadNotice(threadID string, embed *discordgo.MessageEmbed) error {
	return nil
}
func (g *recordingGateway) PostNotification(channelID, content string, embed *discordgo.MessageEmbed) error {
	g.notices = append(g.notices, channelID)
	return nil
}
func (g *recordingGateway) ThreadInfo(threadID string) (dispatcher.ThreadMeta, error) {
	return dispatcher.ThreadMeta{}, fmt.Errorf("not found")
}

func testSweeper(t *testing.T) (*Sweeper, *database.Store, *recordingGateway) {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.AddMonitoredChannel("guild-1", "forum-1"); err != nil {
		t.Fatalf("AddMonitoredChannel: %v", err)
	}
	if err := store.SetEscalationSettings("guild-1", models.EscalationSettings{
		Enabled:         true,
		StalenessWindow: 24 * time.Hour,
		NotifyChannelID: "channel-alerts",
	}); err != nil {
		t.Fatalf("SetEscalationSettings: %v", err)
	}

	gw := &recordingGateway{}
	d := dispatcher.New(store, gw)
	d.BackoffBase = time.Millisecond
	return NewSweeper(store, d), store, gw
}

func putOpenThread(t *testing.T, store *database.Store, threadID string, lastReply time.Time) {
	t.Helper()
	state := models.NewThreadState(threadID, "guild-1", "forum-1", "user-op", lastReply)
	if err := store.PutThreadState(state); err != nil {
		t.Fatalf("PutThreadState: %v", err)
	}
}

func TestSweepEscalatesStaleThreads(t *testing.T) {
	sweeper, store, gw := testSweeper(t)
	putOpenThread(t, store, "thread-stale", baseTime)
	putOpenThread(t, store, "thread-fresh", baseTime.Add(40*time.Hour))

	sweeper.Sweep(baseTime.Add(48 * time.Hour))

	stale, err := store.GetThreadState("thread-stale")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if stale.Status != models.ThreadEscalated {
		t.Fatalf("stale thread should be escalated, got %q", stale.Status)
	}
	fresh, err := store.GetThreadState("thread-fresh")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if fresh.Status != models.ThreadOpen {
		t.Fatalf("fresh thread must stay open, got %q", fresh.Status)
	}
	if len(gw.notices) != 1 || gw.notices[0] != "channel-alerts" {
		t.Fatalf("expected one notice to channel-alerts, got %v", gw.notices)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	sweeper, _, gw := testSweeper(t)
	store := sweeper.Store
	putOpenThread(t, store, "thread-stale", baseTime)

	now := baseTime.Add(48 * time.Hour)
	sweeper.Sweep(now)
	sweeper.Sweep(now.Add(time.Hour))
	sweeper.Sweep(now.Add(2 * time.Hour))

	if len(gw.notices) != 1 {
		t.Fatalf("repeated sweeps must escalate exactly once, got %d notices", len(gw.notices))
	}
}

// A thread left alone for two days with a 24h window survives a restart
// because staleness is recomputed from the persisted timestamp.
func TestSweepPicksUpStaleThreadAfterRestart(t *testing.T) {
	sweeper, store, _ := testSweeper(t)
	putOpenThread(t, store, "thread-1", baseTime)

	// First process instance never sweeps. A fresh sweeper over the same
	// store still sees the thread as stale.
	restarted := NewSweeper(store, sweeper.Dispatcher)
	restarted.Sweep(baseTime.Add(48 * time.Hour))

	state, err := store.GetThreadState("thread-1")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if state.Status != models.ThreadEscalated {
		t.Fatalf("expected escalated after restart sweep, got %q", state.Status)
	}
}

func TestSweepSkipsDisabledGuilds(t *testing.T) {
	sweeper, store, gw := testSweeper(t)
	putOpenThread(t, store, "thread-stale", baseTime)
	if _, err := store.DisableEscalation("guild-1"); err != nil {
		t.Fatalf("DisableEscalation: %v", err)
	}

	sweeper.Sweep(baseTime.Add(48 * time.Hour))

	state, _ := store.GetThreadState("thread-stale")
	if state.Status != models.ThreadOpen {
		t.Fatalf("disabled guild must not escalate, got %q", state.Status)
	}
	if len(gw.notices) != 0 {
		t.Fatalf("no notices expected, got %v", gw.notices)
	}
}

// A thread created at t0 with a 24h window: stale sweep escalates it, an OP
// reply reopens it and restarts the clock, a stranger's reply is deleted
// without touching the clock, and the next sweep stays quiet.
func TestEscalateReopenDenySequence(t *testing.T) {
	sweeper, store, gw := testSweeper(t)
	putOpenThread(t, store, "thread-1", baseTime)

	sweeper.Sweep(baseTime.Add(49 * time.Hour))

	state, err := store.GetThreadState("thread-1")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if state.Status != models.ThreadEscalated {
		t.Fatalf("expected escalated after stale sweep, got %q", state.Status)
	}
	if len(gw.notices) != 1 {
		t.Fatalf("expected one notice, got %v", gw.notices)
	}

	opReplyAt := baseTime.Add(50 * time.Hour)
	opReply := models.ReplyEvent{
		GuildID:   "guild-1",
		ThreadID:  "thread-1",
		MessageID: "msg-op",
		AuthorID:  "user-op",
		Timestamp: opReplyAt,
	}
	if err := sweeper.Dispatcher.OnReplyCreated(opReply, nil); err != nil {
		t.Fatalf("OnReplyCreated (OP): %v", err)
	}
	state, err = store.GetThreadState("thread-1")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if state.Status != models.ThreadOpen {
		t.Fatalf("OP reply should reopen an escalated thread, got %q", state.Status)
	}
	if !state.LastQualifyingReply.Equal(opReplyAt) {
		t.Fatalf("clock should advance to the OP reply time, got %v", state.LastQualifyingReply)
	}

	strangerReply := models.ReplyEvent{
		GuildID:   "guild-1",
		ThreadID:  "thread-1",
		MessageID: "msg-stranger",
		AuthorID:  "user-random",
		Timestamp: baseTime.Add(51 * time.Hour),
	}
	if err := sweeper.Dispatcher.OnReplyCreated(strangerReply, nil); err != nil {
		t.Fatalf("OnReplyCreated (stranger): %v", err)
	}
	if len(gw.deletes) != 1 || gw.deletes[0] != "msg-stranger" {
		t.Fatalf("stranger reply should be deleted, got %v", gw.deletes)
	}
	state, err = store.GetThreadState("thread-1")
	if err != nil {
		t.Fatalf("GetThreadState: %v", err)
	}
	if state.Status != models.ThreadOpen || !state.LastQualifyingReply.Equal(opReplyAt) {
		t.Fatalf("a removed reply must not change state or clock, got %+v", state)
	}

	sweeper.Sweep(baseTime.Add(51 * time.Hour))
	if len(gw.notices) != 1 {
		t.Fatalf("thread is fresh again, sweep must not escalate: %v", gw.notices)
	}
	state, _ = store.GetThreadState("thread-1")
	if state.Status != models.ThreadOpen {
		t.Fatalf("expected open after quiet sweep, got %q", state.Status)
	}
}

func TestSweepPagesThroughManyThreads(t *testing.T) {
	sweeper, store, gw := testSweeper(t)
	// More threads than one page.
	for i := 0; i < pageSize+25; i++ {
		putOpenThread(t, store, fmt.Sprintf("thread-%04d", i), baseTime)
	}

	sweeper.Sweep(baseTime.Add(48 * time.Hour))

	if len(gw.notices) != pageSize+25 {
		t.Fatalf("expected %d escalations, got %d", pageSize+25, len(gw.notices))
	}
	remaining, err := store.ListOpenThreads("guild-1", "", pageSize)
	if err != nil {
		t.Fatalf("ListOpenThreads: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("all threads should be escalated, %d still open", len(remaining))
	}
}
