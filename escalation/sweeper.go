// Package escalation periodically re-evaluates every monitored Open thread
// and escalates the stale ones. Staleness is recomputed from the persisted
// last-qualifying-reply timestamp on every sweep, so no escalation timer is
// lost across a restart.
package escalation

import (
	"fmt"
	"log"
	"time"

	"forumguard/database"
	"forumguard/dispatcher"
	"forumguard/utils"
)

// pageSize bounds how many thread records a sweep holds in memory at once.
const pageSize = 100

// Sweeper scans all guilds with escalation enabled.
type Sweeper struct {
	Store      *database.Store
	Dispatcher *dispatcher.Dispatcher
}

// NewSweeper creates a sweeper over the given store and dispatcher.
func NewSweeper(store *database.Store, d *dispatcher.Dispatcher) *Sweeper {
	return &Sweeper{Store: store, Dispatcher: d}
}

// Sweep runs one full pass. Errors on individual guilds or threads are
// logged and skipped; one bad record never stops the scan.
func (s *Sweeper) Sweep(now time.Time) {
	guildIDs, err := s.Store.ListEscalationGuilds()
	if err != nil {
		utils.Error("Escalation", "Sweep", fmt.Sprintf("Sweep aborted, could not list guilds: %v", err))
		return
	}

	for _, guildID := range guildIDs {
		if err := s.sweepGuild(guildID, now); err != nil {
			utils.Error("Escalation", "Sweep", fmt.Sprintf("Sweep failed for guild %s: %v", guildID, err))
		}
	}
}

func (s *Sweeper) sweepGuild(guildID string, now time.Time) error {
	config, err := s.Store.GetGuildConfig(guildID)
	if err != nil {
		return err
	}
	settings := config.Escalation
	if !settings.Enabled || settings.StalenessWindow <= 0 {
		return nil
	}

	after := ""
	for {
		page, err := s.Store.ListOpenThreads(guildID, after, pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, state := range page {
			after = state.ThreadID
			if now.Sub(state.LastQualifyingReply) < settings.StalenessWindow {
				continue
			}
			if err := s.Dispatcher.EscalateThread(config, state.ThreadID, now); err != nil {
				log.Printf("Could not escalate thread %s: %v", state.ThreadID, err)
			}
		}
		if len(page) < pageSize {
			return nil
		}
	}
}
