package bot

import (
	"log"
	"time"

	"forumguard/escalation"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

var c *cron.Cron

// startScheduler starts the periodic escalation sweep.
func startScheduler(sweeper *escalation.Sweeper) {
	log.Println("Initializing scheduler...")
	c = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	tick := viper.GetString("bot.escalationTick")
	_, err := c.AddFunc(tick, func() {
		sweeper.Sweep(time.Now())
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Printf("Escalation sweep scheduled (%s).", tick)

	// Catch up on threads that went stale while the bot was down.
	if viper.GetBool("bot.sweepAtStartup") {
		go func() {
			log.Println("Performing initial escalation sweep on startup...")
			sweeper.Sweep(time.Now())
		}()
	}
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}
