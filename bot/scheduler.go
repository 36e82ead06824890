package bot

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a named cron job.
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// newScheduler builds a cron whose jobs never overlap with themselves.
func newScheduler() *cron.Cron {
	logger := cron.PrintfLogger(&log.Logger)
	return cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

// startScheduler starts the cron jobs.
func startScheduler(jobs []Job) (*cron.Cron, error) {
	log.Info().Msg("Initializing scheduler...")
	c := newScheduler()
	for _, job := range jobs {
		if _, err := c.AddFunc(job.Schedule, job.Run); err != nil {
			return nil, fmt.Errorf("could not schedule %s (%q): %w", job.Name, job.Schedule, err)
		}
		log.Info().Str("job", job.Name).Str("schedule", job.Schedule).Msg("Cron job scheduled")
	}
	c.Start()
	return c, nil
}

// stopScheduler stops the cron jobs and waits for running ones.
func stopScheduler(c *cron.Cron) {
	if c != nil {
		<-c.Stop().Done()
		log.Info().Msg("Scheduler stopped.")
	}
}
