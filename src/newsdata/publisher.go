package newsdata

import (
	"time"

	"github.com/cloudnews/cloudnews/src/config"
	"github.com/cloudnews/cloudnews/src/jobs"
	"github.com/jpillora/backoff"
)

/*
Starts the background publisher. Submitted articles are not published
immediately; they sit for a grace period and then get promoted in batches by
this job. Each poll promotes everything whose grace period has elapsed, so a
missed poll only delays publication, never loses it.
*/
func StartPublisher(store ArticleStore) *jobs.Job {
	job := jobs.New("article publisher")

	pollInterval := time.Duration(config.Config.Publisher.PollIntervalSeconds) * time.Second
	publishDelay := time.Duration(config.Config.Publisher.PublishDelayMinutes) * time.Minute

	go func() {
		defer job.Finish()
		job.Logger.Info().
			Stringer("delay", publishDelay).
			Msg("Running article publisher")

		b := backoff.Backoff{
			Min: pollInterval,
			Max: 10 * time.Minute,
		}
		for {
			var wait time.Duration
			n, err := store.PublishDue(job.Ctx, time.Now().Add(-publishDelay))
			if err != nil {
				wait = b.Duration()
				job.Logger.Error().Err(err).Msg("failed to publish due articles")
			} else {
				b.Reset()
				wait = pollInterval
				if n > 0 {
					job.Logger.Info().Int("count", n).Msg("Published articles")
				}
			}

			select {
			case <-job.Canceled():
				return
			case <-time.After(wait):
			}
		}
	}()

	return job
}
