package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			slowJob("article publisher", time.Millisecond*100),
			slowJob("session cleanup", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "tracker.Finish did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			slowJob("article publisher", time.Millisecond*100),
			slowJob("session cleanup", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"session cleanup"}, unfinished)
	})
}

// A job that takes the given time to wind down after cancellation.
func slowJob(name string, shutdownTime time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(shutdownTime)
		<-timer.C
		job.Finish()
	}()
	return job
}
