package daemons

import (
	"github.com/jasonlvhit/gocron"

	"github.com/zsmartex/rampx/jobs"
)

// CronJob runs the periodic jobs on one scheduler.
type CronJob struct {
	Scheduler *gocron.Scheduler
}

func NewCronJob() *CronJob {
	return &CronJob{Scheduler: gocron.NewScheduler()}
}

func (c *CronJob) Register(seconds uint64, job jobs.Job) {
	c.Scheduler.Every(seconds).Seconds().Do(job.Process)
}

func (c *CronJob) Start() {
	<-c.Scheduler.Start()
}

func (c *CronJob) Stop() {
	c.Scheduler.Clear()
}
