// Package scheduler owns the cron instance that drives the simulation tick and
// the background refresh jobs.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// NewCron creates the shared cron instance: second-resolution specs, panics
// recovered and logged.
func NewCron() *cron.Cron {
	logger := cron.PrintfLogger(log.Default())
	return cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(logger)))
}

// CronTicker runs fixed-interval functions as cron entries.
type CronTicker struct {
	Cron *cron.Cron
}

// NewCronTicker creates a ticker over c.
func NewCronTicker(c *cron.Cron) *CronTicker {
	return &CronTicker{Cron: c}
}

// Every schedules fn every interval, rounded down to whole seconds with a one
// second minimum. A run is skipped while the previous one is still going. The
// returned function removes the entry.
func (t *CronTicker) Every(interval time.Duration, fn func()) func() {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))).Then(cron.FuncJob(fn))
	id := t.Cron.Schedule(cron.Every(interval), job)
	return func() { t.Cron.Remove(id) }
}
