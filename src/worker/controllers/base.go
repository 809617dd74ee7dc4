package controllers

import (
	"context"
	"sync"

	"papertrading/src/scheduler"
	"papertrading/src/services"
	"papertrading/src/utils"
)

type Controller struct {
	Valuations     services.ValuationServiceI
	SchedulerMutex sync.Mutex
	Scheduler      *scheduler.ScheduledTask
	running        sync.Mutex
}

func NewController(valuations services.ValuationServiceI) *Controller {
	return &Controller{Valuations: valuations}
}

// RefreshValuations runs one refresh over every account. Overlapping runs are
// skipped and report ok=false.
func (c *Controller) RefreshValuations(ctx context.Context) (summary services.RefreshSummary, ok bool, err error) {
	if !c.running.TryLock() {
		utils.LoggerFromContext(ctx).Warn("valuation refresh already running")
		return services.RefreshSummary{}, false, nil
	}
	defer c.running.Unlock()

	summary, err = c.Valuations.RefreshAll(ctx)
	return summary, true, err
}

// ScheduleRefresh replaces any existing schedule with cronSpec.
func (c *Controller) ScheduleRefresh(ctx context.Context, cronSpec string) error {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	if c.Scheduler != nil {
		c.Scheduler.Cancel()
		c.Scheduler = nil
	}

	logger := utils.LoggerFromContext(ctx)
	task, err := scheduler.NewScheduledTask(cronSpec, func() {
		if _, _, err := c.RefreshValuations(ctx); err != nil {
			logger.WithError(err).Error("scheduled valuation refresh failed")
		}
	})
	if err != nil {
		return err
	}
	c.Scheduler = task
	logger.WithField("cron", cronSpec).Info("valuation refresh scheduled")
	return nil
}

func (c *Controller) StopScheduler() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	if c.Scheduler != nil {
		c.Scheduler.Cancel()
		c.Scheduler = nil
	}
}
