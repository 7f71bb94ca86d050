package auth

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/metrics"
)

// ScheduleGC runs RunGC on the given cron spec, e.g. "@every 10m". The
// returned func stops the schedule and waits for a running pass.
func (d *BadgerDenylist) ScheduleGC(spec string) (stop func(), err error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, d.gcPass); err != nil {
		return nil, fmt.Errorf("auth: denylist gc schedule %q: %w", spec, err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

func (d *BadgerDenylist) gcPass() {
	if err := d.RunGC(); err != nil {
		metrics.DenylistGCRuns.WithLabelValues(metrics.OutcomeError).Inc()
		logging.Error().Err(err).Msg("denylist gc failed")
		return
	}
	metrics.DenylistGCRuns.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.Debug().Msg("denylist gc done")
}
