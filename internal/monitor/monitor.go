// Package monitor periodically logs gui library counters.
package monitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"touchpanel/internal/gui"
	"touchpanel/internal/log"
)

// StatsFunc returns a snapshot of the library counters. It must not need
// the GUI lock; gui.Lib.Stats qualifies.
type StatsFunc func() gui.Stats

// parser accepts an optional seconds field and descriptors like "@every 1m".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Monitor reports stats on a cron schedule.
type Monitor struct {
	stats StatsFunc
	cron  *cron.Cron
	last  gui.Stats
}

// New validates schedule and returns a monitor. An empty schedule returns
// nil, meaning reporting is disabled.
func New(schedule string, stats StatsFunc) (*Monitor, error) {
	if schedule == "" {
		return nil, nil
	}
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("monitor: invalid schedule %q: %w", schedule, err)
	}
	m := &Monitor{stats: stats, cron: cron.New(cron.WithParser(parser))}
	m.cron.Schedule(sched, cron.FuncJob(m.report))
	return m, nil
}

// Run reports until ctx is cancelled. A nil monitor returns immediately.
func (m *Monitor) Run(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.cron.Start()
	<-ctx.Done()
	<-m.cron.Stop().Done()
	return nil
}

// report logs the counters and their change since the previous report.
func (m *Monitor) report() {
	s := m.stats()
	log.Info("gui stats",
		"tick_ms", s.Tick,
		"task_runs", s.TaskRuns,
		"refreshes", s.Refreshes,
		"flushes", s.Flushes,
		"flushed_px", s.FlushedPixels,
		"events", s.Events,
		"task_runs_delta", s.TaskRuns-m.last.TaskRuns,
		"flushes_delta", s.Flushes-m.last.Flushes,
	)
	m.last = s
}
