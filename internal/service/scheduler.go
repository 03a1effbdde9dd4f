package service

import (
	"context"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/internal/cron"
	"github.com/sutaaa0/cashier-app-sub001/internal/monitoring"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

// Scheduler polls once a minute and fires due backups and resets. Settings
// are re-read on every tick so changes apply without a restart, and a fire
// guard keeps a matched minute from firing twice.
type Scheduler struct {
	settingsStore *settings.Store
	backupSvc     *BackupService
	resetSvc      *ResetService
	guard         *cron.FireGuard

	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	now      func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(settingsStore *settings.Store, backupSvc *BackupService, resetSvc *ResetService) *Scheduler {
	return &Scheduler{
		settingsStore: settingsStore,
		backupSvc:     backupSvc,
		resetSvc:      resetSvc,
		guard:         cron.NewFireGuard(),
		interval:      time.Minute,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		now:           time.Now,
	}
}

// Start begins the polling loop in a background goroutine
func (s *Scheduler) Start() {
	logger.Info("SCHEDULER: Starting", map[string]interface{}{
		"interval": s.interval.String(),
	})

	go func() {
		defer close(s.doneCh)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Evaluate immediately so a due minute isn't missed at startup
		s.tick(s.now())

		for {
			select {
			case <-ticker.C:
				s.tick(s.now())
			case <-s.stopCh:
				logger.Info("SCHEDULER: Stopped", nil)
				return
			}
		}
	}()
}

// Stop halts the polling loop and waits for it to finish
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// tick evaluates both schedules for the current minute.
func (s *Scheduler) tick(now time.Time) {
	monitoring.SchedulerTicksTotal.Inc()

	s.checkBackup(now)
	s.checkReset(now)
}

func (s *Scheduler) checkBackup(now time.Time) {
	bs, err := s.settingsStore.LoadBackup()
	if err != nil {
		logger.Error("SCHEDULER: Failed to load backup settings", err, nil)
		return
	}

	if !bs.AutoBackup || !cron.IsDue(bs.Schedule, now) {
		return
	}
	if !s.guard.TryFire("backup", now) {
		return
	}

	monitoring.SchedulerFiresTotal.WithLabelValues("backup").Inc()
	logger.Info("SCHEDULER: Backup schedule due", map[string]interface{}{
		"schedule": bs.Schedule,
	})

	if _, err := s.backupSvc.Run(context.Background(), "scheduler"); err != nil {
		logger.Error("SCHEDULER: Scheduled backup failed", err, nil)
	}
}

func (s *Scheduler) checkReset(now time.Time) {
	rs, err := s.settingsStore.LoadReset()
	if err != nil {
		logger.Error("SCHEDULER: Failed to load reset settings", err, nil)
		return
	}

	if !rs.AutoReset || !resetDue(rs.ScheduleType, now) {
		return
	}
	if !s.guard.TryFire("reset", now) {
		return
	}

	monitoring.SchedulerFiresTotal.WithLabelValues("reset").Inc()
	logger.Info("SCHEDULER: Reset schedule due", map[string]interface{}{
		"schedule_type": string(rs.ScheduleType),
	})

	if _, err := s.resetSvc.Run(context.Background(), ResetRequest{Trigger: "scheduler"}); err != nil {
		logger.Error("SCHEDULER: Scheduled reset failed", err, nil)
	}
}

// resetDue reports whether an automatic reset fires at now. Every period
// fires at midnight on the first day of its boundary month: monthly on the
// 1st of each month, yearly on Jan 1, biennial on Jan 1 of even years and
// quinquennial on Jan 1 of years divisible by five.
func resetDue(scheduleType settings.ResetScheduleType, now time.Time) bool {
	if now.Day() != 1 || now.Hour() != 0 || now.Minute() != 0 {
		return false
	}

	switch scheduleType {
	case settings.ScheduleMonthly:
		return true
	case settings.ScheduleYearly:
		return now.Month() == time.January
	case settings.ScheduleBiennial:
		return now.Month() == time.January && now.Year()%2 == 0
	case settings.ScheduleQuinquennial:
		return now.Month() == time.January && now.Year()%5 == 0
	}
	return false
}
