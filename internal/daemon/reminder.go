package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/piggymobile/piggy/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reminderMessage = "You haven't logged any expenses today. Take a minute to record them."

// runReminder schedules the daily expense reminder and blocks until ctx ends.
func (s *Service) runReminder(ctx context.Context) error {
	sched, err := cron.ParseStandard(s.cfg.ReminderSchedule)
	if err != nil {
		return fmt.Errorf("reminder schedule %q: %w", s.cfg.ReminderSchedule, err)
	}

	c := cron.New()
	c.Schedule(sched, cron.FuncJob(func() {
		s.setNextReminder(sched.Next(s.now()))
		s.remind(ctx)
	}))
	s.setNextReminder(sched.Next(s.now()))
	c.Start()
	s.log.WithField("next", s.snapshotStatus().NextReminder).Info("reminder scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (s *Service) setNextReminder(at time.Time) {
	s.mu.Lock()
	s.nextReminder = at
	s.mu.Unlock()
}

// remind emits a reminder event when the user has no expenses logged today.
// It reports whether an event was published.
func (s *Service) remind(ctx context.Context) bool {
	today := model.DateKey(s.now())
	n, err := s.store.CountOnDate(ctx, s.cfg.Session.UserID, today)
	if err != nil {
		s.log.WithError(err).Warn("reminder: counting today's expenses")
		return false
	}
	if n > 0 {
		s.log.WithField("count", n).Debug("reminder skipped")
		return false
	}

	s.mu.Lock()
	s.publishLocked(Event{
		Type:      EventReminder,
		Timestamp: s.now(),
		Snapshot:  s.snapshot,
		Message:   reminderMessage,
	})
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"date": today, "user": s.cfg.Session.Email}).Info(reminderMessage)
	return true
}
