package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/event"
	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/schedule"
)

// TaskLister supplies the task snapshot a scan runs over
type TaskLister interface {
	ListTasksWithLogs(ctx context.Context) ([]model.TaskWithLogs, error)
}

// Publisher receives reminder events for due tasks
type Publisher interface {
	ReminderDue(ctx context.Context, e event.ReminderEvent) error
}

// Scanner periodically scans for tasks that are overdue or due today
// and publishes reminder events. Delivering the reminders to a user is
// a downstream concern.
type Scanner struct {
	logger    *zap.Logger
	store     TaskLister
	clock     schedule.Clock
	publisher Publisher
	loc       *time.Location
	cron      *cron.Cron
	spec      string
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// NewScanner creates a scanner that runs on the given cron spec
func NewScanner(store TaskLister, clock schedule.Clock, loc *time.Location, publisher Publisher, spec string, logger *zap.Logger) *Scanner {
	named := logger.Named("reminder")
	cronOptions := []cron.Option{
		cron.WithChain(cron.Recover(&cronLogger{logger: named.Named("cron")})),
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scanner{
		logger:    named,
		store:     store,
		clock:     clock,
		publisher: publisher,
		loc:       loc,
		cron:      cron.New(cronOptions...),
		spec:      spec,
	}
}

// Start schedules the scan job and starts the cron runner
func (s *Scanner) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.scan(context.Background()) }); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Reminder scanner started", zap.String("spec", s.spec))
	return nil
}

// Stop stops the cron runner and waits for a running scan to finish
func (s *Scanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// scan classifies every active task and publishes a reminder for each
// one that is overdue or due sometime today
func (s *Scanner) scan(ctx context.Context) {
	items, err := s.store.ListTasksWithLogs(ctx)
	if err != nil {
		s.logger.Error("Failed to load tasks for reminder scan", zap.Error(err))
		return
	}

	now := s.clock.Now()
	sent := 0
	for _, it := range items {
		if !it.Task.Active {
			continue
		}

		bucket := schedule.Classify(it.Task.NextDueAt, now, s.loc)
		if !needsReminder(bucket) {
			continue
		}

		reminder := event.ReminderEvent{
			TaskID:   it.Task.ID,
			TaskName: it.Task.Name,
			AnimalID: it.Task.AnimalID,
			DueAt:    it.Task.NextDueAt,
			Bucket:   string(bucket),
			SentAt:   now,
		}
		if err := s.publisher.ReminderDue(ctx, reminder); err != nil {
			s.logger.Error("Failed to publish reminder",
				zap.String("task_id", it.Task.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("Reminder scan finished",
		zap.Int("tasks", len(items)),
		zap.Int("reminders", sent))
}

// needsReminder reports whether a bucket warrants a reminder: overdue
// tasks and anything due later today
func needsReminder(b schedule.Bucket) bool {
	switch b {
	case schedule.BucketOverdue, schedule.BucketMorning, schedule.BucketAfternoon,
		schedule.BucketEvening, schedule.BucketNight:
		return true
	default:
		return false
	}
}
