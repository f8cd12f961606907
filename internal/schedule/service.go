package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
)

// Store is the persistence surface the scheduling engine reads and
// writes through. The store owns the data; the engine only computes
// values to write back.
type Store interface {
	// GetTask returns the task with the given id, or nil when it does
	// not exist
	GetTask(ctx context.Context, id string) (*model.CareTask, error)

	// UpdateTaskDue persists a new due instant for a task
	UpdateTaskDue(ctx context.Context, id string, due time.Time) error

	// AppendLog stores a completion log. Logs are append-only.
	AppendLog(ctx context.Context, log *model.CompletionLog) error

	// ListTasksWithLogs returns every task paired with its history
	ListTasksWithLogs(ctx context.Context) ([]model.TaskWithLogs, error)
}

// EventPublisher receives completion events for downstream
// collaborators (reminder senders, UI refresh). Publish failures never
// fail the completion itself.
type EventPublisher interface {
	TaskCompleted(ctx context.Context, task *model.CareTask, log *model.CompletionLog) error
	TaskSkipped(ctx context.Context, task *model.CareTask, log *model.CompletionLog) error
}

// LogFields carries caller-supplied details merged into a completion
// log. All fields are optional.
type LogFields struct {
	FeederType string
	Quantity   float64
	Notes      string
}

// BulkResult reports the per-id outcome of a bulk completion
type BulkResult struct {
	Completed []string
	Failed    []BulkFailure
}

// TaskView is a task annotated with its read-side classifications
type TaskView struct {
	Task   model.CareTask `json:"task"`
	Bucket Bucket         `json:"bucket"`
	Streak int            `json:"streak"`
}

// Overview is the display model for the care dashboard, recomputed
// from raw logs on every read
type Overview struct {
	Buckets     map[Bucket][]TaskView `json:"buckets"`
	Reliability int                   `json:"reliability"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Service owns the lifecycle of each task's next due instant
type Service struct {
	logger *zap.Logger
	store  Store
	clock  Clock
	events EventPublisher
	loc    *time.Location
}

// NewService creates a new schedule service. events may be nil when no
// downstream collaborator is wired.
func NewService(store Store, clock Clock, loc *time.Location, events EventPublisher, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		logger: logger.Named("schedule"),
		store:  store,
		clock:  clock,
		events: events,
		loc:    loc,
	}
}

// ScheduleNew validates a freshly constructed task and assigns its
// first due instant. This is the construction boundary where an invalid
// custom interval is rejected.
func (s *Service) ScheduleNew(task *model.CareTask) error {
	if task.Frequency == model.FrequencyCustom && task.CustomIntervalDays < 1 {
		return fmt.Errorf("%w: custom frequency requires a positive interval, got %d",
			ErrInvalidFrequencyConfig, task.CustomIntervalDays)
	}
	if _, err := NextDue(task.Frequency, task.CustomIntervalDays, task.ScheduledTime, s.clock.Now()); err != nil {
		return err
	}
	task.NextDueAt = InitialDue(task.ScheduledTime, s.clock.Now().In(s.loc))
	return nil
}

// Complete records that a task was done now and advances its due date.
// Deliberately not idempotent: each call is a real-world care event and
// produces its own log. Duplicate-submission guarding belongs to the
// caller.
func (s *Service) Complete(ctx context.Context, taskID string, fields LogFields) (*model.CompletionLog, error) {
	return s.record(ctx, taskID, fields, false, "")
}

// Skip records that a task was deliberately not done and advances its
// due date just like a completion
func (s *Service) Skip(ctx context.Context, taskID, reason string) (*model.CompletionLog, error) {
	return s.record(ctx, taskID, LogFields{}, true, reason)
}

func (s *Service) record(ctx context.Context, taskID string, fields LogFields, skipped bool, skipReason string) (*model.CompletionLog, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	// The calendar offset and time-of-day overwrite in NextDue are
	// relative to basis's location, so the basis must be owner-local.
	basis := s.clock.Now().In(s.loc)
	log := &model.CompletionLog{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		CompletedAt: basis,
		Skipped:     skipped,
		SkipReason:  skipReason,
		FeederType:  fields.FeederType,
		Quantity:    fields.Quantity,
		Notes:       fields.Notes,
		CreatedAt:   basis,
	}
	if err := s.store.AppendLog(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to append completion log: %w", err)
	}

	newDue, err := NextDue(task.Frequency, task.CustomIntervalDays, task.ScheduledTime, basis)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateTaskDue(ctx, task.ID, newDue); err != nil {
		return nil, fmt.Errorf("failed to update task due date: %w", err)
	}
	task.NextDueAt = newDue

	s.logger.Info("Task recorded",
		zap.String("task_id", task.ID),
		zap.String("task_name", task.Name),
		zap.Bool("skipped", skipped),
		zap.Time("next_due_at", newDue))

	s.publish(ctx, task, log)
	return log, nil
}

func (s *Service) publish(ctx context.Context, task *model.CareTask, log *model.CompletionLog) {
	if s.events == nil {
		return
	}

	var err error
	if log.Skipped {
		err = s.events.TaskSkipped(ctx, task, log)
	} else {
		err = s.events.TaskCompleted(ctx, task, log)
	}
	if err != nil {
		s.logger.Warn("Failed to publish task event",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}

// BulkComplete applies Complete to each id sequentially with
// best-effort semantics: a failure on one task never rolls back the
// others. The returned BulkResult always lists both outcomes; the
// error, when non-nil, is a *BulkError carrying the failures.
func (s *Service) BulkComplete(ctx context.Context, taskIDs []string) (*BulkResult, error) {
	result := &BulkResult{}
	for _, id := range taskIDs {
		if _, err := s.Complete(ctx, id, LogFields{}); err != nil {
			s.logger.Warn("Bulk completion failed for task",
				zap.String("task_id", id),
				zap.Error(err))
			result.Failed = append(result.Failed, BulkFailure{TaskID: id, Err: err})
			continue
		}
		result.Completed = append(result.Completed, id)
	}

	if len(result.Failed) > 0 {
		return result, &BulkError{Failures: result.Failed}
	}
	return result, nil
}

// Overview loads a snapshot of all tasks and logs and derives the
// display model: tasks grouped into buckets, per-task streaks, and the
// rolling reliability score. Nothing here is persisted; the snapshot
// may be stale by the time a write lands.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	items, err := s.store.ListTasksWithLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.clock.Now()
	active := make([]model.TaskWithLogs, 0, len(items))
	for _, it := range items {
		if it.Task.Active {
			active = append(active, it)
		}
	}

	overview := &Overview{
		Buckets:     make(map[Bucket][]TaskView),
		Reliability: Score(active, DefaultWindowDays, now),
		GeneratedAt: now,
	}
	for _, it := range active {
		bucket := Classify(it.Task.NextDueAt, now, s.loc)
		overview.Buckets[bucket] = append(overview.Buckets[bucket], TaskView{
			Task:   it.Task,
			Bucket: bucket,
			Streak: Streak(it.Logs, s.loc),
		})
	}
	return overview, nil
}
