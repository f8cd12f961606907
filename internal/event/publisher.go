package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/model"
)

const (
	careStreamName       = "CARE"
	taskCompletedSubject = "care.task.completed"
	taskSkippedSubject   = "care.task.skipped"
	reminderDueSubject   = "care.reminder.due"
	streamMaxAge         = 7 * 24 * time.Hour
)

// TaskEvent is the payload published for completions and skips
type TaskEvent struct {
	TaskID      string    `json:"task_id"`
	TaskName    string    `json:"task_name"`
	AnimalID    string    `json:"animal_id,omitempty"`
	LogID       string    `json:"log_id"`
	Skipped     bool      `json:"skipped"`
	SkipReason  string    `json:"skip_reason,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	NextDueAt   time.Time `json:"next_due_at"`
}

// ReminderEvent is the payload published when a due scan finds a task
// needing attention
type ReminderEvent struct {
	TaskID   string    `json:"task_id"`
	TaskName string    `json:"task_name"`
	AnimalID string    `json:"animal_id,omitempty"`
	DueAt    time.Time `json:"due_at"`
	Bucket   string    `json:"bucket"`
	SentAt   time.Time `json:"sent_at"`
}

// Publisher publishes care events to JetStream so downstream
// collaborators (notification senders, UI refresh) can subscribe.
// Delivery is their concern, not ours.
type Publisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

// NewPublisher creates a publisher and ensures the care stream exists
func NewPublisher(js nats.JetStreamContext, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		js:     js,
		logger: logger.Named("event"),
	}

	_, err := js.AddStream(&nats.StreamConfig{
		Name:     careStreamName,
		Subjects: []string{"care.>"},
		Storage:  nats.FileStorage,
		MaxAge:   streamMaxAge,
	})
	if err != nil {
		if err == nats.ErrStreamNameAlreadyInUse {
			p.logger.Info("Using existing care stream", zap.String("stream", careStreamName))
			return p, nil
		}
		return nil, fmt.Errorf("failed to create care stream: %w", err)
	}

	p.logger.Info("Created care stream", zap.String("stream", careStreamName))
	return p, nil
}

// TaskCompleted publishes a completion event
func (p *Publisher) TaskCompleted(ctx context.Context, task *model.CareTask, log *model.CompletionLog) error {
	return p.publishTaskEvent(taskCompletedSubject, task, log)
}

// TaskSkipped publishes a skip event
func (p *Publisher) TaskSkipped(ctx context.Context, task *model.CareTask, log *model.CompletionLog) error {
	return p.publishTaskEvent(taskSkippedSubject, task, log)
}

func (p *Publisher) publishTaskEvent(subject string, task *model.CareTask, log *model.CompletionLog) error {
	event := TaskEvent{
		TaskID:      task.ID,
		TaskName:    task.Name,
		AnimalID:    task.AnimalID,
		LogID:       log.ID,
		Skipped:     log.Skipped,
		SkipReason:  log.SkipReason,
		CompletedAt: log.CompletedAt,
		NextDueAt:   task.NextDueAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	if _, err := p.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	p.logger.Debug("Published task event",
		zap.String("subject", subject),
		zap.String("task_id", task.ID))
	return nil
}

// ReminderDue publishes a reminder event for a due or overdue task
func (p *Publisher) ReminderDue(ctx context.Context, event ReminderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder event: %w", err)
	}

	if _, err := p.js.Publish(reminderDueSubject, data); err != nil {
		return fmt.Errorf("failed to publish reminder event: %w", err)
	}
	return nil
}
