package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/herptrack/herptrack/internal/event"
	"github.com/herptrack/herptrack/internal/model"
	"github.com/herptrack/herptrack/internal/schedule"
)

type staticLister struct {
	items []model.TaskWithLogs
}

func (l *staticLister) ListTasksWithLogs(ctx context.Context) ([]model.TaskWithLogs, error) {
	return l.items, nil
}

type capturingPublisher struct {
	events []event.ReminderEvent
}

func (p *capturingPublisher) ReminderDue(ctx context.Context, e event.ReminderEvent) error {
	p.events = append(p.events, e)
	return nil
}

func TestScan(t *testing.T) {
	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	clock := schedule.FixedClock{Instant: now}

	task := func(id string, due time.Time, active bool) model.TaskWithLogs {
		return model.TaskWithLogs{Task: model.CareTask{
			ID:        id,
			Name:      id,
			Frequency: model.FrequencyDaily,
			NextDueAt: due,
			Active:    active,
		}}
	}

	lister := &staticLister{items: []model.TaskWithLogs{
		task("overdue", now.Add(-time.Hour), true),
		task("today", time.Date(2025, time.March, 10, 20, 0, 0, 0, time.UTC), true),
		task("tomorrow", now.AddDate(0, 0, 1), true),
		task("inactive-overdue", now.Add(-time.Hour), false),
	}}
	publisher := &capturingPublisher{}

	scanner := NewScanner(lister, clock, time.UTC, publisher, "@hourly", zap.NewNop())
	scanner.scan(context.Background())

	assert.Len(t, publisher.events, 2)

	byTask := make(map[string]event.ReminderEvent)
	for _, e := range publisher.events {
		byTask[e.TaskID] = e
	}
	assert.Equal(t, string(schedule.BucketOverdue), byTask["overdue"].Bucket)
	assert.Equal(t, string(schedule.BucketEvening), byTask["today"].Bucket)
	assert.NotContains(t, byTask, "tomorrow")
	assert.NotContains(t, byTask, "inactive-overdue")
}

func TestNeedsReminder(t *testing.T) {
	assert.True(t, needsReminder(schedule.BucketOverdue))
	assert.True(t, needsReminder(schedule.BucketMorning))
	assert.True(t, needsReminder(schedule.BucketNight))
	assert.False(t, needsReminder(schedule.BucketTomorrow))
	assert.False(t, needsReminder(schedule.BucketWeek))
	assert.False(t, needsReminder(schedule.BucketFuture))
}
