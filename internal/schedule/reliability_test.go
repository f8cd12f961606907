package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/herptrack/herptrack/internal/model"
)

func dailyTask(id string) model.CareTask {
	return model.CareTask{ID: id, Frequency: model.FrequencyDaily, Active: true}
}

func completionsEvery(now time.Time, step time.Duration, count int) []model.CompletionLog {
	logs := make([]model.CompletionLog, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, model.CompletionLog{
			CompletedAt: now.Add(-time.Duration(i) * step),
		})
	}
	return logs
}

func TestScoreFloor(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("No Tasks", func(t *testing.T) {
		assert.Equal(t, 0, Score(nil, DefaultWindowDays, now))
	})

	t.Run("Only Excluded Tasks", func(t *testing.T) {
		items := []model.TaskWithLogs{
			{Task: model.CareTask{ID: "a", Frequency: model.FrequencyCustom, Active: true}}, // invalid interval
			{Task: model.CareTask{ID: "b", Frequency: model.FrequencyDaily, Active: false}},
		}
		assert.Equal(t, 0, Score(items, DefaultWindowDays, now))
	})
}

func TestScoreCap(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	// One task logged far beyond its expected count must not mask the
	// untouched weekly task.
	overLogged := model.TaskWithLogs{
		Task: dailyTask("over"),
		Logs: completionsEvery(now, 6*time.Hour, 100),
	}
	neglected := model.TaskWithLogs{
		Task: model.CareTask{ID: "weekly", Frequency: model.FrequencyWeekly, Active: true},
	}

	// expected: 30 (daily) + 5 (weekly); completed: capped 30 + 0
	got := Score([]model.TaskWithLogs{overLogged, neglected}, 30, now)
	assert.Equal(t, 86, got)

	t.Run("Single Over-Logged Task Caps At 100", func(t *testing.T) {
		assert.Equal(t, 100, Score([]model.TaskWithLogs{overLogged}, 30, now))
	})
}

func TestScore(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Perfect Daily Adherence", func(t *testing.T) {
		items := []model.TaskWithLogs{{
			Task: dailyTask("a"),
			Logs: completionsEvery(now, 24*time.Hour, 30),
		}}
		assert.Equal(t, 100, Score(items, 30, now))
	})

	t.Run("Half Adherence Rounds", func(t *testing.T) {
		items := []model.TaskWithLogs{{
			Task: dailyTask("a"),
			Logs: completionsEvery(now, 24*time.Hour, 15),
		}}
		assert.Equal(t, 50, Score(items, 30, now))
	})

	t.Run("Skipped Logs Do Not Count", func(t *testing.T) {
		logs := completionsEvery(now, 24*time.Hour, 10)
		for i := range logs {
			logs[i].Skipped = true
		}
		items := []model.TaskWithLogs{{Task: dailyTask("a"), Logs: logs}}
		assert.Equal(t, 0, Score(items, 30, now))
	})

	t.Run("Logs Outside Window Do Not Count", func(t *testing.T) {
		items := []model.TaskWithLogs{{
			Task: dailyTask("a"),
			Logs: []model.CompletionLog{
				{CompletedAt: now.AddDate(0, 0, -31)},
				{CompletedAt: now.Add(time.Hour)},
			},
		}}
		assert.Equal(t, 0, Score(items, 30, now))
	})

	t.Run("Monthly Expects One", func(t *testing.T) {
		items := []model.TaskWithLogs{{
			Task: model.CareTask{ID: "m", Frequency: model.FrequencyMonthly, Active: true},
			Logs: []model.CompletionLog{{CompletedAt: now.AddDate(0, 0, -5)}},
		}}
		assert.Equal(t, 100, Score(items, 30, now))
	})

	t.Run("Custom Interval Longer Than Window Expects One", func(t *testing.T) {
		items := []model.TaskWithLogs{{
			Task: model.CareTask{ID: "c", Frequency: model.FrequencyCustom, CustomIntervalDays: 45, Active: true},
		}}
		assert.Equal(t, 0, Score(items, 30, now))

		items[0].Logs = []model.CompletionLog{{CompletedAt: now.AddDate(0, 0, -1)}}
		assert.Equal(t, 100, Score(items, 30, now))
	})
}

func TestExpectedCompletions(t *testing.T) {
	tests := []struct {
		name string
		task model.CareTask
		want int
	}{
		{"Daily", model.CareTask{Frequency: model.FrequencyDaily}, 30},
		{"Every Other Day", model.CareTask{Frequency: model.FrequencyEveryOtherDay}, 15},
		{"Twice Weekly", model.CareTask{Frequency: model.FrequencyTwiceWeekly}, 9}, // ceil(30/3.5)
		{"Weekly", model.CareTask{Frequency: model.FrequencyWeekly}, 5},
		{"Biweekly", model.CareTask{Frequency: model.FrequencyBiweekly}, 3},
		{"Monthly", model.CareTask{Frequency: model.FrequencyMonthly}, 1},
		{"Custom Ten Days", model.CareTask{Frequency: model.FrequencyCustom, CustomIntervalDays: 10}, 3},
		{"Custom Invalid", model.CareTask{Frequency: model.FrequencyCustom}, 0},
		{"Unknown", model.CareTask{Frequency: model.Frequency("sometimes")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expectedCompletions(tt.task, 30))
		})
	}
}
