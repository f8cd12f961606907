package schedule

import (
	"math"
	"time"

	"github.com/herptrack/herptrack/internal/model"
)

// DefaultWindowDays is the trailing window the reliability score
// summarizes
const DefaultWindowDays = 30

// Score returns a 0-100 percentage of actual vs expected completions
// across a task set over the trailing windowDays ending at now.
//
// Each task's completed count is capped at its expected count so one
// over-logged task cannot mask failures elsewhere. Inactive tasks and
// tasks with nothing expected in the window are excluded from both
// sides of the ratio. With nothing to measure the score is 0, not NaN.
func Score(items []model.TaskWithLogs, windowDays int, now time.Time) int {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	start := now.AddDate(0, 0, -windowDays)

	var totalExpected, totalCompleted int
	for _, it := range items {
		if !it.Task.Active {
			continue
		}
		expected := expectedCompletions(it.Task, windowDays)
		if expected <= 0 {
			continue
		}

		completed := 0
		for _, l := range it.Logs {
			if l.Skipped {
				continue
			}
			if l.CompletedAt.Before(start) || l.CompletedAt.After(now) {
				continue
			}
			completed++
		}
		if completed > expected {
			completed = expected
		}

		totalExpected += expected
		totalCompleted += completed
	}

	if totalExpected == 0 {
		return 0
	}
	return int(math.Round(100 * float64(totalCompleted) / float64(totalExpected)))
}

// expectedCompletions returns how many occurrences a task's frequency
// implies within windowDays. The twice-weekly divisor of 3.5 mirrors
// the 3-day offset approximation in recurrence.go.
func expectedCompletions(t model.CareTask, windowDays int) int {
	switch t.Frequency {
	case model.FrequencyDaily:
		return windowDays
	case model.FrequencyEveryOtherDay:
		return ceilDiv(windowDays, 2)
	case model.FrequencyTwiceWeekly:
		return ceilDiv(windowDays*2, 7) // ceil(windowDays / 3.5)
	case model.FrequencyWeekly:
		return ceilDiv(windowDays, 7)
	case model.FrequencyBiweekly:
		return ceilDiv(windowDays, 14)
	case model.FrequencyMonthly:
		return 1
	case model.FrequencyCustom:
		if t.CustomIntervalDays < 1 {
			return 0
		}
		expected := ceilDiv(windowDays, t.CustomIntervalDays)
		if expected < 1 {
			expected = 1
		}
		return expected
	default:
		return 0
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
