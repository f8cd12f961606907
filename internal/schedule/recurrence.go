package schedule

import (
	"fmt"
	"time"

	"github.com/herptrack/herptrack/internal/model"
)

const (
	defaultDueHour   = 9
	defaultDueMinute = 0
)

// NextDue computes the next due instant for a task that was just
// completed or skipped at basis. The offset is a calendar offset in the
// basis instant's location; when scheduledTime is set, the result's
// time-of-day is overwritten with it.
func NextDue(freq model.Frequency, customIntervalDays int, scheduledTime *model.TimeOfDay, basis time.Time) (time.Time, error) {
	var next time.Time

	switch freq {
	case model.FrequencyDaily:
		next = basis.AddDate(0, 0, 1)
	case model.FrequencyEveryOtherDay:
		next = basis.AddDate(0, 0, 2)
	case model.FrequencyTwiceWeekly:
		// Fixed 3-day approximation, not a true Tue/Fri cadence. The
		// expected-count math in reliability.go assumes the same
		// interval; change both together or neither.
		next = basis.AddDate(0, 0, 3)
	case model.FrequencyWeekly:
		next = basis.AddDate(0, 0, 7)
	case model.FrequencyBiweekly:
		next = basis.AddDate(0, 0, 14)
	case model.FrequencyMonthly:
		next = addMonthClamped(basis)
	case model.FrequencyCustom:
		if customIntervalDays < 1 {
			return time.Time{}, fmt.Errorf("%w: custom frequency requires a positive interval, got %d",
				ErrInvalidFrequencyConfig, customIntervalDays)
		}
		next = basis.AddDate(0, 0, customIntervalDays)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown frequency %q", ErrInvalidFrequencyConfig, freq)
	}

	if scheduledTime != nil {
		next = atTimeOfDay(next, *scheduledTime)
	}
	return next, nil
}

// InitialDue computes the first due instant for a brand-new task with
// no prior completion. With a scheduled time that has already passed
// today, the task rolls forward one day; without a scheduled time it
// defaults to tomorrow at 09:00.
func InitialDue(scheduledTime *model.TimeOfDay, basis time.Time) time.Time {
	if scheduledTime == nil {
		return atTimeOfDay(basis.AddDate(0, 0, 1), model.TimeOfDay{Hour: defaultDueHour, Minute: defaultDueMinute})
	}

	due := atTimeOfDay(basis, *scheduledTime)
	if !due.After(basis) {
		due = due.AddDate(0, 0, 1)
	}
	return due
}

// addMonthClamped adds one calendar month, landing on the last valid
// day of the target month when the source day would overflow it
// (Jan 31 -> Feb 28/29, never Mar 2).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfNext := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(firstOfNext.Year(), firstOfNext.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// atTimeOfDay keeps t's calendar date and overwrites its time-of-day,
// zeroing seconds and below
func atTimeOfDay(t time.Time, tod model.TimeOfDay) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, t.Location())
}
