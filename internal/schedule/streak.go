package schedule

import (
	"sort"
	"time"

	"github.com/herptrack/herptrack/internal/model"
)

// Streak returns the current completion streak for a task's history.
// Skipped logs never count. Walking backward from the most recent log,
// a whole-day gap of at most one keeps the streak alive (completing
// daily, or twice in one day, both preserve it); a gap of two or more
// days breaks it.
func Streak(logs []model.CompletionLog, loc *time.Location) int {
	done := make([]model.CompletionLog, 0, len(logs))
	for _, l := range logs {
		if !l.Skipped {
			done = append(done, l)
		}
	}
	if len(done) == 0 {
		return 0
	}

	sort.Slice(done, func(i, j int) bool {
		return done[i].CompletedAt.After(done[j].CompletedAt)
	})

	streak := 1
	anchor := localDate(done[0].CompletedAt.In(loc))
	for _, l := range done[1:] {
		day := localDate(l.CompletedAt.In(loc))
		if daysBetween(day, anchor) > 1 {
			break
		}
		streak++
		anchor = day
	}
	return streak
}
