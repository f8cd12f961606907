package schedule

import "time"

// Bucket is a display-only temporal classification of a due instant.
// Buckets are recomputed on every read and never persisted.
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketMorning   Bucket = "morning"
	BucketAfternoon Bucket = "afternoon"
	BucketEvening   Bucket = "evening"
	BucketNight     Bucket = "night"
	BucketTomorrow  Bucket = "tomorrow"
	BucketWeek      Bucket = "week"
	BucketFuture    Bucket = "future"
)

// BucketOrder is the deterministic display ordering for bucket groups.
// Renderers omit empty buckets, never the classification.
var BucketOrder = []Bucket{
	BucketOverdue,
	BucketMorning,
	BucketAfternoon,
	BucketEvening,
	BucketNight,
	BucketTomorrow,
	BucketWeek,
	BucketFuture,
}

// Classify assigns dueAt to exactly one bucket relative to now.
//
// Overdue-ness is a strict instant comparison: a task due at this exact
// instant is not overdue. Every other bucket compares local calendar
// dates in loc, so tasks due at 23:59 and 00:01 of the same local day
// never straddle a UTC day boundary.
func Classify(dueAt, now time.Time, loc *time.Location) Bucket {
	if dueAt.Before(now) {
		return BucketOverdue
	}

	due := dueAt.In(loc)
	cur := now.In(loc)
	dayDiff := daysBetween(localDate(cur), localDate(due))

	switch {
	case dayDiff == 0:
		switch h := due.Hour(); {
		case h < 12:
			return BucketMorning
		case h < 17:
			return BucketAfternoon
		case h < 21:
			return BucketEvening
		default:
			return BucketNight
		}
	case dayDiff == 1:
		return BucketTomorrow
	case dayDiff < 7:
		return BucketWeek
	default:
		return BucketFuture
	}
}

// localDate drops the time-of-day, pinning the calendar date in UTC so
// day arithmetic stays exact across DST transitions
func localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference b - a between two
// localDate values
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
