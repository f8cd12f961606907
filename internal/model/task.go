package model

import (
	"time"
)

// Frequency represents how often a care task recurs
type Frequency string

const (
	FrequencyDaily         Frequency = "daily"
	FrequencyEveryOtherDay Frequency = "every_other_day"
	FrequencyTwiceWeekly   Frequency = "twice_weekly"
	FrequencyWeekly        Frequency = "weekly"
	FrequencyBiweekly      Frequency = "biweekly"
	FrequencyMonthly       Frequency = "monthly"
	FrequencyCustom        Frequency = "custom"
)

// TaskType represents the kind of care a task covers
type TaskType string

const (
	TaskTypeFeeding    TaskType = "feeding"
	TaskTypeMisting    TaskType = "misting"
	TaskTypeCleaning   TaskType = "cleaning"
	TaskTypeSupplement TaskType = "supplement"
)

// TimeOfDay is a wall-clock time in the owner's local timezone
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// CareTask represents a recurring care obligation for an animal or enclosure
type CareTask struct {
	ID                 string     `json:"id"`
	AnimalID           string     `json:"animal_id,omitempty"`
	EnclosureID        string     `json:"enclosure_id,omitempty"`
	Name               string     `json:"name"`
	Type               TaskType   `json:"type"`
	Frequency          Frequency  `json:"frequency"`
	CustomIntervalDays int        `json:"custom_interval_days,omitempty"`
	ScheduledTime      *TimeOfDay `json:"scheduled_time,omitempty"`

	// NextDueAt is mutated only by the scheduling engine after a
	// completion or skip, or on initial creation.
	NextDueAt time.Time `json:"next_due_at"`
	Active    bool      `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletionLog is an immutable record of a task's execution or skip.
// Logs are append-only; history is never rewritten to move a due date.
type CompletionLog struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
	Skipped     bool      `json:"skipped"`
	SkipReason  string    `json:"skip_reason,omitempty"`

	// Free-form care details; irrelevant to scheduling
	FeederType string  `json:"feeder_type,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	Notes      string  `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TaskWithLogs pairs a task with its completion history for read-side
// aggregation
type TaskWithLogs struct {
	Task CareTask        `json:"task"`
	Logs []CompletionLog `json:"logs"`
}
