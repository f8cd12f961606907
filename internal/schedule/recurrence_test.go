package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herptrack/herptrack/internal/model"
)

func TestNextDue(t *testing.T) {
	basis := time.Date(2025, time.March, 10, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name         string
		frequency    model.Frequency
		intervalDays int
		want         time.Time
	}{
		{"Daily", model.FrequencyDaily, 0, basis.AddDate(0, 0, 1)},
		{"Every Other Day", model.FrequencyEveryOtherDay, 0, basis.AddDate(0, 0, 2)},
		{"Twice Weekly", model.FrequencyTwiceWeekly, 0, basis.AddDate(0, 0, 3)},
		{"Weekly", model.FrequencyWeekly, 0, basis.AddDate(0, 0, 7)},
		{"Biweekly", model.FrequencyBiweekly, 0, basis.AddDate(0, 0, 14)},
		{"Monthly", model.FrequencyMonthly, 0, basis.AddDate(0, 1, 0)},
		{"Custom", model.FrequencyCustom, 5, basis.AddDate(0, 0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDue(tt.frequency, tt.intervalDays, nil, basis)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(basis), "next due must be strictly later than basis")
			assert.False(t, got.Before(basis.AddDate(0, 0, 1)), "next due must be at least a day out")
		})
	}
}

func TestNextDueMonthEnd(t *testing.T) {
	t.Run("Jan 31 Lands On Feb 28", func(t *testing.T) {
		basis := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)
		got, err := NextDue(model.FrequencyMonthly, 0, nil, basis)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("Jan 31 Lands On Feb 29 In Leap Years", func(t *testing.T) {
		basis := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
		got, err := NextDue(model.FrequencyMonthly, 0, nil, basis)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("Mid Month Keeps Its Day", func(t *testing.T) {
		basis := time.Date(2025, time.April, 15, 8, 0, 0, 0, time.UTC)
		got, err := NextDue(model.FrequencyMonthly, 0, nil, basis)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.May, 15, 8, 0, 0, 0, time.UTC), got)
	})

	t.Run("Dec Rolls Into January", func(t *testing.T) {
		basis := time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC)
		got, err := NextDue(model.FrequencyMonthly, 0, nil, basis)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.January, 31, 12, 0, 0, 0, time.UTC), got)
	})
}

func TestNextDueScheduledTime(t *testing.T) {
	basis := time.Date(2025, time.March, 10, 14, 30, 45, 123, time.UTC)
	tod := &model.TimeOfDay{Hour: 9, Minute: 15}

	got, err := NextDue(model.FrequencyWeekly, 0, tod, basis)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 17, 9, 15, 0, 0, time.UTC), got)
	assert.Zero(t, got.Second(), "seconds must be zeroed")
	assert.Zero(t, got.Nanosecond(), "sub-second must be zeroed")
}

func TestNextDueInvalidConfig(t *testing.T) {
	basis := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

	t.Run("Custom Without Interval", func(t *testing.T) {
		_, err := NextDue(model.FrequencyCustom, 0, nil, basis)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFrequencyConfig)
	})

	t.Run("Custom With Negative Interval", func(t *testing.T) {
		_, err := NextDue(model.FrequencyCustom, -3, nil, basis)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFrequencyConfig)
	})

	t.Run("Unknown Frequency", func(t *testing.T) {
		_, err := NextDue(model.Frequency("fortnightly"), 0, nil, basis)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFrequencyConfig)
	})
}

func TestInitialDue(t *testing.T) {
	basis := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)

	t.Run("No Scheduled Time Defaults To Tomorrow At Nine", func(t *testing.T) {
		got := InitialDue(nil, basis)
		assert.Equal(t, time.Date(2025, time.March, 11, 9, 0, 0, 0, time.UTC), got)
	})

	t.Run("Time Still Ahead Today", func(t *testing.T) {
		got := InitialDue(&model.TimeOfDay{Hour: 18, Minute: 0}, basis)
		assert.Equal(t, time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC), got)
	})

	t.Run("Time Already Passed Rolls To Tomorrow", func(t *testing.T) {
		got := InitialDue(&model.TimeOfDay{Hour: 8, Minute: 30}, basis)
		assert.Equal(t, time.Date(2025, time.March, 11, 8, 30, 0, 0, time.UTC), got)
	})

	t.Run("Exactly Now Rolls To Tomorrow", func(t *testing.T) {
		got := InitialDue(&model.TimeOfDay{Hour: 14, Minute: 0}, basis)
		assert.Equal(t, time.Date(2025, time.March, 11, 14, 0, 0, 0, time.UTC), got)
	})
}
