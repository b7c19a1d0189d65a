// Package schedule implements the trigger-side interpretation of a space's
// stored auto-close configuration. The settlement engine itself only stores
// and serves ScheduleConfig; deciding that "now" is close time, and which
// period to close, is this package's job, invoked by the external trigger
// (the autoclose command).
package schedule

import (
	"time"

	"github.com/mmynk/splitweek/internal/models"
)

// window is how far the trigger may drift from the configured close time
// and still fire. Triggers run on coarse external cron ticks.
const window = 5 * time.Minute

// ShouldSettleNow reports whether cfg's close time matches now, within the
// drift window. A nil or disabled config never matches.
func ShouldSettleNow(cfg *models.ScheduleConfig, now time.Time) bool {
	if cfg == nil || !cfg.Enabled {
		return false
	}

	target, err := closeTimeOn(cfg, now)
	if err != nil {
		return false
	}
	diff := now.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	if diff > window {
		return false
	}

	switch cfg.Frequency {
	case models.FrequencyWeekly:
		return int(now.Weekday()) == cfg.WeeklyDay
	case models.FrequencyMonthly:
		return now.Day() == cfg.MonthlyDay
	case models.FrequencyYearly:
		return int(now.Month()) == cfg.YearlyMonth && now.Day() == cfg.YearlyDay
	}
	return false
}

// TargetDate returns a date inside the period the trigger should close:
// the previous week, month or year relative to now, depending on the
// configured frequency.
func TargetDate(cfg *models.ScheduleConfig, now time.Time) time.Time {
	switch cfg.Frequency {
	case models.FrequencyMonthly:
		return now.AddDate(0, -1, 0)
	case models.FrequencyYearly:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

func closeTimeOn(cfg *models.ScheduleConfig, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", cfg.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
