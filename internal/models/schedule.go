package models

import "fmt"

// ScheduleFrequency is how often a space auto-closes its settlement.
type ScheduleFrequency string

const (
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
	FrequencyYearly  ScheduleFrequency = "yearly"
)

// ScheduleConfig is a space's stored auto-close configuration. The engine
// persists and serves it; interpreting it is a trigger-time decision made by
// the external caller (the autoclose command in this repo).
type ScheduleConfig struct {
	Enabled   bool              `json:"enabled"`
	Frequency ScheduleFrequency `json:"frequency"`

	// WeeklyDay is the weekday to close on (0 = Sunday .. 6 = Saturday),
	// used when Frequency is weekly.
	WeeklyDay int `json:"weeklyDay"`

	// MonthlyDay is the day of month (1-31), used when Frequency is monthly.
	MonthlyDay int `json:"monthlyDay"`

	// YearlyMonth (1-12) and YearlyDay (1-31) apply when Frequency is yearly.
	YearlyMonth int `json:"yearlyMonth"`
	YearlyDay   int `json:"yearlyDay"`

	// Time is the close time of day in "HH:MM" (24h).
	Time string `json:"time"`
}

// DefaultSchedule returns the disabled weekly-Monday-18:00 configuration a
// space starts with.
func DefaultSchedule() *ScheduleConfig {
	return &ScheduleConfig{
		Enabled:     false,
		Frequency:   FrequencyWeekly,
		WeeklyDay:   1,
		MonthlyDay:  1,
		YearlyMonth: 1,
		YearlyDay:   1,
		Time:        "18:00",
	}
}

// Validate rejects configurations the trigger could never match.
func (c *ScheduleConfig) Validate() error {
	switch c.Frequency {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", c.Frequency)}
	}
	var hh, mm int
	if _, err := fmt.Sscanf(c.Time, "%d:%d", &hh, &mm); err != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("time %q must be HH:MM", c.Time)}
	}
	if c.WeeklyDay < 0 || c.WeeklyDay > 6 {
		return &ValidationError{Field: "weeklyDay", Reason: "weekday must be 0-6"}
	}
	if c.MonthlyDay < 1 || c.MonthlyDay > 31 {
		return &ValidationError{Field: "monthlyDay", Reason: "day of month must be 1-31"}
	}
	if c.YearlyMonth < 1 || c.YearlyMonth > 12 {
		return &ValidationError{Field: "yearlyMonth", Reason: "month must be 1-12"}
	}
	if c.YearlyDay < 1 || c.YearlyDay > 31 {
		return &ValidationError{Field: "yearlyDay", Reason: "day must be 1-31"}
	}
	return nil
}
