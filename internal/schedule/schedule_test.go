package schedule

import (
	"testing"
	"time"

	"github.com/mmynk/splitweek/internal/models"
)

func weeklyAt(day int, hhmm string) *models.ScheduleConfig {
	cfg := models.DefaultSchedule()
	cfg.Enabled = true
	cfg.WeeklyDay = day
	cfg.Time = hhmm
	return cfg
}

func TestShouldSettleNow(t *testing.T) {
	// 2025-12-15 is a Monday.
	monday := func(hh, mm int) time.Time {
		return time.Date(2025, time.December, 15, hh, mm, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		cfg  *models.ScheduleConfig
		now  time.Time
		want bool
	}{
		{
			name: "nil config never fires",
			cfg:  nil,
			now:  monday(18, 0),
			want: false,
		},
		{
			name: "disabled config never fires",
			cfg:  models.DefaultSchedule(),
			now:  monday(18, 0),
			want: false,
		},
		{
			name: "weekly exact match",
			cfg:  weeklyAt(1, "18:00"),
			now:  monday(18, 0),
			want: true,
		},
		{
			name: "weekly within drift window",
			cfg:  weeklyAt(1, "18:00"),
			now:  monday(18, 4),
			want: true,
		},
		{
			name: "weekly just before close time",
			cfg:  weeklyAt(1, "18:00"),
			now:  monday(17, 56),
			want: true,
		},
		{
			name: "weekly outside drift window",
			cfg:  weeklyAt(1, "18:00"),
			now:  monday(18, 6),
			want: false,
		},
		{
			name: "weekly wrong weekday",
			cfg:  weeklyAt(2, "18:00"),
			now:  monday(18, 0),
			want: false,
		},
		{
			name: "weekly unparseable time never fires",
			cfg:  weeklyAt(1, "6pm"),
			now:  monday(18, 0),
			want: false,
		},
		{
			name: "monthly day match",
			cfg: &models.ScheduleConfig{
				Enabled:    true,
				Frequency:  models.FrequencyMonthly,
				MonthlyDay: 1,
				Time:       "09:00",
			},
			now:  time.Date(2025, time.December, 1, 9, 2, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "monthly wrong day",
			cfg: &models.ScheduleConfig{
				Enabled:    true,
				Frequency:  models.FrequencyMonthly,
				MonthlyDay: 1,
				Time:       "09:00",
			},
			now:  time.Date(2025, time.December, 2, 9, 0, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "yearly match",
			cfg: &models.ScheduleConfig{
				Enabled:     true,
				Frequency:   models.FrequencyYearly,
				YearlyMonth: 1,
				YearlyDay:   1,
				Time:        "00:00",
			},
			now:  time.Date(2026, time.January, 1, 0, 3, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "yearly wrong month",
			cfg: &models.ScheduleConfig{
				Enabled:     true,
				Frequency:   models.FrequencyYearly,
				YearlyMonth: 1,
				YearlyDay:   1,
				Time:        "00:00",
			},
			now:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSettleNow(tt.cfg, tt.now); got != tt.want {
				t.Errorf("ShouldSettleNow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetDate(t *testing.T) {
	now := time.Date(2025, time.December, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.ScheduleFrequency
		want      time.Time
	}{
		{"weekly targets the previous week", models.FrequencyWeekly, now.AddDate(0, 0, -7)},
		{"monthly targets the previous month", models.FrequencyMonthly, now.AddDate(0, -1, 0)},
		{"yearly targets the previous year", models.FrequencyYearly, now.AddDate(-1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.ScheduleConfig{Frequency: tt.frequency}
			if got := TargetDate(cfg, now); !got.Equal(tt.want) {
				t.Errorf("TargetDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
