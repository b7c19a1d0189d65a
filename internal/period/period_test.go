package period

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/splitweek/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekID(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "monday",
			date: date(2025, time.December, 15),
			want: "2025-W51",
		},
		{
			name: "sunday belongs to the same week as the preceding monday",
			date: date(2025, time.December, 21),
			want: "2025-W51",
		},
		{
			name: "late december monday starts week 1 of the next iso year",
			date: date(2024, time.December, 30),
			want: "2025-W01",
		},
		{
			name: "early january can fall in the previous iso year",
			date: date(2027, time.January, 1),
			want: "2026-W53",
		},
		{
			name: "single digit week is zero padded",
			date: date(2025, time.February, 5),
			want: "2025-W06",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekID(tt.date); got != tt.want {
				t.Errorf("WeekID(%s) = %q, want %q", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "monday is its own week start",
			date:      date(2025, time.December, 15),
			wantStart: "2025-12-15",
			wantEnd:   "2025-12-21",
		},
		{
			name:      "midweek",
			date:      date(2025, time.December, 18),
			wantStart: "2025-12-15",
			wantEnd:   "2025-12-21",
		},
		{
			name:      "sunday maps back to the previous monday",
			date:      date(2025, time.December, 21),
			wantStart: "2025-12-15",
			wantEnd:   "2025-12-21",
		},
		{
			name:      "week spanning a year boundary",
			date:      date(2026, time.January, 1),
			wantStart: "2025-12-29",
			wantEnd:   "2026-01-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekRange(tt.date)
			if got := start.Format(dateLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(dateLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if start.Weekday() != time.Monday {
				t.Errorf("start weekday = %s, want Monday", start.Weekday())
			}
			if end.Weekday() != time.Sunday {
				t.Errorf("end weekday = %s, want Sunday", end.Weekday())
			}
		})
	}
}

func TestWeekRangeStableAcrossWeek(t *testing.T) {
	// Every day of a week must resolve to the identical range.
	base := date(2025, time.December, 15)
	wantStart, wantEnd := WeekRange(base)
	for i := 1; i < 7; i++ {
		start, end := WeekRange(base.AddDate(0, 0, i))
		if !start.Equal(wantStart) || !end.Equal(wantEnd) {
			t.Errorf("day %d: range = [%s, %s], want [%s, %s]", i,
				start.Format(dateLayout), end.Format(dateLayout),
				wantStart.Format(dateLayout), wantEnd.Format(dateLayout))
		}
	}
}

func TestRoutingPolicies(t *testing.T) {
	settled := &models.SettlementPeriod{ID: "2025-W50", Status: models.PeriodSettled}

	redirect, err := RedirectToActive(settled)
	if err != nil {
		t.Errorf("RedirectToActive() error = %v", err)
	}
	if !redirect {
		t.Error("RedirectToActive() should redirect")
	}

	redirect, err = RejectSettled(settled)
	if redirect {
		t.Error("RejectSettled() should not redirect")
	}
	if !errors.Is(err, models.ErrPeriodSettled) {
		t.Errorf("RejectSettled() error = %v, want ErrPeriodSettled", err)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-12-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 15 {
		t.Errorf("ParseDate() = %v", got)
	}

	for _, bad := range []string{"", "15-12-2025", "2025/12/15", "not-a-date"} {
		if _, err := ParseDate(bad); !models.IsValidation(err) {
			t.Errorf("ParseDate(%q) error = %v, want validation error", bad, err)
		}
	}
}
