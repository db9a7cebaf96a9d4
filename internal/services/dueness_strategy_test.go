package services

import (
	"testing"
	"time"

	"fondo/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDailyChecker(t *testing.T) {
	c := DailyChecker{}
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2025, 6, 15), true},
		{"ran yesterday", date(2025, 6, 14), date(2025, 6, 15), true},
		{"ran today", date(2025, 6, 15), date(2025, 6, 15), false},
		{"ran last month", date(2025, 5, 15), date(2025, 6, 15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.lastRun, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker(t *testing.T) {
	c := WeeklyChecker{}
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2025, 6, 15), true},
		{"ran 3 days ago", date(2025, 6, 12), date(2025, 6, 15), false},
		{"ran exactly 7 days ago", date(2025, 6, 8), date(2025, 6, 15), true},
		{"ran 10 days ago", date(2025, 6, 5), date(2025, 6, 15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.lastRun, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker(t *testing.T) {
	c := MonthlyChecker{}
	start := date(2025, 1, 31)
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2025, 6, 15), true},
		{"ran this month", date(2025, 6, 1), date(2025, 6, 30), false},
		{"new month before target day", date(2025, 5, 31), date(2025, 6, 15), false},
		{"new month at target day", date(2025, 5, 31), date(2025, 6, 30), true},
		{"target day clamped in February", date(2025, 1, 31), date(2025, 2, 28), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.lastRun, tt.now, start); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker(t *testing.T) {
	c := YearlyChecker{}
	start := date(2024, 3, 15)
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2025, 6, 15), true},
		{"ran this year", date(2025, 3, 15), date(2025, 12, 1), false},
		{"new year before target month", date(2024, 3, 15), date(2025, 2, 1), false},
		{"new year at target date", date(2024, 3, 15), date(2025, 3, 15), true},
		{"new year past target month", date(2024, 3, 15), date(2025, 7, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDue(tt.lastRun, tt.now, start); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, freq := range []core.RepetitionType{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetDuenessChecker(freq); err != nil {
			t.Errorf("GetDuenessChecker(%s) error = %v", freq, err)
		}
	}
	if _, err := GetDuenessChecker("fortnightly"); err == nil {
		t.Error("GetDuenessChecker should reject unknown frequencies")
	}
}
