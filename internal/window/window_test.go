package window

import (
	"testing"
	"time"
)

func TestResolve_AllWeekdays(t *testing.T) {
	// 2026-02-02 is a Monday.
	cases := []struct {
		day      int
		weekday  time.Weekday
		wantDays int
	}{
		{2, time.Monday, 3},
		{3, time.Tuesday, 1},
		{4, time.Wednesday, 1},
		{5, time.Thursday, 1},
		{6, time.Friday, 1},
	}

	for _, tc := range cases {
		runDate := time.Date(2026, 2, tc.day, 9, 30, 0, 0, time.UTC)
		if runDate.Weekday() != tc.weekday {
			t.Fatalf("test setup: 2026-02-%02d is %v, want %v", tc.day, runDate.Weekday(), tc.weekday)
		}

		w := Resolve(runDate)
		if w.Days != tc.wantDays {
			t.Errorf("%v: Days = %d, want %d", tc.weekday, w.Days, tc.wantDays)
		}

		wantEnd := time.Date(2026, 2, tc.day, 0, 0, 0, 0, time.UTC)
		if !w.End.Equal(wantEnd) {
			t.Errorf("%v: End = %v, want start of day %v", tc.weekday, w.End, wantEnd)
		}
		if !w.Start.Equal(wantEnd.AddDate(0, 0, -tc.wantDays)) {
			t.Errorf("%v: Start = %v, want %v", tc.weekday, w.Start, wantEnd.AddDate(0, 0, -tc.wantDays))
		}
	}
}

func TestResolve_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	runDate := time.Date(2026, 2, 5, 8, 0, 0, 0, loc)

	w := Resolve(runDate)
	if w.End.Location() != loc {
		t.Fatalf("End location = %v, want %v", w.End.Location(), loc)
	}
	if w.End.Hour() != 0 {
		t.Fatalf("End hour = %d, want 0 (start of day in run zone)", w.End.Hour())
	}
}

func TestRangeLabel(t *testing.T) {
	monday := Resolve(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if got, want := monday.RangeLabel(), "January 30 - February 02, 2026"; got != want {
		t.Errorf("Monday RangeLabel = %q, want %q", got, want)
	}

	thursday := Resolve(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	if got, want := thursday.RangeLabel(), "February 04, 2026"; got != want {
		t.Errorf("Thursday RangeLabel = %q, want %q", got, want)
	}
}

func TestDaysText(t *testing.T) {
	monday := Resolve(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if got, want := monday.DaysText(), "Friday, Saturday, Sunday"; got != want {
		t.Errorf("Monday DaysText = %q, want %q", got, want)
	}

	wednesday := Resolve(time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC))
	if got, want := wednesday.DaysText(), "Tuesday"; got != want {
		t.Errorf("Wednesday DaysText = %q, want %q", got, want)
	}
}

func TestIntervals(t *testing.T) {
	monday := Resolve(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if got := monday.MySQLInterval(); got != "INTERVAL 3 DAY" {
		t.Errorf("MySQLInterval = %q", got)
	}
	if got := monday.RedshiftInterval(); got != "INTERVAL '3 day'" {
		t.Errorf("RedshiftInterval = %q", got)
	}

	friday := Resolve(time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC))
	if got := friday.MySQLInterval(); got != "INTERVAL 1 DAY" {
		t.Errorf("MySQLInterval = %q", got)
	}
}
