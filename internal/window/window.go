// Package window computes the weekend-aware lookback window for a report run.
package window

import (
	"fmt"
	"strings"
	"time"
)

// Window is the reporting window for one run: [Start, End), where End is
// the run date's start of day and Days is the lookback span.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// Resolve computes the window for the given run date. Monday runs look back
// 3 days so Friday through Sunday are not lost to the weekend gap; every
// other day looks back exactly 1 day. The function is total over all seven
// weekdays even though the scheduler only triggers on business days.
func Resolve(runDate time.Time) Window {
	days := 1
	if runDate.Weekday() == time.Monday {
		days = 3
	}
	end := time.Date(runDate.Year(), runDate.Month(), runDate.Day(), 0, 0, 0, 0, runDate.Location())
	return Window{
		Start: end.AddDate(0, 0, -days),
		End:   end,
		Days:  days,
	}
}

// RangeLabel returns a human-readable label for the window:
// "January 30 - February 02, 2026" for a multi-day window,
// the start date alone ("February 01, 2026") otherwise.
func (w Window) RangeLabel() string {
	if w.Days > 1 {
		return w.Start.Format("January 02") + " - " + w.End.Format("January 02, 2006")
	}
	return w.Start.Format("January 02, 2006")
}

// DaysText names the weekdays the window covers.
func (w Window) DaysText() string {
	if w.Days == 1 {
		return w.Start.Weekday().String()
	}
	names := make([]string, 0, w.Days)
	for d := 0; d < w.Days; d++ {
		names = append(names, w.Start.AddDate(0, 0, d).Weekday().String())
	}
	return strings.Join(names, ", ")
}

// MySQLInterval renders the window span as a MySQL interval expression.
func (w Window) MySQLInterval() string {
	return fmt.Sprintf("INTERVAL %d DAY", w.Days)
}

// RedshiftInterval renders the window span as a Redshift interval literal.
func (w Window) RedshiftInterval() string {
	return fmt.Sprintf("INTERVAL '%d day'", w.Days)
}
