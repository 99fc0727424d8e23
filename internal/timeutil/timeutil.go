// Package timeutil fixes the run's identity (a KST calendar day) and the
// rolling acceptance window used to filter source items.
package timeutil

import "time"

// KST is the reporting timezone. The newsletter covers Korean sources, so
// the run day and all displayed timestamps are anchored to Asia/Seoul.
var KST = time.FixedZone("KST", 9*60*60)

func init() {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		KST = loc
	}
}

// Now returns the current time in KST.
func Now() time.Time {
	return time.Now().In(KST)
}

// RunDate formats the calendar-day key for the run state store.
func RunDate(now time.Time) string {
	return now.In(KST).Format("2006-01-02")
}

// FormatDateTime renders a timestamp the way it appears in source lines.
func FormatDateTime(t time.Time) string {
	return t.In(KST).Format("2006-01-02 15:04")
}

// FormatDate renders the localized date used in mail subjects and titles.
func FormatDate(t time.Time) string {
	return t.In(KST).Format("2006년 01월 02일")
}

// Window is the acceptance interval items must fall within. Start <= End.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastDay returns the 24h window ending at now.
func LastDay(now time.Time) Window {
	return Window{Start: now.Add(-24 * time.Hour), End: now}
}

// Contains reports whether t falls inside the window, boundaries included.
// Items without a timestamp are never accepted.
func (w Window) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}
