// ABOUTME: Calendar helpers shared by the habit and workout engines.
// ABOUTME: ISO day strings, weekday letters, Monday-start weeks and day arithmetic.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar day format used for every stored history entry.
const DateLayout = "2006-01-02"

// weekdayCodes are the Sunday-first display letters. Several weekdays share a
// letter, so they are never used for scheduling decisions.
var weekdayCodes = [7]string{"D", "S", "T", "Q", "Q", "S", "S"}

// WeekdayCode returns the single-letter display code for t's weekday.
func WeekdayCode(t time.Time) string {
	return weekdayCodes[t.Weekday()]
}

// CodeFor returns the display letter for a weekday.
func CodeFor(d time.Weekday) string {
	return weekdayCodes[d%7]
}

// ISODate formats t's own calendar day (in t's location) as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseISODate parses a YYYY-MM-DD string as a civil date (UTC midnight).
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// InLocation returns the ISO day s as midnight in loc.
func InLocation(s string, loc *time.Location) (time.Time, error) {
	t, err := ParseISODate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// AddDays shifts an ISO day by n days. Arithmetic happens on the civil
// date, so daylight saving transitions never skip or repeat a day.
// Invalid input is returned unchanged.
func AddDays(iso string, n int) string {
	t, err := ParseISODate(iso)
	if err != nil {
		return iso
	}
	return t.AddDate(0, 0, n).Format(DateLayout)
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseISODate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseISODate(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// Yesterday returns the ISO day before t's calendar day.
func Yesterday(t time.Time) string {
	return AddDays(ISODate(t), -1)
}

// WeekStart returns midnight of the Monday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := Midnight(t)
	offset := int(day.Weekday()) - 1
	if offset < 0 {
		offset = 6 // Sunday belongs to the week that started six days earlier
	}
	return day.AddDate(0, 0, -offset)
}

// LastDays returns the ISO days of the n-day window ending at t, oldest first.
func LastDays(t time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	end := ISODate(t)
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[i] = AddDays(end, i-(n-1))
	}
	return days
}
