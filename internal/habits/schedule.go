// ABOUTME: Scheduling queries: which activities are due on a date and how much got done.
// ABOUTME: Builds the daily progress ring and the Monday-start weekly summary.
package habits

import (
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

// IsDue reports whether a is scheduled on date's weekday.
func IsDue(a models.Activity, date time.Time) bool {
	return a.Frequency.Has(date.Weekday())
}

// DueOn returns the activities scheduled on date, preserving input order.
func DueOn(activities []models.Activity, date time.Time) []models.Activity {
	var due []models.Activity
	for _, a := range activities {
		if IsDue(a, date) {
			due = append(due, a)
		}
	}
	return due
}

// DayProgress is the completion state of one calendar day.
type DayProgress struct {
	Date    string  `json:"date"`
	Code    string  `json:"code"`
	Due     int     `json:"due"`
	Done    int     `json:"done"`
	Ratio   float64 `json:"ratio"`
	IsToday bool    `json:"is_today"`
	Future  bool    `json:"future"`
}

// Percent returns the ratio as a rounded percentage.
func (p DayProgress) Percent() int {
	return int(p.Ratio*100 + 0.5)
}

// CompletionRatio reports how many due activities were completed on date.
// Today reads the Completed flag, earlier days read history, and later days
// are not yet evaluable: they report Future with nothing done.
func CompletionRatio(activities []models.Activity, date, today time.Time) DayProgress {
	iso := calendar.ISODate(date)
	todayISO := calendar.ISODate(today)

	p := DayProgress{
		Date:    iso,
		Code:    calendar.WeekdayCode(date),
		IsToday: iso == todayISO,
		Future:  iso > todayISO,
	}

	for _, a := range DueOn(activities, date) {
		p.Due++
		switch {
		case p.Future:
		case p.IsToday:
			if a.Completed {
				p.Done++
			}
		default:
			if a.HasDate(iso) {
				p.Done++
			}
		}
	}

	if p.Due > 0 {
		p.Ratio = float64(p.Done) / float64(p.Due)
	}
	return p
}

// WeekSummary covers the Monday-start week containing today.
type WeekSummary struct {
	Start   string         `json:"start"`
	Days    [7]DayProgress `json:"days"`
	Average float64        `json:"average"`
}

// AveragePercent returns the average as a rounded percentage.
func (w WeekSummary) AveragePercent() int {
	return int(w.Average*100 + 0.5)
}

// Week builds the seven-day summary. The average only covers days up to
// and including today.
func Week(activities []models.Activity, today time.Time) WeekSummary {
	start := calendar.WeekStart(today)
	w := WeekSummary{Start: calendar.ISODate(start)}

	var sum float64
	counted := 0
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		w.Days[i] = CompletionRatio(activities, day, today)
		if !w.Days[i].Future {
			sum += w.Days[i].Ratio
			counted++
		}
	}
	if counted > 0 {
		w.Average = sum / float64(counted)
	}
	return w
}
