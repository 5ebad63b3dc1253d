// ABOUTME: Dashboard aggregates: recent frequency, per-habit heatmap, category balance.
// ABOUTME: Summarize bundles them with the XP ledger into one Stats value.
package habits

import (
	"math"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

// HeatmapDays is the trailing window shown on a habit's history grid.
const HeatmapDays = 35

// StreakGoal is the streak length the habit screen measures progress against.
const StreakGoal = 30

// balanceTarget is the completions-per-habit count that scores a category at 100.
const balanceTarget = 5

// DayCount is the number of completions on one day.
type DayCount struct {
	Date    string `json:"date"`
	Code    string `json:"code"`
	Count   int    `json:"count"`
	IsToday bool   `json:"is_today"`
}

// RecentFrequency counts completions across all activities for the last 7 days, oldest first.
func RecentFrequency(activities []models.Activity, today time.Time) []DayCount {
	days := calendar.LastDays(today, 7)
	out := make([]DayCount, len(days))
	for i, iso := range days {
		dc := DayCount{Date: iso, IsToday: i == len(days)-1}
		if t, err := calendar.ParseISODate(iso); err == nil {
			dc.Code = calendar.WeekdayCode(t)
		}
		for _, a := range activities {
			if a.HasDate(iso) {
				dc.Count++
			}
		}
		out[i] = dc
	}
	return out
}

// HeatCell is one square of a habit's history grid.
type HeatCell struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	IsToday   bool   `json:"is_today"`
}

// Heatmap returns the trailing days-long grid for a, oldest first.
func Heatmap(a models.Activity, today time.Time, days int) []HeatCell {
	window := calendar.LastDays(today, days)
	cells := make([]HeatCell, len(window))
	for i, iso := range window {
		cells[i] = HeatCell{Date: iso, Completed: a.HasDate(iso), IsToday: i == len(window)-1}
	}
	return cells
}

// CompletionRate is total completions over the heatmap window, capped at 100.
func CompletionRate(a models.Activity) int {
	rate := int(math.Round(float64(len(a.History)) / HeatmapDays * 100))
	if rate > 100 {
		return 100
	}
	return rate
}

// CategoryBalance scores how consistently a category is practiced.
type CategoryBalance struct {
	Category    models.Category `json:"category"`
	Habits      int             `json:"habits"`
	Completions int             `json:"completions"`
	Score       float64         `json:"score"`
}

// Balance scores every category as min(100, completions / (habits*5) * 100).
// Categories without habits score 0.
func Balance(activities []models.Activity) []CategoryBalance {
	out := make([]CategoryBalance, 0, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		cb := CategoryBalance{Category: cat}
		for _, a := range activities {
			if a.Category == cat {
				cb.Habits++
				cb.Completions += len(a.History)
			}
		}
		if cb.Habits > 0 {
			cb.Score = math.Min(100, float64(cb.Completions)*100/float64(cb.Habits*balanceTarget))
		}
		out = append(out, cb)
	}
	return out
}

// Stats is the dashboard view of a collection.
type Stats struct {
	TotalXP          int               `json:"total_xp"`
	Level            int               `json:"level"`
	LevelProgress    int               `json:"level_progress"`
	Activities       int               `json:"activities"`
	TotalCompletions int               `json:"total_completions"`
	BestStreak       int               `json:"best_streak"`
	LongestStreak    int               `json:"longest_streak"`
	Series           []XPPoint         `json:"series"`
	Frequency        []DayCount        `json:"frequency"`
	Balance          []CategoryBalance `json:"balance"`
}

// Summarize builds Stats from the collection and the running XP ledger.
func Summarize(activities []models.Activity, xp int, today time.Time) Stats {
	s := Stats{
		TotalXP:       xp,
		Level:         Level(xp),
		LevelProgress: LevelProgress(xp),
		Activities:    len(activities),
		Series:        XPSeries(activities, xp, DefaultSeriesLimit),
		Frequency:     RecentFrequency(activities, today),
		Balance:       Balance(activities),
	}
	for _, a := range activities {
		s.TotalCompletions += len(a.History)
		if cur := Streak(a.History, today); cur > s.BestStreak {
			s.BestStreak = cur
		}
		if l := LongestStreak(a.History); l > s.LongestStreak {
			s.LongestStreak = l
		}
	}
	return s
}
