// ABOUTME: XP ledger derived from completion history.
// ABOUTME: Totals, per-day earnings, the cumulative chart series and levels.
package habits

import (
	"sort"

	"github.com/harperreed/habito/internal/models"
)

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 100

// DefaultSeriesLimit is how many points the dashboard chart shows.
const DefaultSeriesLimit = 10

// TotalXP recomputes the ledger from history: completions times reward.
func TotalXP(activities []models.Activity) int {
	total := 0
	for _, a := range activities {
		total += len(a.History) * a.XP
	}
	return total
}

// DailyXP sums the XP earned on each history date.
func DailyXP(activities []models.Activity) map[string]int {
	daily := make(map[string]int)
	for _, a := range activities {
		for _, d := range a.History {
			daily[d] += a.XP
		}
	}
	return daily
}

// XPPoint is one point of the cumulative XP chart.
type XPPoint struct {
	Date string `json:"date"`
	XP   int    `json:"xp"`
}

// XPSeries returns the cumulative XP per history date in ascending order.
// XP not explained by history (totalXP above the history sum) is added once
// as the starting value. With no history the series is just a start and an
// end point. limit > 0 keeps only the last limit points.
func XPSeries(activities []models.Activity, totalXP, limit int) []XPPoint {
	daily := DailyXP(activities)
	if len(daily) == 0 {
		return []XPPoint{{Date: "", XP: 0}, {Date: "", XP: totalXP}}
	}

	dates := make([]string, 0, len(daily))
	historySum := 0
	for d, xp := range daily {
		dates = append(dates, d)
		historySum += xp
	}
	sort.Strings(dates)

	cumulative := totalXP - historySum
	if cumulative < 0 {
		cumulative = 0
	}

	series := make([]XPPoint, len(dates))
	for i, d := range dates {
		cumulative += daily[d]
		series[i] = XPPoint{Date: d, XP: cumulative}
	}

	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series
}

// Level returns the 1-based level for a total.
func Level(total int) int {
	if total < 0 {
		total = 0
	}
	return total/XPPerLevel + 1
}

// LevelProgress returns XP earned toward the next level.
func LevelProgress(total int) int {
	if total < 0 {
		return 0
	}
	return total % XPPerLevel
}
