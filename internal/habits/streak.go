// ABOUTME: Streak calculation over an activity's completion history.
// ABOUTME: Current streaks anchor at today or yesterday; a gap of any size ends the walk.
package habits

import (
	"time"

	"github.com/harperreed/habito/internal/calendar"
)

// Streak returns the number of consecutive completed days ending today, or
// ending yesterday when today is not yet marked. A broken streak is 0.
func Streak(history []string, today time.Time) int {
	if len(history) == 0 {
		return 0
	}
	set := dateSet(history)

	anchor := calendar.ISODate(today)
	if !set[anchor] {
		anchor = calendar.AddDays(anchor, -1)
		if !set[anchor] {
			return 0
		}
	}

	n := 0
	for day := anchor; set[day]; day = calendar.AddDays(day, -1) {
		n++
	}
	return n
}

// LongestStreak returns the longest run of consecutive days anywhere in history.
// Entries that are not valid ISO days are ignored.
func LongestStreak(history []string) int {
	days := make([]string, 0, len(history))
	for _, d := range history {
		if _, err := calendar.ParseISODate(d); err == nil {
			days = append(days, d)
		}
	}
	days = calendar.SortDates(days)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if calendar.AddDays(days[i-1], 1) == days[i] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

func dateSet(history []string) map[string]bool {
	set := make(map[string]bool, len(history))
	for _, d := range history {
		set[d] = true
	}
	return set
}
