// ABOUTME: Property-based tests for the habit engine invariants.
// ABOUTME: Uses gopter to generate histories relative to a random reference day.
package habits

import (
	"testing"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propertyBaseDay = "2024-01-01"

// historyFrom turns day offsets (days before today) into ISO history entries.
func historyFrom(todayISO string, offsets []int) []string {
	h := make([]string, len(offsets))
	for i, off := range offsets {
		h[i] = calendar.AddDays(todayISO, -off)
	}
	return h
}

func TestProperty_StreakInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("streak is non-negative and deterministic", prop.ForAll(
		func(offsets []int, shift int) bool {
			todayISO := calendar.AddDays(propertyBaseDay, shift)
			today, _ := calendar.ParseISODate(todayISO)
			h := historyFrom(todayISO, offsets)
			first := Streak(h, today)
			return first >= 0 && first == Streak(h, today)
		},
		gen.SliceOf(gen.IntRange(0, 30)),
		gen.IntRange(0, 800),
	))

	properties.Property("streak is zero when neither today nor yesterday is present", prop.ForAll(
		func(offsets []int, shift int) bool {
			todayISO := calendar.AddDays(propertyBaseDay, shift)
			today, _ := calendar.ParseISODate(todayISO)
			return Streak(historyFrom(todayISO, offsets), today) == 0
		},
		gen.SliceOf(gen.IntRange(2, 30)),
		gen.IntRange(0, 800),
	))

	properties.Property("streak never exceeds the longest run", prop.ForAll(
		func(offsets []int, shift int) bool {
			todayISO := calendar.AddDays(propertyBaseDay, shift)
			today, _ := calendar.ParseISODate(todayISO)
			h := historyFrom(todayISO, offsets)
			return Streak(h, today) <= LongestStreak(h)
		},
		gen.SliceOf(gen.IntRange(0, 30)),
		gen.IntRange(0, 800),
	))

	properties.TestingRun(t)
}

func TestProperty_ToggleRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("toggling twice restores history, completed and streak", prop.ForAll(
		func(offsets []int, xp int, ledger int) bool {
			todayISO := propertyBaseDay
			today, _ := calendar.ParseISODate(todayISO)
			a := models.Activity{XP: xp, Frequency: calendar.EveryDay, History: calendar.SortDates(historyFrom(todayISO, offsets))}
			a = Reconcile(a, today)

			once := Toggle(a, ledger, today)
			twice := Toggle(once.Activity, once.XP, today)

			back := twice.Activity
			if back.Completed != a.Completed || back.Streak != a.Streak {
				return false
			}
			if len(back.History) != len(a.History) {
				return false
			}
			want := make(map[string]bool, len(a.History))
			for _, d := range a.History {
				want[d] = true
			}
			for _, d := range back.History {
				if !want[d] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.OneConstOf(10, 25, 50),
		gen.IntRange(0, 1000),
	))

	properties.Property("caches always match history after a toggle", prop.ForAll(
		func(offsets []int, stale int) bool {
			today, _ := calendar.ParseISODate(propertyBaseDay)
			a := models.Activity{XP: 10, History: calendar.SortDates(historyFrom(propertyBaseDay, offsets)), Streak: stale, Completed: stale%2 == 0}
			got := Toggle(a, 0, today).Activity
			return got.Streak == Streak(got.History, today) &&
				got.Completed == got.HasDate(propertyBaseDay)
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.IntRange(0, 50),
	))

	properties.Property("XP ledger never goes negative", prop.ForAll(
		func(xp int, ledger int) bool {
			today, _ := calendar.ParseISODate(propertyBaseDay)
			a := models.Activity{XP: xp, History: []string{propertyBaseDay}, Completed: true}
			return Toggle(a, ledger, today).XP >= 0
		},
		gen.OneConstOf(10, 25, 50),
		gen.IntRange(0, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_TotalXPMatchesHistory(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("total XP equals completions times reward regardless of toggles", prop.ForAll(
		func(offsets []int, toggles int) bool {
			today, _ := calendar.ParseISODate(propertyBaseDay)
			a := models.Activity{XP: 25, History: calendar.SortDates(historyFrom(propertyBaseDay, offsets))}
			ledger := TotalXP([]models.Activity{a})
			for i := 0; i < toggles; i++ {
				tr := Toggle(a, ledger, today)
				a, ledger = tr.Activity, tr.XP
			}
			total := TotalXP([]models.Activity{a})
			return total == len(a.History)*25 && total == ledger
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

func TestProperty_ScheduleBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("due activities match the weekday and the ratio stays in [0,1]", prop.ForAll(
		func(masks []uint8, shift int, todayShift int) bool {
			date, _ := calendar.ParseISODate(calendar.AddDays(propertyBaseDay, shift))
			today, _ := calendar.ParseISODate(calendar.AddDays(propertyBaseDay, todayShift))
			acts := make([]models.Activity, len(masks))
			for i, m := range masks {
				acts[i] = models.Activity{Frequency: calendar.WeekdaySet(m) & calendar.EveryDay, Completed: m%2 == 0}
			}
			for _, a := range DueOn(acts, date) {
				if !a.Frequency.Has(date.Weekday()) {
					return false
				}
			}
			p := CompletionRatio(acts, date, today)
			if p.Due == 0 && p.Ratio != 0 {
				return false
			}
			return p.Ratio >= 0 && p.Ratio <= 1
		},
		gen.SliceOf(gen.UInt8()),
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}
