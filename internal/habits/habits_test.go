// ABOUTME: Tests for streaks, scheduling, toggling and the XP ledger.
// ABOUTME: Table tests pin the worked scenarios; see properties_test.go for invariants.
package habits

import (
	"testing"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

func day(t *testing.T, iso string) time.Time {
	t.Helper()
	d, err := calendar.ParseISODate(iso)
	if err != nil {
		t.Fatalf("ParseISODate(%s): %v", iso, err)
	}
	return d
}

func newActivity(name string, xp int, freq calendar.WeekdaySet, history ...string) models.Activity {
	return models.Activity{Name: name, XP: xp, Frequency: freq, History: history}
}

func TestStreak(t *testing.T) {
	today := "2024-06-15"
	tests := []struct {
		name    string
		history []string
		want    int
	}{
		{"empty", nil, 0},
		{"today only", []string{"2024-06-15"}, 1},
		{"yesterday anchor", []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14"}, 5},
		{"today and run", []string{"2024-06-13", "2024-06-14", "2024-06-15"}, 3},
		{"stale run", []string{"2024-06-01", "2024-06-02", "2024-06-03"}, 0},
		{"gap truncates", []string{"2024-06-10", "2024-06-12", "2024-06-13", "2024-06-14"}, 3},
		{"unordered with dups", []string{"2024-06-14", "2024-06-15", "2024-06-14", "2024-06-13"}, 3},
		{"across month", []string{"2024-05-31", "2024-06-01"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.history, day(t, today)); got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakAcrossYearBoundary(t *testing.T) {
	got := Streak([]string{"2023-12-30", "2023-12-31", "2024-01-01"}, day(t, "2024-01-02"))
	if got != 3 {
		t.Errorf("Streak = %d, want 3", got)
	}
}

func TestLongestStreak(t *testing.T) {
	h := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-02-10", "2024-02-11", "bogus", "2024-01-02"}
	if got := LongestStreak(h); got != 3 {
		t.Errorf("LongestStreak = %d, want 3", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("LongestStreak(nil) = %d, want 0", got)
	}
}

func TestDueOn(t *testing.T) {
	mon := calendar.NewWeekdaySet(time.Monday)
	acts := []models.Activity{
		newActivity("a", 10, mon),
		newActivity("b", 10, calendar.EveryDay),
		newActivity("c", 10, calendar.NewWeekdaySet(time.Sunday)),
	}
	due := DueOn(acts, day(t, "2024-06-03")) // Monday
	if len(due) != 2 || due[0].Name != "a" || due[1].Name != "b" {
		t.Errorf("DueOn Monday = %v", due)
	}
}

func TestDueOnDistinguishesSharedLetters(t *testing.T) {
	// Wednesday and Thursday both render as Q but schedule independently.
	wed := []models.Activity{newActivity("wed", 10, calendar.NewWeekdaySet(time.Wednesday))}
	if len(DueOn(wed, day(t, "2024-06-06"))) != 0 {
		t.Error("Wednesday-only activity must not be due on Thursday")
	}
}

func TestCompletionRatio(t *testing.T) {
	today := day(t, "2024-06-05") // Wednesday
	done := newActivity("done", 10, calendar.EveryDay, "2024-06-04")
	done.Completed = true
	open := newActivity("open", 10, calendar.EveryDay)

	acts := []models.Activity{done, open}

	p := CompletionRatio(acts, today, today)
	if !p.IsToday || p.Due != 2 || p.Done != 1 || p.Ratio != 0.5 {
		t.Errorf("today = %+v", p)
	}

	p = CompletionRatio(acts, day(t, "2024-06-04"), today)
	if p.Done != 1 || p.Ratio != 0.5 || p.Future {
		t.Errorf("past = %+v", p)
	}

	p = CompletionRatio(acts, day(t, "2024-06-06"), today)
	if !p.Future || p.Done != 0 || p.Ratio != 0 {
		t.Errorf("future = %+v", p)
	}

	p = CompletionRatio(nil, today, today)
	if p.Ratio != 0 || p.Due != 0 {
		t.Errorf("nothing due = %+v", p)
	}
}

func TestWeek(t *testing.T) {
	today := day(t, "2024-06-05") // Wednesday
	a := newActivity("daily", 10, calendar.EveryDay, "2024-06-03")
	w := Week([]models.Activity{a}, today)

	if w.Start != "2024-06-03" {
		t.Errorf("Start = %s, want 2024-06-03", w.Start)
	}
	if w.Days[0].Percent() != 100 || w.Days[1].Percent() != 0 {
		t.Errorf("unexpected day ratios: %+v", w.Days[:2])
	}
	for i := 3; i < 7; i++ {
		if !w.Days[i].Future {
			t.Errorf("day %d should be future", i)
		}
	}
	// Mon 100%, Tue 0%, Wed 0% -> 33%
	if got := w.AveragePercent(); got != 33 {
		t.Errorf("AveragePercent = %d, want 33", got)
	}
}

func TestWeekOnSunday(t *testing.T) {
	w := Week(nil, day(t, "2024-06-09"))
	if w.Start != "2024-06-03" {
		t.Errorf("Start = %s, want 2024-06-03", w.Start)
	}
	if w.Days[6].Date != "2024-06-09" || !w.Days[6].IsToday {
		t.Errorf("last day = %+v", w.Days[6])
	}
}

func TestToggleScenario(t *testing.T) {
	today := day(t, "2024-06-05")
	a := newActivity("Leitura", models.DifficultyMedium.XP(), calendar.EveryDay)

	on := Toggle(a, 0, today)
	if !on.Completing || !on.Activity.Completed || on.Activity.Streak != 1 || on.XP != 25 {
		t.Fatalf("complete = %+v", on)
	}
	if len(on.Activity.History) != 1 || on.Activity.History[0] != "2024-06-05" {
		t.Fatalf("history = %v", on.Activity.History)
	}
	if TotalXP([]models.Activity{on.Activity}) != 25 {
		t.Error("TotalXP should reflect the new completion")
	}

	off := Toggle(on.Activity, on.XP, today)
	if off.Completing || off.Activity.Completed || off.Activity.Streak != 0 || off.XP != 0 {
		t.Fatalf("uncomplete = %+v", off)
	}
	if len(off.Activity.History) != 0 {
		t.Errorf("history = %v", off.Activity.History)
	}
}

func TestToggleFloorsXP(t *testing.T) {
	today := day(t, "2024-06-05")
	a := newActivity("x", 50, calendar.EveryDay, "2024-06-05")
	a.Completed = true
	tr := Toggle(a, 10, today)
	if tr.XP != 0 {
		t.Errorf("XP = %d, want 0", tr.XP)
	}
}

func TestToggleExtendsRunFromYesterday(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("x", 10, calendar.EveryDay, "2024-06-12", "2024-06-13", "2024-06-14")
	a.Streak = 99 // stale cache is corrected before incrementing
	tr := Toggle(a, 30, today)
	if tr.Activity.Streak != 4 {
		t.Errorf("Streak = %d, want 4", tr.Activity.Streak)
	}
	if tr.Activity.Streak != Streak(tr.Activity.History, today) {
		t.Error("incremental streak disagrees with recomputation")
	}
}

func TestToggleDoesNotAliasInput(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("x", 10, calendar.EveryDay, "2024-06-14", "2024-06-15")
	a.Completed = true
	_ = Toggle(a, 20, today)
	if len(a.History) != 2 || a.History[1] != "2024-06-15" {
		t.Errorf("input history mutated: %v", a.History)
	}
}

func TestToggleDate(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("x", 10, calendar.EveryDay, "2024-06-13", "2024-06-15")

	got, err := ToggleDate(a, "2024-06-14", today)
	if err != nil {
		t.Fatalf("ToggleDate: %v", err)
	}
	if got.Streak != 3 || !got.Completed {
		t.Errorf("after fill: streak=%d completed=%v", got.Streak, got.Completed)
	}

	got, err = ToggleDate(got, "2024-06-15", today)
	if err != nil {
		t.Fatalf("ToggleDate: %v", err)
	}
	if got.Streak != 2 || got.Completed {
		t.Errorf("after unmark today: streak=%d completed=%v", got.Streak, got.Completed)
	}

	if _, err := ToggleDate(a, "2024-06-16", today); err == nil {
		t.Error("expected error for future date")
	}
	if _, err := ToggleDate(a, "15/06/2024", today); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestToggleDateAgreesWithToggleForToday(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("x", 10, calendar.EveryDay, "2024-06-13", "2024-06-14")
	viaToggle := Toggle(a, 0, today).Activity
	viaDate, err := ToggleDate(a, "2024-06-15", today)
	if err != nil {
		t.Fatalf("ToggleDate: %v", err)
	}
	if viaToggle.Streak != viaDate.Streak || viaToggle.Completed != viaDate.Completed || len(viaToggle.History) != len(viaDate.History) {
		t.Errorf("Toggle %+v != ToggleDate %+v", viaToggle, viaDate)
	}
}

func TestXPSeries(t *testing.T) {
	acts := []models.Activity{
		newActivity("a", 10, calendar.EveryDay, "2024-06-01", "2024-06-02"),
		newActivity("b", 25, calendar.EveryDay, "2024-06-02"),
	}
	total := TotalXP(acts) // 45
	if total != 45 {
		t.Fatalf("TotalXP = %d, want 45", total)
	}

	daily := DailyXP(acts)
	if daily["2024-06-01"] != 10 || daily["2024-06-02"] != 35 {
		t.Errorf("DailyXP = %v", daily)
	}

	series := XPSeries(acts, total+100, 0)
	if len(series) != 2 {
		t.Fatalf("series = %v", series)
	}
	if series[0].XP != 110 || series[1].XP != 145 {
		t.Errorf("offset applied wrongly: %v", series)
	}

	empty := XPSeries(nil, 70, 10)
	if len(empty) != 2 || empty[0].XP != 0 || empty[1].XP != 70 {
		t.Errorf("empty series = %v", empty)
	}
}

func TestXPSeriesLimit(t *testing.T) {
	var history []string
	for i := 1; i <= 15; i++ {
		history = append(history, calendar.AddDays("2024-06-01", i))
	}
	acts := []models.Activity{newActivity("a", 10, calendar.EveryDay, history...)}
	series := XPSeries(acts, TotalXP(acts), DefaultSeriesLimit)
	if len(series) != DefaultSeriesLimit {
		t.Fatalf("len = %d, want %d", len(series), DefaultSeriesLimit)
	}
	if series[len(series)-1].XP != 150 {
		t.Errorf("last point = %d, want 150", series[len(series)-1].XP)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct{ xp, level, progress int }{
		{0, 1, 0},
		{99, 1, 99},
		{100, 2, 0},
		{245, 3, 45},
	}
	for _, tt := range tests {
		if Level(tt.xp) != tt.level || LevelProgress(tt.xp) != tt.progress {
			t.Errorf("xp %d: level=%d progress=%d", tt.xp, Level(tt.xp), LevelProgress(tt.xp))
		}
	}
}

func TestBalance(t *testing.T) {
	a := newActivity("a", 10, calendar.EveryDay, "2024-06-01", "2024-06-02")
	a.Category = models.CategoryCorpo
	b := newActivity("b", 10, calendar.EveryDay, make([]string, 12)...)
	b.Category = models.CategoryMente

	bal := Balance([]models.Activity{a, b})
	if len(bal) != len(models.AllCategories) {
		t.Fatalf("len = %d", len(bal))
	}
	for _, cb := range bal {
		switch cb.Category {
		case models.CategoryCorpo:
			if cb.Score != 40 {
				t.Errorf("Corpo score = %v, want 40", cb.Score)
			}
		case models.CategoryMente:
			if cb.Score != 100 {
				t.Errorf("Mente score = %v, want 100", cb.Score)
			}
		default:
			if cb.Score != 0 || cb.Habits != 0 {
				t.Errorf("%s should be empty: %+v", cb.Category, cb)
			}
		}
	}
}

func TestRecentFrequencyAndHeatmap(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("a", 10, calendar.EveryDay, "2024-06-15", "2024-06-10", "2024-05-01")
	b := newActivity("b", 10, calendar.EveryDay, "2024-06-15")

	freq := RecentFrequency([]models.Activity{a, b}, today)
	if len(freq) != 7 {
		t.Fatalf("len = %d", len(freq))
	}
	if freq[0].Date != "2024-06-09" || freq[1].Count != 1 || freq[6].Count != 2 || !freq[6].IsToday {
		t.Errorf("freq = %+v", freq)
	}

	grid := Heatmap(a, today, HeatmapDays)
	if len(grid) != HeatmapDays {
		t.Fatalf("grid len = %d", len(grid))
	}
	completed := 0
	for _, c := range grid {
		if c.Completed {
			completed++
		}
	}
	if completed != 2 {
		t.Errorf("completed cells = %d, want 2", completed)
	}
	if !grid[HeatmapDays-1].IsToday {
		t.Error("last cell should be today")
	}
	if CompletionRate(a) != 9 {
		t.Errorf("CompletionRate = %d, want 9", CompletionRate(a))
	}
}

func TestSummarize(t *testing.T) {
	today := day(t, "2024-06-15")
	a := newActivity("a", 25, calendar.EveryDay, "2024-06-14", "2024-06-15", "2024-01-01", "2024-01-02", "2024-01-03")
	s := Summarize([]models.Activity{a}, 125, today)
	if s.Level != 2 || s.LevelProgress != 25 {
		t.Errorf("level = %d/%d", s.Level, s.LevelProgress)
	}
	if s.BestStreak != 2 || s.LongestStreak != 3 || s.TotalCompletions != 5 {
		t.Errorf("stats = %+v", s)
	}
}
