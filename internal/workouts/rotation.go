// ABOUTME: Workout rotation engine over UserWorkoutState.
// ABOUTME: Monotonic cursor modulo rotation length, session log and session streaks.
package workouts

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrNoProgram is returned when an operation needs an active program.
	ErrNoProgram = errors.New("no workout program selected")
	// ErrEmptyRotation is returned for programs without workouts.
	ErrEmptyRotation = errors.New("program rotation is empty")
)

// rebaseAt is the cursor value past which it is folded back modulo the
// rotation length before incrementing.
const rebaseAt = math.MaxUint64 - math.MaxUint32

// SelectProgram starts a program with an empty log and the cursor at zero.
func SelectProgram(p models.WorkoutProgram, now time.Time) (models.UserWorkoutState, error) {
	if len(p.Rotation) == 0 {
		return models.UserWorkoutState{}, fmt.Errorf("select %s: %w", p.ID, ErrEmptyRotation)
	}
	return models.UserWorkoutState{
		ProgramID:        p.ID,
		History:          []models.WorkoutHistoryEntry{},
		LastWorkoutIndex: 0,
		UpdatedAt:        now,
	}, nil
}

func checkProgram(state models.UserWorkoutState, p models.WorkoutProgram) error {
	if !state.HasProgram() {
		return ErrNoProgram
	}
	if state.ProgramID != p.ID {
		return fmt.Errorf("state is on program %s, not %s", state.ProgramID, p.ID)
	}
	if len(p.Rotation) == 0 {
		return ErrEmptyRotation
	}
	return nil
}

// Next returns the id of the suggested workout. It has no side effects, so
// repeated calls without a completed session return the same id.
func Next(state models.UserWorkoutState, p models.WorkoutProgram) (string, error) {
	if err := checkProgram(state, p); err != nil {
		return "", err
	}
	return p.Rotation[state.LastWorkoutIndex%uint64(len(p.Rotation))], nil
}

// ElapsedMinutes rounds a session length up to whole minutes.
func ElapsedMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Minutes()))
}

// CompleteSession logs w as done and advances the cursor by one.
func CompleteSession(state models.UserWorkoutState, p models.WorkoutProgram, w models.Workout, elapsed time.Duration, now time.Time) (models.UserWorkoutState, models.WorkoutHistoryEntry, error) {
	if err := checkProgram(state, p); err != nil {
		return state, models.WorkoutHistoryEntry{}, err
	}

	entry := models.WorkoutHistoryEntry{
		ID:              ulid.Make().String(),
		WorkoutID:       w.ID,
		WorkoutName:     w.Name,
		Date:            calendar.ISODate(now),
		DurationMinutes: ElapsedMinutes(elapsed),
		Completed:       true,
	}

	next := state
	next.History = append(append([]models.WorkoutHistoryEntry(nil), state.History...), entry)
	cursor := state.LastWorkoutIndex
	if cursor >= rebaseAt {
		cursor %= uint64(len(p.Rotation))
	}
	next.LastWorkoutIndex = cursor + 1
	next.UpdatedAt = now

	return next, entry, nil
}

// Streak counts consecutive training days in the session log. Several
// sessions on one day count once, and the most recent day must be today
// or yesterday.
func Streak(history []models.WorkoutHistoryEntry, today time.Time) int {
	seen := make(map[string]bool)
	var days []string
	for _, h := range history {
		if !h.Completed || seen[h.Date] {
			continue
		}
		if _, err := calendar.ParseISODate(h.Date); err != nil {
			continue
		}
		seen[h.Date] = true
		days = append(days, h.Date)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	todayISO := calendar.ISODate(today)
	if days[0] != todayISO && days[0] != calendar.AddDays(todayISO, -1) {
		return 0
	}

	streak := 1
	for i := 0; i < len(days)-1; i++ {
		if calendar.AddDays(days[i+1], 1) != days[i] {
			break
		}
		streak++
	}
	return streak
}

// IsTrainingDay reports whether t falls on one of the program's active days.
func IsTrainingDay(p models.WorkoutProgram, t time.Time) bool {
	return p.ActiveDays.Has(t.Weekday())
}

// DayCount is the number of sessions finished on one day.
type DayCount struct {
	Date  string `json:"date"`
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// RecentSessions counts completed sessions on each of the last 7 days, oldest first.
func RecentSessions(history []models.WorkoutHistoryEntry, today time.Time) []DayCount {
	days := calendar.LastDays(today, 7)
	out := make([]DayCount, len(days))
	for i, iso := range days {
		dc := DayCount{Date: iso}
		if t, err := calendar.ParseISODate(iso); err == nil {
			dc.Code = calendar.WeekdayCode(t)
		}
		for _, h := range history {
			if h.Date == iso && h.Completed {
				dc.Count++
			}
		}
		out[i] = dc
	}
	return out
}
