// ABOUTME: Completion toggle engine, the only code that writes Completed and Streak.
// ABOUTME: Every path returns a whole new Activity value so fields never drift apart.
package habits

import (
	"fmt"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

// Transition is the result of toggling today's completion.
type Transition struct {
	Activity   models.Activity
	XP         int
	Completing bool
}

// Reconcile recomputes the Completed and Streak caches from history.
func Reconcile(a models.Activity, today time.Time) models.Activity {
	a = a.Clone()
	a.Streak = Streak(a.History, today)
	a.Completed = a.HasDate(calendar.ISODate(today))
	return a
}

// ReconcileAll reconciles every activity in the collection.
func ReconcileAll(activities []models.Activity, today time.Time) []models.Activity {
	out := make([]models.Activity, len(activities))
	for i, a := range activities {
		out[i] = Reconcile(a, today)
	}
	return out
}

// Toggle flips today's completion for a and moves the XP ledger by a.XP,
// flooring it at zero. The activity is reconciled first, so the incremental
// streak always matches a full recomputation from history.
func Toggle(a models.Activity, xp int, today time.Time) Transition {
	a = Reconcile(a, today)
	iso := calendar.ISODate(today)
	completing := !a.Completed

	if completing {
		xp += a.XP
		if !a.HasDate(iso) {
			a.History = append(a.History, iso)
			a.Streak++
		}
	} else {
		xp -= a.XP
		if xp < 0 {
			xp = 0
		}
		if a.HasDate(iso) {
			a.History = removeDate(a.History, iso)
			a.Streak--
			if a.Streak < 0 {
				a.Streak = 0
			}
		}
	}
	a.Completed = completing

	return Transition{Activity: a, XP: xp, Completing: completing}
}

// ToggleDate flips membership of an arbitrary day in history and recomputes
// both caches. For today it agrees with Toggle.
func ToggleDate(a models.Activity, date string, today time.Time) (models.Activity, error) {
	if _, err := calendar.ParseISODate(date); err != nil {
		return models.Activity{}, err
	}
	if date > calendar.ISODate(today) {
		return models.Activity{}, fmt.Errorf("cannot mark future date %s", date)
	}

	a = a.Clone()
	if a.HasDate(date) {
		a.History = removeDate(a.History, date)
	} else {
		a.History = append(a.History, date)
	}
	return Reconcile(a, today), nil
}

func removeDate(history []string, date string) []string {
	out := history[:0]
	for _, d := range history {
		if d != date {
			out = append(out, d)
		}
	}
	return out
}
