// ABOUTME: Activity model with Category and Difficulty enums for habit tracking.
// ABOUTME: History is the source of truth; Completed and Streak are caches over it.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/habito/internal/calendar"
)

// Category groups activities for the balance view.
type Category string

const (
	CategoryCorpo  Category = "Corpo"
	CategoryMente  Category = "Mente"
	CategorySaber  Category = "Saber"
	CategoryFoco   Category = "Foco"
	CategoryOutros Category = "Outros"
)

// AllCategories returns every category in display order.
var AllCategories = []Category{CategoryCorpo, CategoryMente, CategorySaber, CategoryFoco, CategoryOutros}

// CategoryIcons maps categories to their material icon names.
var CategoryIcons = map[Category]string{
	CategoryCorpo:  "fitness_center",
	CategoryMente:  "self_improvement",
	CategorySaber:  "menu_book",
	CategoryFoco:   "bolt",
	CategoryOutros: "star",
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %s", s)
}

// Difficulty sets the XP awarded per completion.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Fácil"
	DifficultyMedium Difficulty = "Médio"
	DifficultyHard   Difficulty = "Difícil"
)

// DefaultDifficulty is applied when none is given.
const DefaultDifficulty = DifficultyMedium

// XP returns the per-completion reward for the difficulty.
func (d Difficulty) XP() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 50
	default:
		return 25
	}
}

// ParseDifficulty accepts the Portuguese labels with or without accents, or easy/medium/hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fácil", "facil", "easy":
		return DifficultyEasy, nil
	case "médio", "medio", "medium", "":
		return DifficultyMedium, nil
	case "difícil", "dificil", "hard":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty: %s", s)
}

// DefaultReminderTime is the first reminder slot offered to new activities.
const DefaultReminderTime = "08:00"

// DefaultColor is the primary accent color.
const DefaultColor = "#13ec92"

// Validation errors returned before an activity reaches the store.
var (
	ErrEmptyName       = errors.New("activity name is required")
	ErrNoReminderTimes = errors.New("at least one reminder time is required")
)

// Activity is a recurring habit definition.
type Activity struct {
	ID               uuid.UUID           `json:"id" yaml:"id"`
	UserID           string              `json:"user_id" yaml:"user_id"`
	Name             string              `json:"name" yaml:"name"`
	Category         Category            `json:"category" yaml:"category"`
	Icon             string              `json:"icon" yaml:"icon"`
	Color            string              `json:"color" yaml:"color"`
	TimeSlot         string              `json:"time" yaml:"time"`
	Difficulty       Difficulty          `json:"difficulty" yaml:"difficulty"`
	XP               int                 `json:"xp" yaml:"xp"`
	Frequency        calendar.WeekdaySet `json:"frequency" yaml:"frequency"`
	Completed        bool                `json:"completed" yaml:"completed"`
	Streak           int                 `json:"streak" yaml:"streak"`
	History          []string            `json:"history" yaml:"history"`
	RemindersEnabled bool                `json:"reminders_enabled" yaml:"reminders_enabled"`
	ReminderTimes    []string            `json:"reminder_times" yaml:"reminder_times"`
	CreatedAt        time.Time           `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" yaml:"updated_at"`
}

// HasDate reports whether the activity was completed on the ISO day.
func (a *Activity) HasDate(iso string) bool {
	for _, d := range a.History {
		if d == iso {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate slices freely.
func (a Activity) Clone() Activity {
	a.History = append([]string(nil), a.History...)
	a.ReminderTimes = append([]string(nil), a.ReminderTimes...)
	return a
}

// ActivityDraft is the user-supplied part of an activity. The store assigns
// the id and starts computed fields at zero.
type ActivityDraft struct {
	Name             string
	Category         Category
	Icon             string
	Color            string
	Difficulty       Difficulty
	Frequency        calendar.WeekdaySet
	RemindersEnabled bool
	ReminderTimes    []string
}

// NewActivityDraft returns a draft with the defaults of the creation form.
func NewActivityDraft(name string) ActivityDraft {
	return ActivityDraft{
		Name:             name,
		Category:         CategoryFoco,
		Color:            DefaultColor,
		Difficulty:       DefaultDifficulty,
		Frequency:        calendar.Weekdays,
		RemindersEnabled: true,
		ReminderTimes:    []string{DefaultReminderTime},
	}
}

// Validate rejects drafts that must never reach the store.
func (d ActivityDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return ValidateReminderTimes(d.ReminderTimes)
}

// ValidateReminderTimes requires at least one HH:MM time.
func ValidateReminderTimes(times []string) error {
	if len(times) == 0 {
		return ErrNoReminderTimes
	}
	for _, rt := range times {
		if _, err := time.Parse("15:04", rt); err != nil {
			return fmt.Errorf("invalid reminder time %q (use HH:MM): %w", rt, err)
		}
	}
	return nil
}

// Build materializes the draft into a new activity with zeroed computed fields.
func (d ActivityDraft) Build(userID string) *Activity {
	now := time.Now()
	category := d.Category
	if category == "" {
		category = CategoryFoco
	}
	difficulty := d.Difficulty
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	icon := d.Icon
	if icon == "" {
		icon = CategoryIcons[category]
	}
	color := d.Color
	if color == "" {
		color = DefaultColor
	}
	slot := ""
	if len(d.ReminderTimes) > 0 {
		slot = d.ReminderTimes[0] + " - " + d.ReminderTimes[0]
	}
	return &Activity{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             strings.TrimSpace(d.Name),
		Category:         category,
		Icon:             icon,
		Color:            color,
		TimeSlot:         slot,
		Difficulty:       difficulty,
		XP:               difficulty.XP(),
		Frequency:        d.Frequency,
		History:          []string{},
		RemindersEnabled: d.RemindersEnabled,
		ReminderTimes:    append([]string(nil), d.ReminderTimes...),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ActivityPatch is a partial update. Nil fields are left untouched.
type ActivityPatch struct {
	Name             *string
	Category         *Category
	Icon             *string
	Color            *string
	TimeSlot         *string
	Difficulty       *Difficulty
	XP               *int
	Frequency        *calendar.WeekdaySet
	Completed        *bool
	Streak           *int
	History          []string // nil means unchanged; empty slice clears
	RemindersEnabled *bool
	ReminderTimes    []string
}

// IsEmpty reports whether the patch changes nothing.
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Icon == nil && p.Color == nil &&
		p.TimeSlot == nil && p.Difficulty == nil && p.XP == nil && p.Frequency == nil &&
		p.Completed == nil && p.Streak == nil && p.History == nil &&
		p.RemindersEnabled == nil && p.ReminderTimes == nil
}

// Apply writes the patch onto a.
func (p ActivityPatch) Apply(a *Activity) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Icon != nil {
		a.Icon = *p.Icon
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.TimeSlot != nil {
		a.TimeSlot = *p.TimeSlot
	}
	if p.Difficulty != nil {
		a.Difficulty = *p.Difficulty
	}
	if p.XP != nil {
		a.XP = *p.XP
	}
	if p.Frequency != nil {
		a.Frequency = *p.Frequency
	}
	if p.Completed != nil {
		a.Completed = *p.Completed
	}
	if p.Streak != nil {
		a.Streak = *p.Streak
	}
	if p.History != nil {
		a.History = append([]string{}, p.History...)
	}
	if p.RemindersEnabled != nil {
		a.RemindersEnabled = *p.RemindersEnabled
	}
	if p.ReminderTimes != nil {
		a.ReminderTimes = append([]string{}, p.ReminderTimes...)
	}
	a.UpdatedAt = time.Now()
}

// CompletionPatch carries the fields a toggle changes.
func CompletionPatch(a Activity) ActivityPatch {
	completed := a.Completed
	streak := a.Streak
	history := append([]string{}, a.History...)
	return ActivityPatch{Completed: &completed, Streak: &streak, History: history}
}

// FullPatch carries every mutable field of a.
func FullPatch(a Activity) ActivityPatch {
	p := CompletionPatch(a)
	name, cat, icon, color, slot := a.Name, a.Category, a.Icon, a.Color, a.TimeSlot
	diff, xp, freq, rem := a.Difficulty, a.XP, a.Frequency, a.RemindersEnabled
	p.Name, p.Category, p.Icon, p.Color, p.TimeSlot = &name, &cat, &icon, &color, &slot
	p.Difficulty, p.XP, p.Frequency, p.RemindersEnabled = &diff, &xp, &freq, &rem
	p.ReminderTimes = append([]string{}, a.ReminderTimes...)
	return p
}
