// ABOUTME: CLI command for adding habits.
// ABOUTME: Parses category, difficulty, schedule and reminder flags into a validated draft.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"github.com/spf13/cobra"
)

var (
	addCategory    string
	addDifficulty  string
	addDays        string
	addTimes       []string
	addNoReminders bool
	addColor       string
	addIcon        string
)

var addCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a", "new"},
	Short:   "Add a habit",
	Long: `Add a habit to track.

CATEGORIES:

  Corpo, Mente, Saber, Foco (default), Outros

DIFFICULTY (XP per completion):

  facil / easy      10 XP
  medio / medium    25 XP (default)
  dificil / hard    50 XP

SCHEDULE:

  --days takes day names (seg,ter,qua,qui,sex,sab,dom or mon..sun),
  indices (0=Sunday .. 6=Saturday), or the keywords "all" and "weekdays".
  Default: weekdays.

EXAMPLES:

  habito add "Meditar"
  habito add "Correr 5km" --category corpo --difficulty hard --days seg,qua,sex
  habito add "Ler" --days all --time 21:00 --time 07:30
  habito add "Alongar" --no-reminders`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := buildDraft(args[0])
		if err != nil {
			return err
		}

		a, err := sess.Add(cmd.Context(), draft)
		if err != nil {
			return fmt.Errorf("failed to add habit: %w", err)
		}

		color.Green("✓ Added %s", a.Name)
		fmt.Printf("  %s %s · %s · %d XP · %s\n",
			color.New(color.Faint).Sprint(shortID(a.ID.String())),
			a.Category, a.Difficulty, a.XP, a.Frequency.String())
		return nil
	},
}

// buildDraft turns the add flags into a draft. Validation of the name and
// reminder times happens in the session.
func buildDraft(name string) (models.ActivityDraft, error) {
	draft := models.NewActivityDraft(name)

	if addCategory != "" {
		c, err := models.ParseCategory(addCategory)
		if err != nil {
			return draft, err
		}
		draft.Category = c
	}
	if addDifficulty != "" {
		d, err := models.ParseDifficulty(addDifficulty)
		if err != nil {
			return draft, err
		}
		draft.Difficulty = d
	}
	if addDays != "" {
		days, err := parseDays(addDays)
		if err != nil {
			return draft, err
		}
		draft.Frequency = days
	}
	if len(addTimes) > 0 {
		draft.ReminderTimes = addTimes
	}
	if addNoReminders {
		draft.RemindersEnabled = false
	}
	if addColor != "" {
		draft.Color = addColor
	}
	draft.Icon = addIcon
	return draft, nil
}

// parseDays parses a schedule and rejects an empty one.
func parseDays(s string) (calendar.WeekdaySet, error) {
	days, err := calendar.ParseWeekdays(s)
	if err != nil {
		return 0, err
	}
	if days.Len() == 0 {
		return 0, fmt.Errorf("schedule needs at least one weekday")
	}
	return days, nil
}

func shortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return strings.ToLower(id[:8])
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category (corpo, mente, saber, foco, outros)")
	addCmd.Flags().StringVarP(&addDifficulty, "difficulty", "d", "", "difficulty (easy, medium, hard)")
	addCmd.Flags().StringVar(&addDays, "days", "", "scheduled weekdays (e.g. seg,qua,sex)")
	addCmd.Flags().StringArrayVar(&addTimes, "time", nil, "reminder time HH:MM (repeatable)")
	addCmd.Flags().BoolVar(&addNoReminders, "no-reminders", false, "disable reminders")
	addCmd.Flags().StringVar(&addColor, "color", "", "display color (hex)")
	addCmd.Flags().StringVar(&addIcon, "icon", "", "icon name (default per category)")
	rootCmd.AddCommand(addCmd)
}
