// ABOUTME: CLI command for editing a habit's definition.
// ABOUTME: Only flags that were set are applied; a difficulty change re-derives the XP reward.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/session"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a habit",
	Long: `Edit a habit's name, category, difficulty, schedule or reminders.

Completion history, streak and earned XP are left untouched. Changing the
difficulty changes the XP earned by future completions.

EXAMPLES:

  habito edit 3f2a --name "Ler 20 páginas"
  habito edit 3f2a --difficulty hard --days all
  habito edit 3f2a --time 06:30 --time 21:00
  habito edit 3f2a --reminders=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := editFromFlags(cmd)
		if err != nil {
			return err
		}
		if edit.IsEmpty() {
			return fmt.Errorf("nothing to change; pass at least one flag")
		}

		a, err := sess.Update(cmd.Context(), args[0], edit)
		if err != nil {
			return fmt.Errorf("failed to edit habit: %w", err)
		}

		color.Green("✓ Updated %s", a.Name)
		printActivityLine(a)
		return nil
	},
}

func editFromFlags(cmd *cobra.Command) (session.Edit, error) {
	var e session.Edit
	flags := cmd.Flags()

	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		e.Name = &v
	}
	if flags.Changed("category") {
		v, _ := flags.GetString("category")
		c, err := models.ParseCategory(v)
		if err != nil {
			return e, err
		}
		e.Category = &c
	}
	if flags.Changed("difficulty") {
		v, _ := flags.GetString("difficulty")
		d, err := models.ParseDifficulty(v)
		if err != nil {
			return e, err
		}
		e.Difficulty = &d
	}
	if flags.Changed("days") {
		v, _ := flags.GetString("days")
		days, err := parseDays(v)
		if err != nil {
			return e, err
		}
		e.Frequency = &days
	}
	if flags.Changed("icon") {
		v, _ := flags.GetString("icon")
		e.Icon = &v
	}
	if flags.Changed("color") {
		v, _ := flags.GetString("color")
		e.Color = &v
	}
	if flags.Changed("reminders") {
		v, _ := flags.GetBool("reminders")
		e.RemindersEnabled = &v
	}
	if flags.Changed("time") {
		v, _ := flags.GetStringArray("time")
		e.ReminderTimes = append([]string{}, v...)
	}
	return e, nil
}

func init() {
	editCmd.Flags().String("name", "", "new name")
	editCmd.Flags().StringP("category", "c", "", "category (corpo, mente, saber, foco, outros)")
	editCmd.Flags().StringP("difficulty", "d", "", "difficulty (easy, medium, hard)")
	editCmd.Flags().String("days", "", "scheduled weekdays (e.g. seg,qua,sex)")
	editCmd.Flags().String("icon", "", "icon name")
	editCmd.Flags().String("color", "", "display color (hex)")
	editCmd.Flags().Bool("reminders", true, "enable or disable reminders")
	editCmd.Flags().StringArray("time", nil, "reminder time HH:MM (repeatable, replaces all)")
	rootCmd.AddCommand(editCmd)
}
