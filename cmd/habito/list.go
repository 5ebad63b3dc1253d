// ABOUTME: CLI commands for listing and inspecting habits.
// ABOUTME: list prints one line per habit; show prints details and a history heatmap.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/habits"
	"github.com/harperreed/habito/internal/models"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	listToday    bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List habits",
	Long: `List your habits.

OUTPUT FORMAT:

  Each line shows: ID  DONE  NAME  CATEGORY  XP  STREAK  SCHEDULE

  The ID is an 8-character prefix you can use with done, edit and delete.

EXAMPLES:

  habito list                    # All habits
  habito list --today            # Only habits scheduled for today
  habito list --category corpo   # Filter by category`,
	RunE: func(cmd *cobra.Command, args []string) error {
		activities := sess.Activities()
		if listToday {
			activities = habits.DueOn(activities, sess.Now())
		}
		if listCategory != "" {
			c, err := models.ParseCategory(listCategory)
			if err != nil {
				return err
			}
			filtered := activities[:0]
			for _, a := range activities {
				if a.Category == c {
					filtered = append(filtered, a)
				}
			}
			activities = filtered
		}

		if len(activities) == 0 {
			fmt.Println("No habits found.")
			return nil
		}

		for _, a := range activities {
			printActivityLine(a)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a habit with its history",
	Long: `Show a habit's details, streaks and the last five weeks of history.

EXAMPLES:

  habito show 3f2a1b9c`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := sess.Get(args[0])
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		color.New(color.Bold).Println(a.Name)
		fmt.Printf("  %s %s\n", faint.Sprint("ID:        "), a.ID)
		fmt.Printf("  %s %s\n", faint.Sprint("Category:  "), a.Category)
		fmt.Printf("  %s %s (%d XP)\n", faint.Sprint("Difficulty:"), a.Difficulty, a.XP)
		fmt.Printf("  %s %s\n", faint.Sprint("Schedule:  "), a.Frequency.String())
		if a.RemindersEnabled {
			fmt.Printf("  %s %s\n", faint.Sprint("Reminders: "), strings.Join(a.ReminderTimes, ", "))
		}
		fmt.Printf("  %s %d / %d (longest %d)\n", faint.Sprint("Streak:    "),
			a.Streak, habits.StreakGoal, habits.LongestStreak(a.History))
		fmt.Printf("  %s %d%%\n", faint.Sprint("Rate:      "), habits.CompletionRate(a))
		fmt.Println()
		printHeatmap(habits.Heatmap(a, sess.Now(), habits.HeatmapDays))
		return nil
	},
}

func printActivityLine(a models.Activity) {
	faint := color.New(color.Faint)
	check := faint.Sprint("○")
	if a.Completed {
		check = color.GreenString("●")
	}
	fmt.Printf("%s %s %s %s %3d XP  🔥%-3d %s\n",
		faint.Sprint(shortID(a.ID.String())),
		check,
		padRight(truncate(a.Name, 28), 28),
		padRight(string(a.Category), 7),
		a.XP,
		a.Streak,
		faint.Sprint(a.Frequency.String()))
}

// printHeatmap renders cells in rows of seven, oldest first.
func printHeatmap(cells []habits.HeatCell) {
	var sb strings.Builder
	for i, c := range cells {
		switch {
		case c.Completed:
			sb.WriteString(color.GreenString("■"))
		case c.IsToday:
			sb.WriteString(color.YellowString("□"))
		default:
			sb.WriteString(color.New(color.Faint).Sprint("□"))
		}
		if (i+1)%7 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	fmt.Print(sb.String())
	if len(cells) > 0 {
		fmt.Printf("%s\n", color.New(color.Faint).Sprintf("%s → %s", cells[0].Date, cells[len(cells)-1].Date))
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// weekdayStrip renders a week's codes, highlighting today.
func weekdayStrip(days []habits.DayProgress) string {
	parts := make([]string, len(days))
	for i, d := range days {
		switch {
		case d.IsToday:
			parts[i] = color.New(color.Bold).Sprint(d.Code)
		case d.Future:
			parts[i] = color.New(color.Faint).Sprint(d.Code)
		default:
			parts[i] = d.Code
		}
	}
	return strings.Join(parts, "   ")
}

// isoOrToday resolves a date argument, defaulting to the session's today.
func isoOrToday(arg string) (string, error) {
	if arg == "" {
		return calendar.ISODate(sess.Now()), nil
	}
	if _, err := calendar.ParseISODate(arg); err != nil {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD)", arg)
	}
	return arg, nil
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().BoolVar(&listToday, "today", false, "only habits scheduled for today")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
