// ABOUTME: CLI commands for the daily loop: today, done, mark, week and stats.
// ABOUTME: Toggles print the new streak and XP so the level-up is visible at once.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/habits"
	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"t"},
	Short:   "Show habits due today",
	Long: `Show the habits scheduled for today, how many are done, and your XP.

EXAMPLES:

  habito today`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := sess.Today()

		if sess.NewDay() {
			color.Cyan("☀ New day, streaks recalculated")
		}
		fmt.Printf("%s  %d/%d done (%d%%)  ·  %d XP  ·  level %d\n",
			color.New(color.Bold).Sprint(view.Date),
			view.Progress.Done, view.Progress.Due, view.Progress.Percent(),
			view.XP, view.Level)
		fmt.Println(progressBar(habits.LevelProgress(view.XP), habits.XPPerLevel, 30))
		fmt.Println()

		if len(view.Due) == 0 {
			fmt.Println("Nothing scheduled today.")
			return nil
		}
		for _, a := range view.Due {
			printActivityLine(a)
		}
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:     "done <id>",
	Aliases: []string{"d", "toggle"},
	Short:   "Mark or unmark a habit as done today",
	Long: `Toggle today's completion of a habit.

Running it on a habit already done today undoes the completion and takes the
XP back.

EXAMPLES:

  habito done 3f2a
  habito done 3f2a   # again: undo`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before := habits.Level(sess.XP())
		tr, err := sess.Toggle(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to toggle habit: %w", err)
		}

		if tr.Completing {
			color.Green("✓ %s done! +%d XP", tr.Activity.Name, tr.Activity.XP)
		} else {
			color.Yellow("↺ %s undone", tr.Activity.Name)
		}
		fmt.Printf("  🔥 streak %d  ·  %d XP\n", tr.Activity.Streak, tr.XP)
		if after := habits.Level(tr.XP); after > before {
			color.Magenta("★ Level up! You reached level %d", after)
		}
		return nil
	},
}

var markCmd = &cobra.Command{
	Use:   "mark <id> <date>",
	Short: "Mark or unmark a habit on a past day",
	Long: `Toggle a habit's completion on any past day, including today.

Future dates are rejected. The streak is recomputed from the full history.

EXAMPLES:

  habito mark 3f2a 2024-05-14`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := isoOrToday(args[1])
		if err != nil {
			return err
		}
		tr, err := sess.ToggleDate(cmd.Context(), args[0], date)
		if err != nil {
			return fmt.Errorf("failed to mark habit: %w", err)
		}

		verb := "unmarked"
		if tr.Completing {
			verb = "marked"
		}
		color.Green("✓ %s %s on %s", tr.Activity.Name, verb, date)
		fmt.Printf("  🔥 streak %d  ·  %d XP\n", tr.Activity.Streak, tr.XP)
		return nil
	},
}

var weekCmd = &cobra.Command{
	Use:     "week",
	Aliases: []string{"w"},
	Short:   "Show this week's completion",
	Long: `Show the completion ratio for each day of the current week, Monday first.

Future days are shown empty and left out of the average.

EXAMPLES:

  habito week`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		week := sess.Week()

		fmt.Printf("Week of %s  ·  average %d%%\n\n", week.Start, week.AveragePercent())
		fmt.Println(weekdayStrip(week.Days[:]))
		cells := make([]string, len(week.Days))
		for i, d := range week.Days {
			switch {
			case d.Future || d.Due == 0:
				cells[i] = color.New(color.Faint).Sprint(" · ")
			default:
				cells[i] = ratioColor(d.Ratio).Sprintf("%3d", d.Percent())
			}
		}
		fmt.Println(strings.Join(cells, " "))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show XP, streaks and category balance",
	Long: `Show your XP and level, streaks, the last seven days of completions, and
how balanced your habits are across categories.

EXAMPLES:

  habito stats`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := sess.Stats()
		bold := color.New(color.Bold)

		bold.Printf("Level %d", st.Level)
		fmt.Printf("  ·  %d XP  ·  %d/%d to next\n", st.TotalXP, st.LevelProgress, habits.XPPerLevel)
		fmt.Println(progressBar(st.LevelProgress, habits.XPPerLevel, 30))
		fmt.Println()

		fmt.Printf("Habits: %d   Completions: %d   Best current streak: %d   Longest: %d\n\n",
			st.Activities, st.TotalCompletions, st.BestStreak, st.LongestStreak)

		bold.Println("Last 7 days")
		for _, d := range st.Frequency {
			label := d.Code
			if d.IsToday {
				label = color.New(color.Bold).Sprint(d.Code)
			}
			fmt.Printf("  %s %s %s %d\n", label, color.New(color.Faint).Sprint(d.Date), strings.Repeat("▇", d.Count), d.Count)
		}
		fmt.Println()

		bold.Println("Balance")
		for _, b := range st.Balance {
			fmt.Printf("  %s %s %3.0f\n", padRight(string(b.Category), 7), progressBar(int(b.Score), 100, 20), b.Score)
		}

		if len(st.Series) > 0 {
			fmt.Println()
			bold.Println("XP")
			for _, p := range st.Series {
				date := p.Date
				if date == "" {
					date = "----------"
				}
				fmt.Printf("  %s %5d\n", color.New(color.Faint).Sprint(date), p.XP)
			}
		}
		return nil
	},
}

func progressBar(value, total, width int) string {
	if total <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := value * width / total
	return color.GreenString(strings.Repeat("█", filled)) +
		color.New(color.Faint).Sprint(strings.Repeat("░", width-filled))
}

func ratioColor(r float64) *color.Color {
	switch {
	case r >= 1:
		return color.New(color.FgGreen)
	case r >= 0.5:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func init() {
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(statsCmd)
}
