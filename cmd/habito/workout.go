// ABOUTME: CLI commands for the workout rotation.
// ABOUTME: Supports programs, select, next, finish and history subcommands.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/workouts"
	"github.com/spf13/cobra"
)

var (
	workoutMinutes int
	historyLimit   int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"wo", "treino"},
	Short:   "Follow a workout program",
	Long: `Follow a rotating workout program.

A program cycles through its workouts in order. Each finished session moves
the rotation forward by one, regardless of the weekday.

WORKFLOW:

  1. Pick a program:       habito workout select prog-casa-ini
  2. See today's workout:  habito workout next
  3. Record it when done:  habito workout finish --minutes 35

COMMANDS:

  programs   List built-in programs
  select     Switch program (restarts the rotation and clears the log)
  next       Show the next workout with its exercises
  finish     Record the next workout as done
  history    Show finished sessions`,
}

var workoutProgramsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List workout programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := workouts.Builtin
		faint := color.New(color.Faint)
		for _, p := range catalog.Programs {
			color.New(color.Bold).Printf("%s", p.Name)
			fmt.Printf("  %s\n", faint.Sprint(p.ID))
			fmt.Printf("  %s · %s · %s\n", p.Location, p.Level, p.ActiveDays.String())
			for i, id := range p.Rotation {
				name := id
				if w, err := catalog.Workout(id); err == nil {
					name = fmt.Sprintf("%s (%d min)", w.Name, w.DurationMinutes)
				}
				fmt.Printf("  %d. %s\n", i+1, name)
			}
			fmt.Println()
		}
		return nil
	},
}

var workoutSelectCmd = &cobra.Command{
	Use:   "select <program-id>",
	Short: "Switch to a workout program",
	Long: `Switch to a workout program. The rotation restarts at its first workout
and the session log is cleared.

EXAMPLES:

  habito workout select prog-acad-ini`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := workoutSvc.Select(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to select program: %w", err)
		}
		p, _ := workoutSvc.Catalog().Program(st.ProgramID)
		color.Green("✓ Selected %s", p.Name)
		fmt.Printf("  %d workouts in rotation\n", len(p.Rotation))
		return nil
	},
}

var workoutNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next workout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sug, err := workoutSvc.Next(cmd.Context())
		if errors.Is(err, workouts.ErrNoProgram) {
			color.Yellow("No program selected.")
			fmt.Println("Run 'habito workout programs' and 'habito workout select <id>'.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve next workout: %w", err)
		}

		w := sug.Workout
		faint := color.New(color.Faint)
		color.New(color.Bold).Println(w.Name)
		fmt.Printf("  %s · %s · %d min · %s\n", sug.Program.Name, w.Goal, w.DurationMinutes, w.Level)
		if sug.TrainingDay {
			color.Green("  Training day  🔥 %d", sug.Streak)
		} else {
			fmt.Printf("  %s  🔥 %d\n", faint.Sprint("Rest day in this program"), sug.Streak)
		}
		fmt.Println()
		for i, ex := range w.Exercises {
			fmt.Printf("  %d. %s  %dx%s  %s\n", i+1, ex.Name, ex.Sets, ex.RepsOrTime,
				faint.Sprintf("rest %ds", ex.RestSeconds))
			if ex.Tips != "" {
				fmt.Printf("     %s\n", faint.Sprint(ex.Tips))
			}
		}
		return nil
	},
}

var workoutFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Record the next workout as done",
	Long: `Record the next workout in the rotation as finished and move the rotation
forward.

EXAMPLES:

  habito workout finish --minutes 35`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if workoutMinutes < 0 {
			return fmt.Errorf("minutes must not be negative")
		}
		entry, err := workoutSvc.Finish(cmd.Context(), time.Duration(workoutMinutes)*time.Minute)
		if err != nil {
			return fmt.Errorf("failed to finish workout: %w", err)
		}
		color.Green("✓ Finished %s", entry.WorkoutName)
		fmt.Printf("  %s %d min\n", color.New(color.Faint).Sprint(entry.Date), entry.DurationMinutes)
		return nil
	},
}

var workoutHistoryCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log"},
	Short:   "Show finished sessions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := workoutSvc.State(cmd.Context())
		if err != nil {
			return err
		}
		if len(st.History) == 0 {
			fmt.Println("No workouts finished yet.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s  🔥 %d\n\n", st.ProgramID, workouts.Streak(st.History, time.Now()))
		entries := st.History
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			fmt.Printf("%s %s %3d min\n", faint.Sprint(e.Date), padRight(truncate(e.WorkoutName, 36), 36), e.DurationMinutes)
		}
		return nil
	},
}

func init() {
	workoutFinishCmd.Flags().IntVarP(&workoutMinutes, "minutes", "m", 0, "session length in minutes")
	workoutHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max number of sessions")

	workoutCmd.AddCommand(workoutProgramsCmd)
	workoutCmd.AddCommand(workoutSelectCmd)
	workoutCmd.AddCommand(workoutNextCmd)
	workoutCmd.AddCommand(workoutFinishCmd)
	workoutCmd.AddCommand(workoutHistoryCmd)
	rootCmd.AddCommand(workoutCmd)
}
