// ABOUTME: CLI commands for exporting and importing habito data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	importForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export habits",
	Long: `Export your habits and their history in various formats.

FORMATS:

  json       Full JSON export, including the workout program (backup/restore)
  yaml       YAML export of the habits (human-readable)
  markdown   Markdown tables per category (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout

EXAMPLES:

  habito export json                        # Export all data as JSON
  habito export json -o backup.json         # Save to file
  habito export yaml
  habito export markdown -o habits.md`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		// Collect reads the store, so wait for any pending write first.
		sess.Flush()
		data, err := storage.Collect(cmd.Context(), repo, sess.UserID())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if st, err := workoutSvc.State(cmd.Context()); err == nil && st.HasProgram() {
			data.WorkoutState = &st
		}

		var out []byte
		switch format {
		case "json":
			out, err = data.JSON()
		case "yaml":
			out, err = data.YAML()
		case "markdown", "md":
			out = []byte(data.Markdown())
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, out, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported %d habits to %s", len(data.Activities), exportOutput)
		} else {
			fmt.Println(string(out))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import habits from a JSON or YAML export",
	Long: `Import habits from a file written by 'habito export json' or 'export yaml'.

Each habit is created with a new ID under your user; history, streaks and XP
rewards are carried over. A workout program in a JSON export replaces the
local one only with --force.

EXAMPLES:

  habito import backup.json
  habito import backup.json --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data, err := storage.ParseExport(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		n, err := storage.ImportData(cmd.Context(), repo, sess.UserID(), data)
		if err != nil {
			return fmt.Errorf("import failed after %d habits: %w", n, err)
		}
		color.Green("✓ Imported %d habits from %s", n, filename)

		if data.WorkoutState.HasProgram() {
			current, err := workoutSvc.State(cmd.Context())
			if err != nil {
				return err
			}
			if current.HasProgram() && !importForce {
				color.Yellow("⚠ Kept the current workout program; use --force to replace it")
				return nil
			}
			if err := localCache.SaveWorkoutState(cmd.Context(), data.WorkoutState); err != nil {
				return fmt.Errorf("failed to restore workout program: %w", err)
			}
			color.Green("✓ Restored workout program %s", data.WorkoutState.ProgramID)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "replace the current workout program")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
