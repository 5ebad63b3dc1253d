// ABOUTME: CLI command for deleting habits.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a habit",
	Long: `Delete a habit by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'habito list' output.

EXAMPLES:

  habito delete 3f2a1b9c                    # Delete by 8-char prefix
  habito rm 3f2a                            # Short prefix (if unique)

CAUTION:

  This permanently deletes the habit and its history. XP already earned is
  kept until the next login recomputes it from the remaining history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := sess.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}

		color.Yellow("✗ Deleted %s", a.Name)
		fmt.Printf("  %s %d completions\n",
			color.New(color.Faint).Sprint(shortID(a.ID.String())),
			len(a.History))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
