// ABOUTME: CLI commands for remote write state.
// ABOUTME: Supports status, push (retry failed writes) and link for the Charm backend.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/charm"
	habitosync "github.com/harperreed/habito/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Inspect and retry remote writes",
	Long: `Every change is applied locally first and written to the configured store
in the background. A write that fails is kept in the local cache together with
the habit's state at that moment.

COMMANDS:

  status   Show the backend and any writes that did not reach it
  push     Re-send failed writes now
  link     Link this device to a Charm account (charm backend only)

EXAMPLES:

  habito sync status
  habito sync push`,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Backend:", cfg.GetBackend())
		fmt.Println("User:   ", sess.UserID())
		if cfg.GetBackend() == "charm" {
			if id, err := charm.ID(); err == nil {
				fmt.Println("Charm ID:", id)
			} else {
				color.Yellow("Not linked to Charm")
			}
		}
		if localCache.InMemory() {
			color.Yellow("⚠ Cache is in memory (another habito process holds it); failures will not persist")
		}
		fmt.Println()

		records, err := sess.Tracker().Records()
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range records {
			if r.Status == habitosync.StatusFailed {
				failed++
			}
		}
		if failed == 0 {
			color.Green("✓ All changes saved")
			fmt.Printf("  Habits: %d\n", len(sess.Activities()))
			return nil
		}

		color.Yellow("⚠ %d change(s) not saved", failed)
		faint := color.New(color.Faint)
		for _, r := range records {
			if r.Status != habitosync.StatusFailed {
				continue
			}
			name := ""
			if r.Snapshot != nil {
				name = r.Snapshot.Name
			}
			fmt.Printf("  %s %-6s %s %s\n", faint.Sprint(shortID(r.ID)), r.Op, name,
				faint.Sprintf("(%d attempts, %s)", r.Attempts, truncate(r.Error, 60)))
		}
		fmt.Println("\nRun 'habito sync push' to retry.")
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Retry failed writes",
	Long: `Re-send every failed write to the configured store. Updates send the full
saved state of the habit; deletes of habits that are already gone count as
done.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := sess.Tracker().Push(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		if summary.Synced == 0 && summary.Failed == 0 {
			fmt.Println("Nothing to push.")
			return nil
		}
		if summary.Synced > 0 {
			color.Green("✓ Pushed %d change(s)", summary.Synced)
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d change(s) still failing", summary.Failed)
		}
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account for the charm backend.

If you don't have a Charm account, one will be created using your SSH key.

Example:
  habito sync link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		charmCmd := exec.Command("charm", "link")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")
		fmt.Println("Set backend to \"charm\" in the config to store habits there.")
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncLinkCmd)
	rootCmd.AddCommand(syncCmd)
}
