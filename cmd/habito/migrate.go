// ABOUTME: CLI command for migrating habits between storage backends.
// ABOUTME: Copies the current user's habits and history from the active backend to another one.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/config"
	"github.com/harperreed/habito/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy habits to another storage backend",
	Long: `Copy your habits, including their full history, from the active backend to
another one.

IMPORTANT:

  - The destination must not already hold habits for your user
  - Habits get new IDs in the destination
  - Run with --dry-run first to see what would be copied
  - Afterwards, set "backend" in the config to switch over

EXAMPLES:

  habito migrate --to postgres --dry-run
  HABITO_POSTGRES_URL=postgres://... habito migrate --to postgres
  habito --backend charm migrate --to sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite, postgres or charm)")
		}
		if migrateTo == cfg.GetBackend() {
			return fmt.Errorf("already using the %s backend", migrateTo)
		}

		sess.Flush()
		if migrateDryRun {
			data, err := storage.Collect(cmd.Context(), repo, sess.UserID())
			if err != nil {
				return err
			}
			completions := 0
			for _, a := range data.Activities {
				completions += len(a.History)
			}
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Printf("  Would copy %d habits (%d completions) from %s to %s\n",
				len(data.Activities), completions, cfg.GetBackend(), migrateTo)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		dst, err := openDestination(cmd, &dstCfg)
		if err != nil {
			return err
		}
		defer dst.Close()

		summary, err := storage.MigrateData(cmd.Context(), repo, dst, sess.UserID())
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d habits (%d completions) to %s", summary.Activities, summary.Completions, migrateTo)
		fmt.Printf("  Set \"backend\": %q in %s to switch over.\n", migrateTo, config.GetConfigPath())
		return nil
	},
}

func openDestination(cmd *cobra.Command, c *config.Config) (storage.Repository, error) {
	dst, err := c.OpenStorage(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", c.GetBackend(), err)
	}
	return dst, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite, postgres or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
