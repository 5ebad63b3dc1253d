// ABOUTME: Data migration between activity storage backends.
// ABOUTME: Copies a user's activities, including history, from source to destination.
package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Activities  int
	Completions int
}

// MigrateData copies all of userID's activities from src to dst. The
// destination should not already hold this user's activities.
func MigrateData(ctx context.Context, src, dst Repository, userID string) (*MigrateSummary, error) {
	data, err := Collect(ctx, src, userID)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	existing, err := dst.FetchActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read destination: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("destination already has %d activities for %s", len(existing), userID)
	}

	n, err := ImportData(ctx, dst, userID, data)
	if err != nil {
		return nil, err
	}

	summary := &MigrateSummary{Activities: n}
	for _, a := range data.Activities {
		summary.Completions += len(a.History)
	}
	return summary, nil
}
