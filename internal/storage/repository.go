// ABOUTME: Repository interface for the remote activity store.
// ABOUTME: Implemented by the SQLite, Postgres and Charm KV backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/habito/internal/models"
)

// ErrNotFound is wrapped by every backend when an id matches nothing.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when an id prefix matches several activities.
var ErrAmbiguous = errors.New("ambiguous prefix")

// Repository is the activity store contract. Writes are scoped to a single
// activity id; reads are scoped to a user.
type Repository interface {
	FetchActivities(ctx context.Context, userID string) ([]models.Activity, error)
	GetActivity(ctx context.Context, userID, idOrPrefix string) (*models.Activity, error)
	InsertActivity(ctx context.Context, userID string, draft models.ActivityDraft) (*models.Activity, error)
	UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) error
	DeleteActivity(ctx context.Context, id string) error
	Close() error
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func ambiguous(prefix string) error {
	return fmt.Errorf("%w %s: matches multiple records", ErrAmbiguous, prefix)
}

// isFullUUID reports whether s has the canonical 36-character UUID shape.
func isFullUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, r := range s {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		}
	}
	return true
}
