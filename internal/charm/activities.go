// ABOUTME: Activity CRUD operations for Charm KV storage.
// ABOUTME: Records are keyed by id and filtered by user_id on read.
package charm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/storage"
)

// FetchActivities returns every activity owned by userID, oldest first.
func (c *Client) FetchActivities(_ context.Context, userID string) ([]models.Activity, error) {
	allData, err := c.listByPrefix(ActivityPrefix)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	var out []models.Activity
	for _, data := range allData {
		a, err := unmarshalJSON[models.Activity](data)
		if err != nil {
			continue
		}
		if a.UserID != userID {
			continue
		}
		if a.History == nil {
			a.History = []string{}
		}
		out = append(out, *a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetActivity retrieves one of userID's activities by id or id prefix.
func (c *Client) GetActivity(_ context.Context, userID, idOrPrefix string) (*models.Activity, error) {
	ids, err := c.keysByPrefix(ActivityPrefix, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	var matches []*models.Activity
	for _, id := range ids {
		a, err := c.load(id)
		if err != nil {
			return nil, err
		}
		if a.UserID == userID {
			matches = append(matches, a)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w %s: matches multiple records", storage.ErrAmbiguous, idOrPrefix)
	}
}

// InsertActivity stores a new activity built from draft and returns it.
func (c *Client) InsertActivity(_ context.Context, userID string, draft models.ActivityDraft) (*models.Activity, error) {
	a := draft.Build(userID)
	if err := c.save(a); err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

// UpdateActivity applies a partial update by full id.
func (c *Client) UpdateActivity(_ context.Context, id string, patch models.ActivityPatch) error {
	a, err := c.load(id)
	if err != nil {
		return err
	}
	patch.Apply(a)
	if err := c.save(a); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// DeleteActivity removes an activity by full id.
func (c *Client) DeleteActivity(_ context.Context, id string) error {
	if _, err := c.load(id); err != nil {
		return err
	}
	if err := c.delete(ActivityPrefix + id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func (c *Client) load(id string) (*models.Activity, error) {
	data, err := c.get(ActivityPrefix + id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	a, err := unmarshalJSON[models.Activity](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	if a.History == nil {
		a.History = []string{}
	}
	return a, nil
}

func (c *Client) save(a *models.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	return c.set(ActivityPrefix+a.ID.String(), data)
}
