// ABOUTME: Activity CRUD operations for SQLite storage.
// ABOUTME: Implements the Repository interface on DB.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
)

const activityColumns = `id, user_id, name, category, icon, color, time_slot, difficulty, xp,
	frequency, completed, streak, history, reminders_enabled, reminder_times, created_at, updated_at`

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FetchActivities returns every activity owned by userID, oldest first.
func (d *DB) FetchActivities(ctx context.Context, userID string) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id = ? ORDER BY created_at, id`
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetActivity retrieves one of userID's activities by id or id prefix.
func (d *DB) GetActivity(ctx context.Context, userID, idOrPrefix string) (*models.Activity, error) {
	id, err := d.resolveActivityID(ctx, userID, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ? AND user_id = ?`
	a, err := scanActivity(d.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(idOrPrefix)
		}
		return nil, err
	}
	return a, nil
}

// InsertActivity stores a new activity built from draft and returns it.
func (d *DB) InsertActivity(ctx context.Context, userID string, draft models.ActivityDraft) (*models.Activity, error) {
	a := draft.Build(userID)

	history, err := jsonList(a.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	reminders, err := jsonList(a.ReminderTimes)
	if err != nil {
		return nil, fmt.Errorf("encode reminder times: %w", err)
	}

	query := `INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = d.db.ExecContext(ctx, query,
		a.ID.String(), a.UserID, a.Name, string(a.Category), a.Icon, a.Color, a.TimeSlot,
		string(a.Difficulty), a.XP, int(a.Frequency), a.Completed, a.Streak, history,
		a.RemindersEnabled, reminders,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

// UpdateActivity applies a partial update.
func (d *DB) UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) error {
	query, args, err := buildUpdate(patch, id, formatTime(time.Now()), questionMark, jsonList)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	result, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteActivity removes an activity by full id.
func (d *DB) DeleteActivity(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

// resolveActivityID finds the full ID from a prefix.
func (d *DB) resolveActivityID(ctx context.Context, userID, idOrPrefix string) (string, error) {
	if isFullUUID(idOrPrefix) {
		return idOrPrefix, nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id FROM activities WHERE user_id = ? AND id LIKE ? || '%'`, userID, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve activity ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan activity ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve activity ID: %w", err)
	}

	switch len(matches) {
	case 0:
		return "", notFound(idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", ambiguous(idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		a                           models.Activity
		idStr, category, difficulty string
		frequency                   int
		history, reminders          string
		createdAt, updatedAt        string
	)
	err := row.Scan(&idStr, &a.UserID, &a.Name, &category, &a.Icon, &a.Color, &a.TimeSlot,
		&difficulty, &a.XP, &frequency, &a.Completed, &a.Streak, &history,
		&a.RemindersEnabled, &reminders, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}

	a.ID, _ = uuid.Parse(idStr)
	a.Category = models.Category(category)
	a.Difficulty = models.Difficulty(difficulty)
	a.Frequency = calendar.WeekdaySet(frequency) & calendar.EveryDay
	if err := json.Unmarshal([]byte(history), &a.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal([]byte(reminders), &a.ReminderTimes); err != nil {
		return nil, fmt.Errorf("decode reminder times: %w", err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if a.History == nil {
		a.History = []string{}
	}
	return &a, nil
}
