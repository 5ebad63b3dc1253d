// ABOUTME: Postgres activity store for the hosted backend, built on pgxpool.
// ABOUTME: Rows are scoped by user_id; list columns use native TEXT[] arrays.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	time_slot TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL,
	xp INTEGER NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 0,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	streak INTEGER NOT NULL DEFAULT 0,
	history TEXT[] NOT NULL DEFAULT '{}',
	reminders_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	reminder_times TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id, created_at);
`

// Postgres is the hosted activity store.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Postgres)(nil)

// OpenPostgres connects to url, verifies the connection and ensures the schema.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p, err := NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool and ensures the schema.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// FetchActivities returns every activity owned by userID, oldest first.
func (p *Postgres) FetchActivities(ctx context.Context, userID string) ([]models.Activity, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+activityColumns+` FROM activities WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		a, err := scanPGActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	return out, nil
}

// GetActivity retrieves one of userID's activities by id or id prefix.
func (p *Postgres) GetActivity(ctx context.Context, userID, idOrPrefix string) (*models.Activity, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE user_id = $1 AND id LIKE $2 || '%' LIMIT 2`,
		userID, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	defer rows.Close()

	var matches []*models.Activity
	for rows.Next() {
		a, err := scanPGActivity(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, notFound(idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguous(idOrPrefix)
	}
}

// InsertActivity stores a new activity built from draft and returns it.
func (p *Postgres) InsertActivity(ctx context.Context, userID string, draft models.ActivityDraft) (*models.Activity, error) {
	a := draft.Build(userID)
	_, err := p.pool.Exec(ctx, `INSERT INTO activities (`+activityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		a.ID.String(), a.UserID, a.Name, string(a.Category), a.Icon, a.Color, a.TimeSlot,
		string(a.Difficulty), a.XP, int(a.Frequency), a.Completed, a.Streak, a.History,
		a.RemindersEnabled, a.ReminderTimes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

// UpdateActivity applies a partial update.
func (p *Postgres) UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) error {
	query, args, err := buildUpdate(patch, id, time.Now(), dollar, nativeList)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

// DeleteActivity removes an activity by full id.
func (p *Postgres) DeleteActivity(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func scanPGActivity(row pgx.Row) (*models.Activity, error) {
	var (
		a                           models.Activity
		idStr, category, difficulty string
		frequency                   int
	)
	err := row.Scan(&idStr, &a.UserID, &a.Name, &category, &a.Icon, &a.Color, &a.TimeSlot,
		&difficulty, &a.XP, &frequency, &a.Completed, &a.Streak, &a.History,
		&a.RemindersEnabled, &a.ReminderTimes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	a.ID, _ = uuid.Parse(idStr)
	a.Category = models.Category(category)
	a.Difficulty = models.Difficulty(difficulty)
	a.Frequency = calendar.WeekdaySet(frequency) & calendar.EveryDay
	if a.History == nil {
		a.History = []string{}
	}
	return &a, nil
}
