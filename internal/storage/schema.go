// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One activities table; list columns hold JSON arrays, frequency a weekday bit set.
package storage

func (d *DB) initSchema() error {
	schema := `
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
		completed INTEGER NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		history TEXT NOT NULL DEFAULT '[]',
		reminders_enabled INTEGER NOT NULL DEFAULT 0,
		reminder_times TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}
