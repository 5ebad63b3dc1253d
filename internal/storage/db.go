// ABOUTME: SQLite activity store on modernc.org/sqlite (pure Go, no CGO).
// ABOUTME: The default backend; one file under the XDG data dir.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Connection pragmas, applied by the driver to every pooled connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// DB is the SQLite activity store.
type DB struct {
	db     *sql.DB
	dbPath string
}

var _ Repository = (*DB)(nil)

// Open opens the activity database at path, creating the file, its directory
// and the schema when missing. The file is private to the user.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d := &DB{db: conn, dbPath: path}

	fail := func(step string, err error) (*DB, error) {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	if err := conn.Ping(); err != nil {
		return fail("connect database", err)
	}
	// The file exists once the first connection is up.
	if err := os.Chmod(path, 0600); err != nil {
		return fail("set database permissions", err)
	}
	if err := d.initSchema(); err != nil {
		return fail("initialize schema", err)
	}
	return d, nil
}

func sqliteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// DataDir is $XDG_DATA_HOME/habito, falling back to ~/.local/share/habito.
func DataDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "habito")
}

// Path returns the file the database lives in.
func (d *DB) Path() string {
	return d.dbPath
}

func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
