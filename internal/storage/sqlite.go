package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/tidymark/internal/model"
)

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema. position keeps sibling order stable
// across save/load so tree views do not reshuffle.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES folders(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_parent_id ON bookmarks(parent_id);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the store from the SQLite database.
func (s *SQLiteStorage) Load() (*model.Store, error) {
	store := &model.Store{
		Folders:   []model.Folder{},
		Bookmarks: []model.Bookmark{},
	}

	rows, err := s.db.Query(`
		SELECT id, title, parent_id, created_at
		FROM folders
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f model.Folder
		var parentID sql.NullString
		var createdAt string

		if err := rows.Scan(&f.ID, &f.Title, &parentID, &createdAt); err != nil {
			return nil, err
		}
		f.ParentID = parentID.String
		f.CreatedAt = parseTime(createdAt)

		store.Folders = append(store.Folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`
		SELECT id, title, url, parent_id, created_at
		FROM bookmarks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b model.Bookmark
		var createdAt string

		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.ParentID, &createdAt); err != nil {
			return nil, err
		}
		b.CreatedAt = parseTime(createdAt)

		store.Bookmarks = append(store.Bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	store.EnsureRoots()
	return store, nil
}

// Save writes the store to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(store *model.Store) error {
	// Folders may reference parents that haven't been inserted yet.
	// PRAGMA foreign_keys cannot be changed inside a transaction.
	if _, err := s.db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	defer s.db.Exec("PRAGMA foreign_keys = ON")

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bookmarks"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM folders"); err != nil {
		return err
	}

	folderStmt, err := tx.Prepare(`
		INSERT INTO folders (id, title, parent_id, position, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer folderStmt.Close()

	for i, f := range store.Folders {
		var parentID *string
		if f.ParentID != "" {
			parentID = &f.ParentID
		}
		if _, err := folderStmt.Exec(f.ID, f.Title, parentID, i, formatTime(f.CreatedAt)); err != nil {
			return err
		}
	}

	bookmarkStmt, err := tx.Prepare(`
		INSERT INTO bookmarks (id, title, url, parent_id, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer bookmarkStmt.Close()

	for i, b := range store.Bookmarks {
		if _, err := bookmarkStmt.Exec(b.ID, b.Title, b.URL, b.ParentID, i, formatTime(b.CreatedAt)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DefaultSQLitePath returns the default database path: ~/.config/tidymark/bookmarks.db
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookmarks.db"), nil
}
