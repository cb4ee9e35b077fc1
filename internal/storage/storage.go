package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/tidymark/internal/model"
)

// Storage defines the interface for persisting the bookmark store.
type Storage interface {
	Load() (*model.Store, error)
	Save(store *model.Store) error
}

// JSONStorage implements Storage using a JSON file.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the store from the JSON file.
// Returns a store holding only the root folders if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStore(), nil
		}
		return nil, err
	}

	var store model.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	if store.Folders == nil {
		store.Folders = []model.Folder{}
	}
	if store.Bookmarks == nil {
		store.Bookmarks = []model.Bookmark{}
	}
	store.EnsureRoots()

	return &store, nil
}

// Save writes the store to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(store *model.Store) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// DefaultDir returns ~/.config/tidymark.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tidymark"), nil
}

// DefaultJSONPath returns the default store path: ~/.config/tidymark/bookmarks.json
func DefaultJSONPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookmarks.json"), nil
}

// Open opens the storage backend for path. A ".db" or ".sqlite" suffix
// selects SQLite, anything else JSON. With an empty path an existing
// default SQLite database is preferred, otherwise the default JSON file.
func Open(path string) (Storage, error) {
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			return NewSQLiteStorage(path)
		}
		return NewJSONStorage(path), nil
	}

	sqlitePath, err := DefaultSQLitePath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return NewSQLiteStorage(sqlitePath)
	}

	jsonPath, err := DefaultJSONPath()
	if err != nil {
		return nil, err
	}
	return NewJSONStorage(jsonPath), nil
}
