// Package store provides the SQLite-backed persistence for the keyword
// encoding mapping, the last-run clustering statistics, and the media
// profile cache. A store failure never aborts startup: callers degrade to
// in-memory state.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

// Store wraps the SQLite database holding durable engine state.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "autotopicsum.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS encoding_mapping (
			namespace TEXT NOT NULL,
			original TEXT NOT NULL,
			canonical TEXT NOT NULL,
			PRIMARY KEY (namespace, original)
		);`,
		`CREATE TABLE IF NOT EXISTS clustering_stats (
			id TEXT PRIMARY KEY,
			stats_json TEXT,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS media_profiles (
			name TEXT PRIMARY KEY,
			profile_json TEXT,
			updated_at DATETIME
		);`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadMapping reads the whole persisted encoding mapping, keyed by namespace
// then original keyword.
func (s *Store) LoadMapping() (map[string]map[string]string, error) {
	rows, err := s.db.Query(`SELECT namespace, original, canonical FROM encoding_mapping`)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoding mapping: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]map[string]string)
	for rows.Next() {
		var namespace, original, canonical string
		if err := rows.Scan(&namespace, &original, &canonical); err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		if mapping[namespace] == nil {
			mapping[namespace] = make(map[string]string)
		}
		mapping[namespace][original] = canonical
	}
	return mapping, rows.Err()
}

// SaveMapping rewrites the persisted encoding mapping in one transaction.
func (s *Store) SaveMapping(mapping map[string]map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM encoding_mapping`); err != nil {
		return fmt.Errorf("failed to clear encoding mapping: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO encoding_mapping (namespace, original, canonical) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for namespace, entries := range mapping {
		for original, canonical := range entries {
			if _, err := stmt.Exec(namespace, original, canonical); err != nil {
				return fmt.Errorf("failed to insert mapping entry: %w", err)
			}
		}
	}
	return tx.Commit()
}

// statsRowID is the single row under which last-run statistics live.
const statsRowID = "last_run"

// LoadStats returns the serialized last-run clustering statistics, or nil
// when none have been persisted yet.
func (s *Store) LoadStats() ([]byte, error) {
	var statsJSON string
	err := s.db.QueryRow(`SELECT stats_json FROM clustering_stats WHERE id = ?`, statsRowID).Scan(&statsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read clustering stats: %w", err)
	}
	return []byte(statsJSON), nil
}

// SaveStats persists the serialized last-run clustering statistics.
func (s *Store) SaveStats(statsJSON []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO clustering_stats (id, stats_json, updated_at) VALUES (?, ?, ?)`,
		statsRowID, string(statsJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save clustering stats: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile for a media name. The second return
// is false on a cache miss.
func (s *Store) GetProfile(name string) (core.MediaProfile, bool, error) {
	var profileJSON string
	err := s.db.QueryRow(`SELECT profile_json FROM media_profiles WHERE name = ?`, name).Scan(&profileJSON)
	if err == sql.ErrNoRows {
		return core.MediaProfile{}, false, nil
	}
	if err != nil {
		return core.MediaProfile{}, false, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile core.MediaProfile
	if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
		return core.MediaProfile{}, false, fmt.Errorf("failed to decode profile for %q: %w", name, err)
	}
	return profile, true, nil
}

// SaveProfile caches the profile for a media name.
func (s *Store) SaveProfile(name string, profile core.MediaProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO media_profiles (name, profile_json, updated_at) VALUES (?, ?, ?)`,
		name, string(profileJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ListProfiles returns every cached media profile keyed by media name.
func (s *Store) ListProfiles() (map[string]core.MediaProfile, error) {
	rows, err := s.db.Query(`SELECT name, profile_json FROM media_profiles`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[string]core.MediaProfile)
	for rows.Next() {
		var name, profileJSON string
		if err := rows.Scan(&name, &profileJSON); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var profile core.MediaProfile
		if err := json.Unmarshal([]byte(profileJSON), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile for %q: %w", name, err)
		}
		profiles[name] = profile
	}
	return profiles, rows.Err()
}
