package library

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/pkg/types"
)

// Store caches scan results and probed durations between runs so the
// engine can skip the decode-based duration fallback for known files.
// It never persists playlist or equalizer state.
type Store struct {
	db    *sql.DB
	mu    sync.Mutex
	debug bool
}

func NewStore(cfg *config.Config) (*Store, error) {
	dbDir := filepath.Dir(cfg.Library.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Library.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute pragma %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, debug: cfg.Debug}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tracks (
			path        TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			scanned_at  INTEGER NOT NULL
		)`)
	return err
}

// SaveTracks upserts the scan result, keeping any known durations, and
// drops rows for files that disappeared from the library.
func (s *Store) SaveTracks(tracks []types.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()
	for _, tr := range tracks {
		if _, err := tx.Exec(`
			INSERT INTO tracks (path, title, duration_ms, scanned_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET title = excluded.title, scanned_at = excluded.scanned_at`,
			tr.Path, tr.Title, tr.Duration.Milliseconds(), now); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM tracks WHERE scanned_at < ?", now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	if s.debug {
		log.Printf("[STORE] Saved %d tracks", len(tracks))
	}
	return nil
}

// LoadDurations fills in cached durations for the given tracks in place.
func (s *Store) LoadDurations(tracks []types.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.db.Prepare("SELECT duration_ms FROM tracks WHERE path = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range tracks {
		var ms int64
		err := stmt.QueryRow(tracks[i].Path).Scan(&ms)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return err
		}
		if ms > 0 {
			tracks[i].Duration = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

// SaveDuration records a duration the engine discovered during playback.
func (s *Store) SaveDuration(path string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE tracks SET duration_ms = ? WHERE path = ?", d.Milliseconds(), path)
	return err
}

// Duration returns the cached duration for path, if any.
func (s *Store) Duration(path string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms int64
	err := s.db.QueryRow("SELECT duration_ms FROM tracks WHERE path = ?", path).Scan(&ms)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

func (s *Store) Close() error {
	return s.db.Close()
}
