package models

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS high_scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    initials TEXT NOT NULL,
    score INTEGER NOT NULL,
    level INTEGER NOT NULL,
    lines INTEGER NOT NULL,
    played_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS high_scores_score ON high_scores (score DESC, id ASC);
`

// SQLiteStore keeps the high-score table in a SQLite database.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Load() ([]ScoreEntry, error) {
	rows, err := s.sqlDB.Query(
		`SELECT initials, score, level, lines, played_at
		   FROM high_scores
		  ORDER BY score DESC, id ASC
		  LIMIT ?`,
		MaxEntries,
	)
	if err != nil {
		return nil, fmt.Errorf("query high scores: %w", err)
	}
	defer rows.Close()

	out := []ScoreEntry{}
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Initials, &e.Score, &e.Level, &e.Lines, &e.Date); err != nil {
			return nil, fmt.Errorf("scan high score: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate high scores: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(entry ScoreEntry) error {
	tx, err := s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO high_scores (initials, score, level, lines, played_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Initials, entry.Score, entry.Level, entry.Lines, entry.Date,
	); err != nil {
		return fmt.Errorf("insert high score: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM high_scores
		  WHERE id NOT IN (SELECT id FROM high_scores ORDER BY score DESC, id ASC LIMIT ?)`,
		MaxEntries,
	); err != nil {
		return fmt.Errorf("trim high scores: %w", err)
	}
	return tx.Commit()
}
