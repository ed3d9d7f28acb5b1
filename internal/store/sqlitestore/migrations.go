package sqlitestore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Makepad-fr/tada/internal/log"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is ordered by version.
var migrations = []Migration{
	{
		Version:     1,
		Description: "create todos table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE todos (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					body       TEXT    NOT NULL,
					status     TEXT    NOT NULL CHECK (status IN ('pending', 'completed')),
					created_at INTEGER NOT NULL,
					updated_at INTEGER NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index todos by status",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX idx_todos_status ON todos(status, id)`)
			return err
		},
	},
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL,
			description TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}
		log.Info().
			Int("version", m.Version).
			Str("description", m.Description).
			Msg("applying migration")

		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, applied_at, description) VALUES (?, ?, ?)",
		m.Version, time.Now().UnixMilli(), m.Description,
	); err != nil {
		return err
	}
	return tx.Commit()
}
