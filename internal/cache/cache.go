// Package cache persists the last-known canonical board snapshots in a
// local SQLite database so a board can be shown while offline. It is a
// read-side convenience only; the backend stays the source of truth and
// every reconciliation defers to it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/taskboard/internal/model"
)

// Cache is a SQLite-backed snapshot cache.
type Cache struct {
	db *sqlx.DB
}

// Open opens (or creates) a SQLite database at dbPath, enables WAL mode,
// and runs any pending schema migrations.
func Open(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *Cache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveBoard stores the canonical snapshot for a project, replacing any
// previous one.
func (c *Cache) SaveBoard(ctx context.Context, b *model.Board) error {
	if b == nil || b.ProjectID == "" {
		return nil
	}

	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling board for project %s: %w", b.ProjectID, err)
	}

	const query = `
		INSERT OR REPLACE INTO boards (project_id, payload, fetched_at)
		VALUES (?, ?, ?)`
	_, err = c.db.ExecContext(ctx, query, b.ProjectID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving board for project %s: %w", b.ProjectID, err)
	}
	return nil
}

// LoadBoard returns the cached snapshot for a project and when it was
// fetched. Returns (nil, zero, nil) when no snapshot is cached.
func (c *Cache) LoadBoard(ctx context.Context, projectID string) (*model.Board, time.Time, error) {
	var row struct {
		Payload   string    `db:"payload"`
		FetchedAt time.Time `db:"fetched_at"`
	}

	const query = `SELECT payload, fetched_at FROM boards WHERE project_id = ?`
	err := c.db.GetContext(ctx, &row, query, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("loading board for project %s: %w", projectID, err)
	}

	var b model.Board
	if err := json.Unmarshal([]byte(row.Payload), &b); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshaling cached board for %s: %w", projectID, err)
	}
	return &b, row.FetchedAt, nil
}

// SaveProjects replaces the cached project list.
func (c *Cache) SaveProjects(ctx context.Context, projects []model.Project) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing cached projects: %w", err)
	}

	const query = `INSERT INTO projects (id, name, fetched_at) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	for _, p := range projects {
		if _, err := tx.ExecContext(ctx, query, p.ID, p.Name, now); err != nil {
			return fmt.Errorf("caching project %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadProjects returns the cached project list in name order.
func (c *Cache) LoadProjects(ctx context.Context) ([]model.Project, error) {
	var rows []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}

	err := c.db.SelectContext(ctx, &rows, "SELECT id, name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("loading cached projects: %w", err)
	}

	projects := make([]model.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, model.Project{ID: r.ID, Name: r.Name})
	}
	return projects, nil
}
