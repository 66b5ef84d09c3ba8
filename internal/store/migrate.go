package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the embedded migrations for the open driver.
func (s *Store) Migrate() error {
	dir, err := fs.Sub(migrationsFS, path.Join("migrations", s.Dialect()))
	if err != nil {
		return err
	}
	return s.MigrateFS(dir)
}

// MigrateFS runs all .sql files in fsys in name order, skipping ones
// already recorded in schema_migrations.
func (s *Store) MigrateFS(fsys fs.FS) error {
	// 1. Create migrations table if not exists to track applied migrations
	_, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	// 2. Read migration files
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrationFiles []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".sql") {
			migrationFiles = append(migrationFiles, f.Name())
		}
	}
	sort.Strings(migrationFiles) // Ensure order 001, 002, ...

	// 3. Apply new migrations
	for _, file := range migrationFiles {
		if s.isApplied(file) {
			slog.Debug("Skipping already applied migration", "file", file)
			continue
		}

		slog.Info("Applying migration", "file", file)
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		tx, err := s.DB.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
		if _, err := tx.Exec(s.rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), file); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) isApplied(version string) bool {
	var exists int
	err := s.DB.QueryRow(s.rebind(`SELECT 1 FROM schema_migrations WHERE version = ?`), version).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		slog.Warn("Could not check migration state", "version", version, "error", err)
	}
	return err == nil
}
