package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/Maheesh09/studio-full-stack/internal/models"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres (Supabase) via database/sql
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

// ChangeFunc is told about every contact row written or removed.
type ChangeFunc func(action string, c models.ContactSubmission)

const (
	ActionInsert = "INSERT"
	ActionDelete = "DELETE"
)

type Store struct {
	DB     *sql.DB
	driver string

	// OnChange, when set, is called after each committed insert or delete.
	OnChange ChangeFunc
}

// NewStore opens driver ("sqlite" or "pgx") at dataSourceName and pings it.
func NewStore(driver, dataSourceName string) (*Store, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// One writer at a time; avoids SQLITE_BUSY under concurrent form posts.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Dialect names the migrations directory for the open driver.
func (s *Store) Dialect() string {
	if s.driver == "pgx" {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) notify(action string, c models.ContactSubmission) {
	if s.OnChange != nil {
		s.OnChange(action, c)
	}
}
