package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("Second Migrate failed: %v", err)
	}
	var n int
	s.DB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n)
	if n != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", n)
	}
}

func TestCreateAndListContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var events []string
	s.OnChange = func(action string, c models.ContactSubmission) {
		events = append(events, action)
	}

	for _, c := range []models.ContactSubmission{
		{FullName: "Jane Doe", Phone: "+94771234567", Message: "Passport photos for two"},
		{FullName: "Kamal Perera", Phone: "0711111111", Message: "Framing quote"},
		{FullName: "Nadia", Phone: "0722222222", Message: "Restore an old PASSPORT picture"},
	} {
		c := c
		if err := s.CreateContact(ctx, &c); err != nil {
			t.Fatalf("CreateContact failed: %v", err)
		}
		if c.ID == 0 || c.CreatedAt.IsZero() {
			t.Errorf("Expected ID and timestamp to be set, got %+v", c)
		}
	}

	if len(events) != 3 || events[0] != ActionInsert {
		t.Errorf("Expected 3 insert events, got %v", events)
	}

	all, err := s.ListContacts(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListContacts failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 contacts, got %d", len(all))
	}
	if all[0].FullName != "Nadia" {
		t.Errorf("Expected newest first, got %q", all[0].FullName)
	}

	found, _ := s.ListContacts(ctx, "passport", 10, 0)
	if len(found) != 2 {
		t.Errorf("Expected 2 case-insensitive matches, got %d", len(found))
	}
	if n, _ := s.CountContacts(ctx, "0711"); n != 1 {
		t.Errorf("Expected phone search to match 1, got %d", n)
	}

	page, _ := s.ListContacts(ctx, "", 2, 2)
	if len(page) != 1 {
		t.Errorf("Expected 1 contact on the second page, got %d", len(page))
	}
}

func TestDeleteContact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := models.ContactSubmission{FullName: "Jane", Phone: "1", Message: "hi"}
	s.CreateContact(ctx, &c)

	var deleted []int64
	s.OnChange = func(action string, got models.ContactSubmission) {
		if action == ActionDelete {
			deleted = append(deleted, got.ID)
		}
	}

	if err := s.DeleteContact(ctx, c.ID); err != nil {
		t.Fatalf("DeleteContact failed: %v", err)
	}
	if err := s.DeleteContact(ctx, c.ID); err != nil {
		t.Fatalf("Deleting a missing row should not fail: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != c.ID {
		t.Errorf("Expected exactly one delete event, got %v", deleted)
	}
	if n, _ := s.CountContacts(ctx, ""); n != 0 {
		t.Errorf("Expected empty table, got %d", n)
	}
}

func TestGetContactStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-30 * 24 * time.Hour)
	s.DB.Exec(`INSERT INTO contact_submissions (full_name, phone, message, created_at) VALUES (?, ?, ?, ?)`, "Old", "1", "old", old)
	c := models.ContactSubmission{FullName: "New", Phone: "2", Message: "new"}
	s.CreateContact(ctx, &c)

	stats, err := s.GetContactStats(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetContactStats failed: %v", err)
	}
	if stats.Total != 2 || stats.LastWeek != 1 {
		t.Errorf("Expected 2 total / 1 last week, got %+v", stats)
	}
}

func TestRebind(t *testing.T) {
	s := &Store{driver: "pgx"}
	if got := s.rebind(`SELECT 1 WHERE a = ? AND b = ?`); got != `SELECT 1 WHERE a = $1 AND b = $2` {
		t.Errorf("Unexpected rebind: %s", got)
	}
	s.driver = "sqlite"
	if got := s.rebind(`a = ?`); got != `a = ?` {
		t.Errorf("sqlite query must be unchanged, got %s", got)
	}
}
