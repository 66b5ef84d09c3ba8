package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
)

const contactColumns = `id, full_name, phone, message, created_at`

// contactFilter builds the WHERE clause for a case-insensitive search over
// name, phone and message.
func contactFilter(search string) (string, []interface{}) {
	search = strings.TrimSpace(strings.ToLower(search))
	if search == "" {
		return "", nil
	}
	like := "%" + search + "%"
	return ` WHERE LOWER(full_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(message) LIKE ?`, []interface{}{like, like, like}
}

// CreateContact stores a submission and fills in its ID and timestamp.
func (s *Store) CreateContact(ctx context.Context, c *models.ContactSubmission) error {
	c.CreatedAt = time.Now().UTC()
	query := s.rebind(`INSERT INTO contact_submissions (full_name, phone, message, created_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := s.DB.QueryRowContext(ctx, query, c.FullName, c.Phone, c.Message, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	s.notify(ActionInsert, *c)
	return nil
}

// ListContacts returns one page of submissions, newest first.
func (s *Store) ListContacts(ctx context.Context, search string, limit, offset int) ([]models.ContactSubmission, error) {
	where, args := contactFilter(search)
	query := s.rebind(`SELECT ` + contactColumns + ` FROM contact_submissions` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	rows, err := s.DB.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []models.ContactSubmission
	for rows.Next() {
		var c models.ContactSubmission
		if err := rows.Scan(&c.ID, &c.FullName, &c.Phone, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllContacts returns every matching submission, newest first.
func (s *Store) AllContacts(ctx context.Context, search string) ([]models.ContactSubmission, error) {
	total, err := s.CountContacts(ctx, search)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	return s.ListContacts(ctx, search, total, 0)
}

func (s *Store) CountContacts(ctx context.Context, search string) (int, error) {
	where, args := contactFilter(search)
	var n int
	if err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM contact_submissions`+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}

// DeleteContact removes a submission. Deleting a missing row is not an error.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM contact_submissions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify(ActionDelete, models.ContactSubmission{ID: id})
	}
	return nil
}
