package store

import (
	"context"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
)

// GetContactStats counts all submissions and those from the last seven days.
func (s *Store) GetContactStats(ctx context.Context, now time.Time) (models.ContactStats, error) {
	var stats models.ContactStats

	// 1. Total
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&stats.Total); err != nil {
		return stats, err
	}

	// 2. Last week
	since := now.UTC().Add(-7 * 24 * time.Hour)
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM contact_submissions WHERE created_at >= ?`), since).Scan(&stats.LastWeek)
	return stats, err
}
