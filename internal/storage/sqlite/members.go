package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitweek/internal/models"
)

// ListMembers returns a space's roster, ordered by display name.
func (s *SQLiteStore) ListMembers(ctx context.Context, spaceID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, display_name, contact FROM members WHERE space_id = ? ORDER BY display_name, user_id",
		spaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.Contact); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// PutMember upserts a roster entry.
func (s *SQLiteStore) PutMember(ctx context.Context, spaceID string, m *models.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (space_id, user_id, display_name, contact) VALUES (?, ?, ?, ?)
		 ON CONFLICT (space_id, user_id) DO UPDATE SET display_name = excluded.display_name, contact = excluded.contact`,
		spaceID, m.UserID, m.DisplayName, m.Contact,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}
