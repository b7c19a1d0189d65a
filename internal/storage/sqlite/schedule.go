package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitweek/internal/models"
)

// GetSchedule returns a space's auto-close configuration, or the disabled
// default if none has been stored yet.
func (s *SQLiteStore) GetSchedule(ctx context.Context, spaceID string) (*models.ScheduleConfig, error) {
	cfg := &models.ScheduleConfig{}
	var enabled int
	var frequency string

	err := s.db.QueryRowContext(ctx,
		`SELECT enabled, frequency, weekly_day, monthly_day, yearly_month, yearly_day, close_time
		 FROM settlement_schedules WHERE space_id = ?`,
		spaceID,
	).Scan(&enabled, &frequency, &cfg.WeeklyDay, &cfg.MonthlyDay, &cfg.YearlyMonth, &cfg.YearlyDay, &cfg.Time)
	if err == sql.ErrNoRows {
		return models.DefaultSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	cfg.Enabled = enabled != 0
	cfg.Frequency = models.ScheduleFrequency(frequency)
	return cfg, nil
}

// PutSchedule upserts a space's auto-close configuration.
func (s *SQLiteStore) PutSchedule(ctx context.Context, spaceID string, cfg *models.ScheduleConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement_schedules (space_id, enabled, frequency, weekly_day, monthly_day, yearly_month, yearly_day, close_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (space_id) DO UPDATE SET
		   enabled = excluded.enabled,
		   frequency = excluded.frequency,
		   weekly_day = excluded.weekly_day,
		   monthly_day = excluded.monthly_day,
		   yearly_month = excluded.yearly_month,
		   yearly_day = excluded.yearly_day,
		   close_time = excluded.close_time`,
		spaceID, boolToInt(cfg.Enabled), string(cfg.Frequency),
		cfg.WeeklyDay, cfg.MonthlyDay, cfg.YearlyMonth, cfg.YearlyDay, cfg.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return nil
}

// ListScheduledSpaces returns the IDs of spaces with a stored schedule.
func (s *SQLiteStore) ListScheduledSpaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT space_id FROM settlement_schedules ORDER BY space_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled spaces: %w", err)
	}
	defer rows.Close()

	var spaceIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan space id: %w", err)
		}
		spaceIDs = append(spaceIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spaces: %w", err)
	}
	return spaceIDs, nil
}
