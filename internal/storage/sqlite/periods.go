package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/storage"
)

// GetOrCreatePeriod returns the existing period with fresh.ID or persists
// fresh. The insert uses ON CONFLICT DO NOTHING so two concurrent resolvers
// of the same week cannot both create it.
func (s *SQLiteStore) GetOrCreatePeriod(ctx context.Context, spaceID string, fresh *models.SettlementPeriod) (*models.SettlementPeriod, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO periods (space_id, period_id, week_start, week_end, status, total_amount, created_at, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
		 ON CONFLICT (space_id, period_id) DO NOTHING`,
		spaceID, fresh.ID, fresh.WeekStart, fresh.WeekEnd, string(fresh.Status), fresh.TotalAmount, fresh.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert period: %w", err)
	}
	return s.GetPeriod(ctx, spaceID, fresh.ID)
}

// GetPeriod retrieves a period with its participant map.
func (s *SQLiteStore) GetPeriod(ctx context.Context, spaceID, periodID string) (*models.SettlementPeriod, error) {
	p := &models.SettlementPeriod{SpaceID: spaceID}
	var status string
	var settledAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT period_id, week_start, week_end, status, total_amount, created_at, settled_at
		 FROM periods WHERE space_id = ? AND period_id = ?`,
		spaceID, periodID,
	).Scan(&p.ID, &p.WeekStart, &p.WeekEnd, &status, &p.TotalAmount, &p.CreatedAt, &settledAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrPeriodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	p.Status = models.PeriodStatus(status)
	if settledAt.Valid {
		p.SettledAt = settledAt.Int64
	}

	p.Participants, err = s.loadParticipants(ctx, spaceID, periodID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, spaceID, periodID string) (map[string]models.ParticipantBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, display_name, total_paid, total_owed, balance, payment_confirmed, transfer_completed
		 FROM participants WHERE space_id = ? AND period_id = ?`,
		spaceID, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[string]models.ParticipantBalance)
	for rows.Next() {
		var b models.ParticipantBalance
		var paid, transferred int
		if err := rows.Scan(&b.UserID, &b.DisplayName, &b.TotalPaid, &b.TotalOwed, &b.Balance, &paid, &transferred); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		b.PaymentConfirmed = paid != 0
		b.TransferCompleted = transferred != 0
		participants[b.UserID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// FinalizePeriod flips an active period to settled with a fresh aggregate,
// all in one transaction. A settled period is returned unchanged.
func (s *SQLiteStore) FinalizePeriod(ctx context.Context, spaceID, periodID string, settledAt int64, recompute storage.RecomputeFunc) (*models.SettlementPeriod, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := periodStatusTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return nil, false, err
	}
	if status == models.PeriodSettled {
		// Idempotent: return the existing snapshot without touching
		// status or settled_at. Release the transaction first; the pool
		// holds a single connection and GetPeriod needs it.
		tx.Rollback()
		snapshot, err := s.GetPeriod(ctx, spaceID, periodID)
		if err != nil {
			return nil, false, err
		}
		return snapshot, true, nil
	}

	if _, _, err := s.recomputeTx(ctx, tx, spaceID, periodID, recompute); err != nil {
		return nil, false, fmt.Errorf("failed to recompute before finalize: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE periods SET status = ?, settled_at = ? WHERE space_id = ? AND period_id = ?",
		string(models.PeriodSettled), settledAt, spaceID, periodID,
	); err != nil {
		return nil, false, fmt.Errorf("failed to settle period: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	snapshot, err := s.GetPeriod(ctx, spaceID, periodID)
	if err != nil {
		return nil, false, err
	}
	return snapshot, false, nil
}

// SetConfirmation toggles one audit flag on a settled period's participant.
func (s *SQLiteStore) SetConfirmation(ctx context.Context, spaceID, periodID, userID string, flag models.ConfirmationFlag, value bool) error {
	var column string
	switch flag {
	case models.FlagPaymentConfirmed:
		column = "payment_confirmed"
	case models.FlagTransferCompleted:
		column = "transfer_completed"
	default:
		return fmt.Errorf("unknown confirmation flag %q", flag)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := periodStatusTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return err
	}
	if status != models.PeriodSettled {
		return models.ErrPeriodNotSettled
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE participants SET "+column+" = ? WHERE space_id = ? AND period_id = ? AND user_id = ?",
		boolToInt(value), spaceID, periodID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return models.ErrParticipantNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
