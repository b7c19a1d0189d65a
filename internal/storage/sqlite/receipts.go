package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/storage"
)

// SubmitReceipt inserts a receipt and rewrites the period aggregate in one
// transaction. The target period must exist and be active; the resolver's
// routing guarantees the latter for new submissions, and the status check
// here closes the race with a concurrent finalize.
func (s *SQLiteStore) SubmitReceipt(ctx context.Context, spaceID, periodID string, r *models.Receipt, recompute storage.RecomputeFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := periodStatusTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return err
	}
	if status == models.PeriodSettled {
		return models.ErrPeriodSettled
	}

	if err := insertReceiptTx(ctx, tx, spaceID, periodID, r); err != nil {
		return err
	}

	if _, _, err := s.recomputeTx(ctx, tx, spaceID, periodID, recompute); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateReceipt replaces a stored receipt in place and rewrites the
// aggregate from the resulting set.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, spaceID, periodID string, r *models.Receipt, recompute storage.RecomputeFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := periodStatusTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return err
	}
	if status == models.PeriodSettled {
		return models.ErrPeriodSettled
	}

	if err := deleteReceiptTx(ctx, tx, spaceID, periodID, r.ID); err != nil {
		return err
	}
	if err := insertReceiptTx(ctx, tx, spaceID, periodID, r); err != nil {
		return err
	}

	if _, _, err := s.recomputeTx(ctx, tx, spaceID, periodID, recompute); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteReceipt removes a receipt and rewrites the aggregate from the
// remaining receipt set, never a subtraction shortcut.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, spaceID, periodID, receiptID string, recompute storage.RecomputeFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := periodStatusTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return err
	}
	if status == models.PeriodSettled {
		return models.ErrPeriodSettled
	}

	if err := deleteReceiptTx(ctx, tx, spaceID, periodID, receiptID); err != nil {
		return err
	}

	if _, _, err := s.recomputeTx(ctx, tx, spaceID, periodID, recompute); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves one receipt with its items and splits.
func (s *SQLiteStore) GetReceipt(ctx context.Context, spaceID, periodID, receiptID string) (*models.Receipt, error) {
	receipts, err := s.queryReceipts(ctx,
		`SELECT receipt_id, submitted_by, submitted_by_name, paid_by, paid_by_name, belongs_to_date, memo, image_ref, total_amount, created_at
		 FROM receipts WHERE space_id = ? AND period_id = ? AND receipt_id = ?`,
		spaceID, periodID, receiptID)
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, models.ErrReceiptNotFound
	}
	return &receipts[0], nil
}

// ListReceipts returns a period's receipts, newest first.
func (s *SQLiteStore) ListReceipts(ctx context.Context, spaceID, periodID string) ([]models.Receipt, error) {
	return s.queryReceipts(ctx,
		`SELECT receipt_id, submitted_by, submitted_by_name, paid_by, paid_by_name, belongs_to_date, memo, image_ref, total_amount, created_at
		 FROM receipts WHERE space_id = ? AND period_id = ? ORDER BY created_at DESC, receipt_id DESC`,
		spaceID, periodID)
}

func (s *SQLiteStore) queryReceipts(ctx context.Context, query string, args ...any) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	spaceID, periodID := args[0].(string), args[1].(string)
	receipts, err := scanReceipts(rows)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		receipts[i].Items, err = s.loadItems(ctx, spaceID, periodID, receipts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, spaceID, periodID, receiptID string) ([]models.ReceiptItem, error) {
	itemRows, err := s.db.QueryContext(ctx,
		`SELECT seq, item_name, amount, per_person
		 FROM receipt_items WHERE space_id = ? AND period_id = ? AND receipt_id = ? ORDER BY seq`,
		spaceID, periodID, receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}
	defer itemRows.Close()

	var items []models.ReceiptItem
	var seqs []int
	for itemRows.Next() {
		var item models.ReceiptItem
		var seq int
		if err := itemRows.Scan(&seq, &item.ItemName, &item.Amount, &item.PerPerson); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
		seqs = append(seqs, seq)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i, seq := range seqs {
		splitRows, err := s.db.QueryContext(ctx,
			`SELECT user_id FROM item_splits
			 WHERE space_id = ? AND period_id = ? AND receipt_id = ? AND seq = ? ORDER BY user_id`,
			spaceID, periodID, receiptID, seq,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item splits: %w", err)
		}
		for splitRows.Next() {
			var userID string
			if err := splitRows.Scan(&userID); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("failed to scan split: %w", err)
			}
			items[i].SplitAmong = append(items[i].SplitAmong, userID)
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate splits: %w", err)
		}
	}
	return items, nil
}

// ─── transaction-scoped helpers ─────────────────────────────────────────────

func insertReceiptTx(ctx context.Context, tx *sql.Tx, spaceID, periodID string, r *models.Receipt) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (space_id, period_id, receipt_id, submitted_by, submitted_by_name, paid_by, paid_by_name, belongs_to_date, memo, image_ref, total_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spaceID, periodID, r.ID, r.SubmittedBy, r.SubmittedByName, r.PaidBy, r.PaidByName,
		r.BelongsToDate, r.Memo, r.ImageRef, r.TotalAmount, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for seq, item := range r.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO receipt_items (space_id, period_id, receipt_id, seq, item_name, amount, per_person)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			spaceID, periodID, r.ID, seq, item.ItemName, item.Amount, item.PerPerson,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
		for _, userID := range item.SplitAmong {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO item_splits (space_id, period_id, receipt_id, seq, user_id)
				 VALUES (?, ?, ?, ?, ?)`,
				spaceID, periodID, r.ID, seq, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item split: %w", err)
			}
		}
	}
	return nil
}

func deleteReceiptTx(ctx context.Context, tx *sql.Tx, spaceID, periodID, receiptID string) error {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM receipts WHERE space_id = ? AND period_id = ? AND receipt_id = ?",
		spaceID, periodID, receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return models.ErrReceiptNotFound
	}
	return nil
}

// listReceiptsTx reads the full receipt set inside an open transaction so a
// recomputation never observes receipts being superseded by the write it is
// part of.
func listReceiptsTx(ctx context.Context, tx *sql.Tx, spaceID, periodID string) ([]models.Receipt, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT receipt_id, submitted_by, submitted_by_name, paid_by, paid_by_name, belongs_to_date, memo, image_ref, total_amount, created_at
		 FROM receipts WHERE space_id = ? AND period_id = ? ORDER BY created_at, receipt_id`,
		spaceID, periodID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	receipts, err := scanReceipts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range receipts {
		itemRows, err := tx.QueryContext(ctx,
			`SELECT ri.seq, ri.item_name, ri.amount, ri.per_person, COALESCE(group_concat(sp.user_id), '')
			 FROM receipt_items ri
			 LEFT JOIN item_splits sp
			   ON sp.space_id = ri.space_id AND sp.period_id = ri.period_id AND sp.receipt_id = ri.receipt_id AND sp.seq = ri.seq
			 WHERE ri.space_id = ? AND ri.period_id = ? AND ri.receipt_id = ?
			 GROUP BY ri.seq ORDER BY ri.seq`,
			spaceID, periodID, receipts[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query receipt items: %w", err)
		}
		for itemRows.Next() {
			var item models.ReceiptItem
			var seq int
			var splits string
			if err := itemRows.Scan(&seq, &item.ItemName, &item.Amount, &item.PerPerson, &splits); err != nil {
				itemRows.Close()
				return nil, fmt.Errorf("failed to scan item: %w", err)
			}
			if splits != "" {
				item.SplitAmong = strings.Split(splits, ",")
			}
			receipts[i].Items = append(receipts[i].Items, item)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate items: %w", err)
		}
	}
	return receipts, nil
}

func scanReceipts(rows *sql.Rows) ([]models.Receipt, error) {
	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.ID, &r.SubmittedBy, &r.SubmittedByName, &r.PaidBy, &r.PaidByName,
			&r.BelongsToDate, &r.Memo, &r.ImageRef, &r.TotalAmount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}
