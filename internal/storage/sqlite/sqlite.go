// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface. Every receipt mutation and finalize runs its
// read-receipts, recompute and write-aggregate steps inside a single
// transaction; SQLite's single-writer model then serializes conflicting
// writers, so concurrent mutations on the same period converge.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout makes a writer wait for a held lock instead of failing
	// with SQLITE_BUSY; the pragma is in the DSN so it applies to every
	// connection the pool opens.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer at a time. Funneling all access through
	// one connection queues concurrent mutations behind each other, so they
	// serialize and converge rather than surfacing lock errors.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// recomputeTx reads the full receipt set inside tx, applies recompute, and
// rewrites the participants table and period total. Returns the new
// participant map and total so callers can report them without re-reading.
func (s *SQLiteStore) recomputeTx(ctx context.Context, tx *sql.Tx, spaceID, periodID string, recompute storage.RecomputeFunc) (map[string]models.ParticipantBalance, int64, error) {
	receipts, err := listReceiptsTx(ctx, tx, spaceID, periodID)
	if err != nil {
		return nil, 0, err
	}

	participants, totalAmount := recompute(receipts)

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM participants WHERE space_id = ? AND period_id = ?",
		spaceID, periodID,
	); err != nil {
		return nil, 0, fmt.Errorf("failed to clear participants: %w", err)
	}

	for _, b := range participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participants (space_id, period_id, user_id, display_name, total_paid, total_owed, balance, payment_confirmed, transfer_completed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			spaceID, periodID, b.UserID, b.DisplayName, b.TotalPaid, b.TotalOwed, b.Balance,
			boolToInt(b.PaymentConfirmed), boolToInt(b.TransferCompleted),
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to insert participant %s: %w", b.UserID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE periods SET total_amount = ? WHERE space_id = ? AND period_id = ?",
		totalAmount, spaceID, periodID,
	); err != nil {
		return nil, 0, fmt.Errorf("failed to update period total: %w", err)
	}

	return participants, totalAmount, nil
}

// periodStatusTx reads a period's status, returning models.ErrPeriodNotFound
// if the row is absent.
func periodStatusTx(ctx context.Context, tx *sql.Tx, spaceID, periodID string) (models.PeriodStatus, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		"SELECT status FROM periods WHERE space_id = ? AND period_id = ?",
		spaceID, periodID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", models.ErrPeriodNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get period status: %w", err)
	}
	return models.PeriodStatus(status), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
