// Package storage provides abstractions for persistent settlement data.
package storage

import (
	"context"

	"github.com/mmynk/splitweek/internal/models"
)

// RecomputeFunc derives a period's full participant map and total from its
// complete receipt set. The store calls it inside the same transaction that
// performs the receipt write, so the aggregate a mutation leaves behind
// always reflects exactly the receipt set it committed.
type RecomputeFunc func(receipts []models.Receipt) (participants map[string]models.ParticipantBalance, totalAmount int64)

// Store defines the interface for settlement storage operations. The
// implementation must guarantee that each receipt mutation and its triggered
// recomputation execute atomically; concurrent writers then converge because
// recomputation is a pure function of the full receipt set.
type Store interface {
	// GetOrCreatePeriod returns the existing period with fresh.ID, or
	// persists fresh and returns it.
	GetOrCreatePeriod(ctx context.Context, spaceID string, fresh *models.SettlementPeriod) (*models.SettlementPeriod, error)

	// GetPeriod retrieves a period with its participant map.
	// Returns models.ErrPeriodNotFound if absent.
	GetPeriod(ctx context.Context, spaceID, periodID string) (*models.SettlementPeriod, error)

	// SubmitReceipt inserts a receipt and rewrites the period aggregate in
	// one transaction. The target period must exist and be active.
	SubmitReceipt(ctx context.Context, spaceID, periodID string, r *models.Receipt, recompute RecomputeFunc) error

	// UpdateReceipt replaces a stored receipt in place and rewrites the
	// aggregate. Returns models.ErrReceiptNotFound if absent.
	UpdateReceipt(ctx context.Context, spaceID, periodID string, r *models.Receipt, recompute RecomputeFunc) error

	// DeleteReceipt removes a receipt and rewrites the aggregate from the
	// remaining set.
	DeleteReceipt(ctx context.Context, spaceID, periodID, receiptID string, recompute RecomputeFunc) error

	// GetReceipt retrieves one receipt with its items.
	GetReceipt(ctx context.Context, spaceID, periodID, receiptID string) (*models.Receipt, error)

	// ListReceipts returns a period's receipts, newest first.
	ListReceipts(ctx context.Context, spaceID, periodID string) ([]models.Receipt, error)

	// FinalizePeriod recomputes the aggregate from the full receipt set and
	// flips the period to settled, all in one transaction. If the period is
	// already settled it returns the stored snapshot unchanged with
	// alreadySettled=true. If recomputation fails the period stays active.
	FinalizePeriod(ctx context.Context, spaceID, periodID string, settledAt int64, recompute RecomputeFunc) (snapshot *models.SettlementPeriod, alreadySettled bool, err error)

	// SetConfirmation toggles a post-settlement audit flag. The period must
	// be settled and the participant must exist in its map.
	SetConfirmation(ctx context.Context, spaceID, periodID, userID string, flag models.ConfirmationFlag, value bool) error

	// ListMembers returns the roster the engine reads for enrichment.
	ListMembers(ctx context.Context, spaceID string) ([]models.Member, error)

	// PutMember upserts a roster entry.
	PutMember(ctx context.Context, spaceID string, m *models.Member) error

	// GetSchedule returns a space's auto-close configuration, or the
	// disabled default if none is stored.
	GetSchedule(ctx context.Context, spaceID string) (*models.ScheduleConfig, error)

	// PutSchedule upserts a space's auto-close configuration.
	PutSchedule(ctx context.Context, spaceID string, cfg *models.ScheduleConfig) error

	// ListScheduledSpaces returns the IDs of spaces with a stored
	// schedule, for the external auto-close trigger to walk.
	ListScheduledSpaces(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
