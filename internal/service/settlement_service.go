// Package service orchestrates the settlement engine: receipt ledger
// mutations, balance recomputation, finalization and confirmation tracking.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitweek/internal/calculator"
	"github.com/mmynk/splitweek/internal/metrics"
	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/period"
	"github.com/mmynk/splitweek/internal/roster"
	"github.com/mmynk/splitweek/internal/storage"
)

// SettlementService implements the settlement engine on top of a Store and
// the external collaborators (roster, notifier).
type SettlementService struct {
	store    storage.Store
	resolver *period.Resolver
	roster   roster.Roster
	notifier roster.Notifier
	policy   period.RoutingPolicy
	now      func() time.Time
}

// Option configures a SettlementService.
type Option func(*SettlementService)

// WithRoster overrides the membership roster used for enrichment.
// By default the service reads the store's members table.
func WithRoster(r roster.Roster) Option {
	return func(s *SettlementService) { s.roster = r }
}

// WithNotifier sets the notification gateway invoked after finalize.
func WithNotifier(n roster.Notifier) Option {
	return func(s *SettlementService) { s.notifier = n }
}

// WithRoutingPolicy overrides the settled-period routing policy.
func WithRoutingPolicy(p period.RoutingPolicy) Option {
	return func(s *SettlementService) { s.policy = p }
}

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *SettlementService) { s.now = now }
}

// NewSettlementService creates a service with the given storage backend.
func NewSettlementService(store storage.Store, opts ...Option) *SettlementService {
	s := &SettlementService{
		store:    store,
		roster:   storeRoster{store},
		notifier: roster.LogNotifier{},
		policy:   period.RedirectToActive,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = period.NewResolver(store, period.WithPolicy(s.policy), period.WithClock(s.now))
	return s
}

// storeRoster reads the members table as the default roster.
type storeRoster struct {
	store storage.Store
}

func (r storeRoster) Members(ctx context.Context, spaceID string) ([]models.Member, error) {
	return r.store.ListMembers(ctx, spaceID)
}

// CurrentPeriod returns the period containing "now", creating it if needed.
func (s *SettlementService) CurrentPeriod(ctx context.Context, spaceID string) (*models.SettlementPeriod, error) {
	return s.resolver.Resolve(ctx, spaceID, s.now())
}

// Period returns a period by ID with its participant map.
func (s *SettlementService) Period(ctx context.Context, spaceID, periodID string) (*models.SettlementPeriod, error) {
	return s.store.GetPeriod(ctx, spaceID, periodID)
}

// Receipts lists a period's receipts, newest first.
func (s *SettlementService) Receipts(ctx context.Context, spaceID, periodID string) ([]models.Receipt, error) {
	return s.store.ListReceipts(ctx, spaceID, periodID)
}

// Submit validates a receipt draft, resolves its ledger attachment, and
// persists it together with the recomputed period aggregate. The returned
// period reflects the post-submission state.
func (s *SettlementService) Submit(ctx context.Context, spaceID string, draft models.ReceiptDraft) (*models.Receipt, *models.SettlementPeriod, error) {
	if err := draft.Validate(); err != nil {
		metrics.ValidationRejections.Inc()
		slog.Warn("Receipt rejected", "space_id", spaceID, "error", err)
		return nil, nil, err
	}

	now := s.now()
	belongsTo := now
	if draft.BelongsToDate != "" {
		t, err := period.ParseDate(draft.BelongsToDate)
		if err != nil {
			metrics.ValidationRejections.Inc()
			return nil, nil, err
		}
		belongsTo = t
	}

	target, err := s.resolver.ResolveForSubmission(ctx, spaceID, belongsTo)
	if err != nil {
		return nil, nil, err
	}
	if target.ID != period.WeekID(belongsTo) {
		metrics.ReceiptsRedirected.WithLabelValues(spaceID).Inc()
		slog.Info("Late submission redirected to active period",
			"space_id", spaceID,
			"belongs_to", draft.BelongsToDate,
			"period_id", target.ID,
		)
	}

	receipt := buildReceipt(draft, now)
	timer := time.Now()
	if err := s.store.SubmitReceipt(ctx, spaceID, target.ID, receipt, s.recomputeFunc(ctx, spaceID)); err != nil {
		return nil, nil, fmt.Errorf("failed to submit receipt: %w", err)
	}
	metrics.MutationDuration.WithLabelValues("submit").Observe(time.Since(timer).Seconds())
	metrics.ReceiptsSubmitted.WithLabelValues(spaceID).Inc()

	slog.Info("Receipt submitted",
		"space_id", spaceID,
		"period_id", target.ID,
		"receipt_id", receipt.ID,
		"paid_by", receipt.PaidBy,
		"total_amount", receipt.TotalAmount,
	)

	p, err := s.store.GetPeriod(ctx, spaceID, target.ID)
	if err != nil {
		return nil, nil, err
	}
	return receipt, p, nil
}

// Update replaces a stored receipt in place and recomputes the aggregate.
// Unlike Submit, updates target an explicit period and are rejected rather
// than redirected when that period is settled.
func (s *SettlementService) Update(ctx context.Context, spaceID, periodID, receiptID string, draft models.ReceiptDraft) (*models.Receipt, error) {
	if err := draft.Validate(); err != nil {
		metrics.ValidationRejections.Inc()
		return nil, err
	}

	existing, err := s.store.GetReceipt(ctx, spaceID, periodID, receiptID)
	if err != nil {
		return nil, err
	}

	receipt := buildReceipt(draft, s.now())
	// The identity of the submission is immutable: keep the original id,
	// submitter and creation time. A draft that omits the logical date keeps
	// the stored one rather than defaulting to today.
	receipt.ID = existing.ID
	receipt.SubmittedBy = existing.SubmittedBy
	receipt.SubmittedByName = existing.SubmittedByName
	receipt.CreatedAt = existing.CreatedAt
	if draft.BelongsToDate == "" {
		receipt.BelongsToDate = existing.BelongsToDate
	}

	timer := time.Now()
	if err := s.store.UpdateReceipt(ctx, spaceID, periodID, receipt, s.recomputeFunc(ctx, spaceID)); err != nil {
		return nil, err
	}
	metrics.MutationDuration.WithLabelValues("update").Observe(time.Since(timer).Seconds())
	metrics.ReceiptsUpdated.WithLabelValues(spaceID).Inc()

	slog.Info("Receipt updated",
		"space_id", spaceID,
		"period_id", periodID,
		"receipt_id", receiptID,
		"total_amount", receipt.TotalAmount,
	)
	return receipt, nil
}

// Delete removes a receipt and recomputes the aggregate from the remaining
// set.
func (s *SettlementService) Delete(ctx context.Context, spaceID, periodID, receiptID string) error {
	timer := time.Now()
	if err := s.store.DeleteReceipt(ctx, spaceID, periodID, receiptID, s.recomputeFunc(ctx, spaceID)); err != nil {
		return err
	}
	metrics.MutationDuration.WithLabelValues("delete").Observe(time.Since(timer).Seconds())
	metrics.ReceiptsDeleted.WithLabelValues(spaceID).Inc()

	slog.Info("Receipt deleted", "space_id", spaceID, "period_id", periodID, "receipt_id", receiptID)
	return nil
}

// FinalizeResult is the outcome of a finalize call.
type FinalizeResult struct {
	Period *models.SettlementPeriod

	// AlreadySettled is true when the period was settled before the call;
	// the snapshot is returned unchanged and nothing is notified.
	AlreadySettled bool

	// NotifyErr reports a delivery failure from the notification gateway.
	// The settled state is already committed and is never rolled back.
	NotifyErr error
}

// Finalize transitions a period from active to settled after forcing a
// fresh recomputation. Calling it on a settled period is a no-op returning
// the existing snapshot.
func (s *SettlementService) Finalize(ctx context.Context, spaceID, periodID string) (*FinalizeResult, error) {
	timer := time.Now()
	snapshot, already, err := s.store.FinalizePeriod(ctx, spaceID, periodID, s.now().Unix(), s.recomputeFunc(ctx, spaceID))
	if err != nil {
		return nil, fmt.Errorf("failed to finalize period %s: %w", periodID, err)
	}
	metrics.MutationDuration.WithLabelValues("finalize").Observe(time.Since(timer).Seconds())

	result := &FinalizeResult{Period: snapshot, AlreadySettled: already}
	if already {
		return result, nil
	}
	metrics.PeriodsFinalized.Inc()

	slog.Info("Period finalized",
		"space_id", spaceID,
		"period_id", periodID,
		"total_amount", snapshot.TotalAmount,
		"participants", len(snapshot.Participants),
	)

	result.NotifyErr = s.notify(ctx, snapshot)
	if result.NotifyErr != nil {
		metrics.NotifyFailures.Inc()
		slog.Warn("Settlement notification failed",
			"space_id", spaceID,
			"period_id", periodID,
			"error", result.NotifyErr,
		)
	}
	return result, nil
}

// notify builds the settlement notice, enriching each participant with a
// contact read once at finalize time, and hands it to the gateway. Contact
// lookup failure degrades to an empty contact.
func (s *SettlementService) notify(ctx context.Context, snapshot *models.SettlementPeriod) error {
	contacts := map[string]string{}
	members, err := s.roster.Members(ctx, snapshot.SpaceID)
	if err != nil {
		slog.Warn("Contact lookup failed, notifying without contacts",
			"space_id", snapshot.SpaceID, "error", err)
	} else {
		contacts = roster.ContactMap(members)
	}

	notice := roster.SettlementNotice{
		SpaceID:     snapshot.SpaceID,
		PeriodID:    snapshot.ID,
		TotalAmount: snapshot.TotalAmount,
	}
	for _, b := range snapshot.Participants {
		notice.Participants = append(notice.Participants, roster.ParticipantNotice{
			UserID:      b.UserID,
			DisplayName: b.DisplayName,
			Contact:     contacts[b.UserID],
			Balance:     b.Balance,
		})
	}
	return s.notifier.SettlementClosed(ctx, notice)
}

// SetPaymentConfirmed toggles a debtor's paid-out flag on a settled period.
func (s *SettlementService) SetPaymentConfirmed(ctx context.Context, spaceID, periodID, userID string, value bool) error {
	return s.setConfirmation(ctx, spaceID, periodID, userID, models.FlagPaymentConfirmed, value)
}

// SetTransferCompleted toggles a creditor's transferred flag on a settled
// period.
func (s *SettlementService) SetTransferCompleted(ctx context.Context, spaceID, periodID, userID string, value bool) error {
	return s.setConfirmation(ctx, spaceID, periodID, userID, models.FlagTransferCompleted, value)
}

func (s *SettlementService) setConfirmation(ctx context.Context, spaceID, periodID, userID string, flag models.ConfirmationFlag, value bool) error {
	if err := s.store.SetConfirmation(ctx, spaceID, periodID, userID, flag, value); err != nil {
		return err
	}
	slog.Info("Confirmation flag set",
		"space_id", spaceID,
		"period_id", periodID,
		"user_id", userID,
		"flag", string(flag),
		"value", value,
	)
	return nil
}

// Schedule returns a space's stored auto-close configuration.
func (s *SettlementService) Schedule(ctx context.Context, spaceID string) (*models.ScheduleConfig, error) {
	return s.store.GetSchedule(ctx, spaceID)
}

// SetSchedule validates and stores a space's auto-close configuration.
func (s *SettlementService) SetSchedule(ctx context.Context, spaceID string, cfg *models.ScheduleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.store.PutSchedule(ctx, spaceID, cfg)
}

// recomputeFunc builds the pure aggregation closure handed to the store.
// Roster names are read once up front; enrichment is display-only, so a
// lookup failure degrades to captured names and never blocks the math.
func (s *SettlementService) recomputeFunc(ctx context.Context, spaceID string) storage.RecomputeFunc {
	var names map[string]string
	members, err := s.roster.Members(ctx, spaceID)
	if err != nil {
		slog.Warn("Roster lookup failed, falling back to captured names",
			"space_id", spaceID, "error", err)
	} else {
		names = roster.NameMap(members)
	}

	return func(receipts []models.Receipt) (map[string]models.ParticipantBalance, int64) {
		res := calculator.Recompute(receipts, names)
		return res.Participants, res.TotalAmount
	}
}

// buildReceipt materializes a validated draft: id assignment, per-item
// floor shares, and the receipt total.
func buildReceipt(draft models.ReceiptDraft, now time.Time) *models.Receipt {
	items := make([]models.ReceiptItem, len(draft.Items))
	for i, d := range draft.Items {
		items[i] = models.ReceiptItem{
			ItemName:   d.ItemName,
			Amount:     d.Amount,
			SplitAmong: d.SplitAmong,
			PerPerson:  calculator.PerPerson(d.Amount, len(d.SplitAmong)),
		}
	}

	belongsTo := draft.BelongsToDate
	if belongsTo == "" {
		belongsTo = now.Format("2006-01-02")
	}

	return &models.Receipt{
		ID:              newReceiptID(now),
		SubmittedBy:     draft.SubmittedBy,
		SubmittedByName: draft.SubmittedByName,
		PaidBy:          draft.PaidBy,
		PaidByName:      draft.PaidByName,
		BelongsToDate:   belongsTo,
		Memo:            draft.Memo,
		ImageRef:        draft.ImageRef,
		Items:           items,
		TotalAmount:     draft.TotalAmount(),
		CreatedAt:       now.Unix(),
	}
}

// newReceiptID derives a receipt id from the creation timestamp, with a
// short random suffix so receipts created in the same second stay unique.
func newReceiptID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("2006-01-02T150405"), uuid.NewString()[:4])
}
