// Package period maps calendar dates to settlement periods.
//
// A period is a Monday–Sunday window identified by its ISO week
// ("YYYY-Www"). Resolution is pure date math plus a get-or-create against
// the store; the only policy decision is what to do when a submission's
// logical date lands in a week that is already settled.
package period

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/storage"
)

const dateLayout = "2006-01-02"

// WeekID returns the ISO-week identifier for t, e.g. "2025-W51".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekRange returns the Monday and Sunday (midnight, t's location) of the
// ISO week containing t. Any date inside the week yields the same range.
func WeekRange(t time.Time) (start, end time.Time) {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started the previous Monday
	}
	start = t.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// RoutingPolicy decides where a submission lands when its belongsToDate
// resolves to a settled period. Returning redirect=true routes the receipt
// to the currently active week; returning an error rejects the submission.
type RoutingPolicy func(settled *models.SettlementPeriod) (redirect bool, err error)

// RedirectToActive silently reattaches late submissions to the week
// containing "now". The receipt keeps its original belongsToDate for
// display, trading accounting-period accuracy for never losing a receipt.
func RedirectToActive(*models.SettlementPeriod) (bool, error) {
	return true, nil
}

// RejectSettled refuses submissions against a settled week outright.
func RejectSettled(*models.SettlementPeriod) (bool, error) {
	return false, models.ErrPeriodSettled
}

// Resolver retrieves or creates the settlement period for a date.
type Resolver struct {
	store  storage.Store
	policy RoutingPolicy
	now    func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy overrides the settled-period routing policy.
func WithPolicy(p RoutingPolicy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a Resolver backed by the given store. The default
// routing policy is RedirectToActive.
func NewResolver(store storage.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		policy: RedirectToActive,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the period containing date, creating it (active, empty,
// zero total) if it does not exist yet.
func (r *Resolver) Resolve(ctx context.Context, spaceID string, date time.Time) (*models.SettlementPeriod, error) {
	start, end := WeekRange(date)
	fresh := &models.SettlementPeriod{
		ID:           WeekID(date),
		SpaceID:      spaceID,
		WeekStart:    start.Format(dateLayout),
		WeekEnd:      end.Format(dateLayout),
		Status:       models.PeriodActive,
		Participants: map[string]models.ParticipantBalance{},
		CreatedAt:    r.now().Unix(),
	}
	p, err := r.store.GetOrCreatePeriod(ctx, spaceID, fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve period %s: %w", fresh.ID, err)
	}
	return p, nil
}

// ResolveForSubmission resolves the ledger attachment for a new receipt
// whose logical date is belongsTo. If that week is already settled, the
// routing policy decides whether to redirect the receipt to the week
// containing "now" or to reject it.
func (r *Resolver) ResolveForSubmission(ctx context.Context, spaceID string, belongsTo time.Time) (*models.SettlementPeriod, error) {
	p, err := r.Resolve(ctx, spaceID, belongsTo)
	if err != nil {
		return nil, err
	}
	if !p.Settled() {
		return p, nil
	}
	redirect, err := r.policy(p)
	if err != nil {
		return nil, err
	}
	if !redirect {
		return p, nil
	}
	return r.Resolve(ctx, spaceID, r.now())
}

// ParseDate parses a YYYY-MM-DD logical date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "belongsToDate", Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}
