// Package roster defines the external collaborators the settlement engine
// consumes: the membership roster for display-name enrichment, contact
// lookup at finalize time, and the notification gateway that receives the
// final snapshot. All of them are best-effort from the engine's point of
// view; a missing name or failed delivery never affects the numbers.
package roster

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitweek/internal/models"
)

// Roster exposes a space's members for presentation enrichment.
type Roster interface {
	// Members returns the member list for a space. An empty list is not
	// an error; enrichment simply falls back to captured names or IDs.
	Members(ctx context.Context, spaceID string) ([]models.Member, error)
}

// SettlementNotice is the payload handed to the notification gateway after
// a period is finalized.
type SettlementNotice struct {
	SpaceID      string
	PeriodID     string
	TotalAmount  int64
	Participants []ParticipantNotice
}

// ParticipantNotice is one participant's final position plus the contact
// looked up at finalize time (empty when the lookup found nothing).
type ParticipantNotice struct {
	UserID      string
	DisplayName string
	Contact     string
	Balance     int64
}

// Notifier dispatches settlement-closed messages. Delivery failure is
// reported to the finalize caller but never un-settles the period.
type Notifier interface {
	SettlementClosed(ctx context.Context, notice SettlementNotice) error
}

// NopNotifier discards notices.
type NopNotifier struct{}

func (NopNotifier) SettlementClosed(context.Context, SettlementNotice) error { return nil }

// LogNotifier writes notices to the log. Used when no real gateway is
// configured so finalizations remain observable.
type LogNotifier struct{}

func (LogNotifier) SettlementClosed(_ context.Context, n SettlementNotice) error {
	slog.Info("Settlement closed",
		"space_id", n.SpaceID,
		"period_id", n.PeriodID,
		"total_amount", n.TotalAmount,
		"participants", len(n.Participants),
	)
	return nil
}

// Static is a fixed in-memory roster keyed by space ID. Useful in tests and
// for embedding the engine without a membership service.
type Static map[string][]models.Member

func (s Static) Members(_ context.Context, spaceID string) ([]models.Member, error) {
	return s[spaceID], nil
}

// NameMap collapses a member list into the id -> displayName map the
// balance calculator consumes.
func NameMap(members []models.Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.DisplayName
	}
	return names
}

// ContactMap collapses a member list into an id -> contact map for
// finalize-time enrichment.
func ContactMap(members []models.Member) map[string]string {
	contacts := make(map[string]string, len(members))
	for _, m := range members {
		if m.Contact != "" {
			contacts[m.UserID] = m.Contact
		}
	}
	return contacts
}
