package models

// PeriodStatus is the lifecycle state of a settlement period.
type PeriodStatus string

const (
	// PeriodActive accepts receipt writes and recomputation.
	PeriodActive PeriodStatus = "active"
	// PeriodSettled is terminal. There is no settled -> active transition.
	PeriodSettled PeriodStatus = "settled"
)

// SettlementPeriod is one Monday–Sunday accounting window for a space.
// Its ID is ISO-week derived (YYYY-Www) and unique per space.
type SettlementPeriod struct {
	// ID is the ISO-week identifier, e.g. "2025-W51".
	ID string `json:"periodId"`

	// SpaceID is the owning space.
	SpaceID string `json:"spaceId"`

	// WeekStart and WeekEnd are calendar dates in YYYY-MM-DD form,
	// Monday through Sunday inclusive.
	WeekStart string `json:"weekStart"`
	WeekEnd   string `json:"weekEnd"`

	Status PeriodStatus `json:"status"`

	// TotalAmount is always the sum of TotalAmount over attached receipts.
	TotalAmount int64 `json:"totalAmount"`

	// Participants is a derived cache keyed by user ID. It is fully
	// recomputed from the receipt set on every mutation, never hand-edited.
	Participants map[string]ParticipantBalance `json:"participants"`

	// CreatedAt and SettledAt are Unix timestamps. SettledAt is zero until
	// the period is finalized, and is set exactly once.
	CreatedAt int64 `json:"createdAt"`
	SettledAt int64 `json:"settledAt,omitempty"`
}

// Settled reports whether the period has been finalized.
func (p *SettlementPeriod) Settled() bool {
	return p.Status == PeriodSettled
}

// Unassigned returns the total of floor-division remainders across the
// participant map: TotalAmount minus the sum of what participants owe.
// Splitting an item among n people loses up to n-1 units to rounding;
// those units are charged to nobody.
func (p *SettlementPeriod) Unassigned() int64 {
	var owed int64
	for _, b := range p.Participants {
		owed += b.TotalOwed
	}
	return p.TotalAmount - owed
}
