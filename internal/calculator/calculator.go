// Package calculator computes per-participant balances for a settlement
// period. Recompute is a pure function of the full receipt set: no clock,
// no randomness, integer-only arithmetic, so recomputing an unchanged set
// always yields an identical result.
package calculator

import "github.com/mmynk/splitweek/internal/models"

// Result is a full recomputation of a period's derived state.
type Result struct {
	// Participants holds everyone who paid for a receipt or shares an
	// item, keyed by user ID.
	Participants map[string]models.ParticipantBalance

	// TotalAmount is the sum of receipt totals.
	TotalAmount int64

	// Unassigned is the total lost to floor division across all items:
	// TotalAmount minus the sum of TotalOwed. Charged to nobody.
	Unassigned int64
}

// Recompute aggregates the receipt set into participant balances.
//
// For each receipt the payer is credited its full total; for each item every
// member of the split is debited PerPerson. names maps user IDs to display
// names for enrichment only; a missing entry falls back to the name captured
// on the receipt, then to the raw ID, and never affects the arithmetic.
func Recompute(receipts []models.Receipt, names map[string]string) Result {
	participants := make(map[string]models.ParticipantBalance)
	var totalAmount int64

	get := func(userID, fallback string) models.ParticipantBalance {
		if b, ok := participants[userID]; ok {
			return b
		}
		name := names[userID]
		if name == "" {
			name = fallback
		}
		if name == "" {
			name = userID
		}
		return models.ParticipantBalance{UserID: userID, DisplayName: name}
	}

	for _, r := range receipts {
		totalAmount += r.TotalAmount

		payer := get(r.PaidBy, r.PaidByName)
		payer.TotalPaid += r.TotalAmount
		participants[r.PaidBy] = payer

		for _, item := range r.Items {
			for _, userID := range item.SplitAmong {
				b := get(userID, "")
				b.TotalOwed += item.PerPerson
				participants[userID] = b
			}
		}
	}

	var totalOwed int64
	for userID, b := range participants {
		b.Balance = b.TotalPaid - b.TotalOwed
		participants[userID] = b
		totalOwed += b.TotalOwed
	}

	return Result{
		Participants: participants,
		TotalAmount:  totalAmount,
		Unassigned:   totalAmount - totalOwed,
	}
}

// PerPerson is the floor share of an item amount split n ways. The
// remainder (up to n-1 units) is not assigned to anyone.
func PerPerson(amount int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return amount / int64(n)
}
